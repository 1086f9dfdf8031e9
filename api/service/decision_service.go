// api/service/decision_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/arbiter/api/audit"
	"github.com/dev-mohitbeniwal/arbiter/api/engine"
	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/oversight"
	"github.com/dev-mohitbeniwal/arbiter/api/registry"
	"github.com/dev-mohitbeniwal/arbiter/api/rules"
	"github.com/dev-mohitbeniwal/arbiter/api/tools"
	"github.com/dev-mohitbeniwal/arbiter/api/util"
)

// IDecisionService is the decision pipeline behind the HTTP surface.
type IDecisionService interface {
	// Decide runs the full pipeline for one request. execute=false evaluates
	// without dispatching any tool.
	Decide(ctx context.Context, req model.DecisionRequest, execute bool) (*model.DecisionResponse, error)
	Features(ctx context.Context) []string
	Parameters(ctx context.Context) map[string]model.ParamType
	RuleSets(ctx context.Context) map[string]*model.RuleSet
	Assignments(ctx context.Context) map[string]string
	ReloadRules(ctx context.Context) (int64, error)
	History(ctx context.Context, user, feature string, limit int) ([]tools.HistoryRecord, error)
	AuditTrail(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

// DecisionService wires the rule repository, context builder, engine,
// executor, audit trail and oversight pass into the single decision path.
type DecisionService struct {
	repo            *rules.Repository
	engine          *engine.Engine
	executor        *registry.Executor
	store           *tools.Store
	auditSvc        audit.Service
	oversight       *oversight.Pass
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

func NewDecisionService(
	repo *rules.Repository,
	eng *engine.Engine,
	executor *registry.Executor,
	store *tools.Store,
	auditSvc audit.Service,
	oversightPass *oversight.Pass,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *DecisionService {
	s := &DecisionService{
		repo:            repo,
		engine:          eng,
		executor:        executor,
		store:           store,
		auditSvc:        auditSvc,
		oversight:       oversightPass,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventDecisionEvaluated, s.handleDecisionEvaluated)
	eventBus.Subscribe(util.EventActionExecuted, s.handleActionExecuted)
	eventBus.Subscribe(util.EventOversightFlagged, s.handleOversightFlagged)
	eventBus.Subscribe(util.EventRulesReloaded, s.handleRulesReloaded)

	return s
}

func (s *DecisionService) handleDecisionEvaluated(ctx context.Context, event util.Event) error {
	decision, ok := event.Payload.(*model.Decision)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	if decision.Outcome == model.OutcomeError {
		return s.notificationSvc.NotifyOperators(ctx,
			fmt.Sprintf("decision failed closed: %s", decision.Reason))
	}
	return nil
}

func (s *DecisionService) handleActionExecuted(ctx context.Context, event util.Event) error {
	result, ok := event.Payload.(*model.ExecutionResult)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Action executed event received",
		zap.String("tool", result.Tool),
		zap.String("correlationID", result.CorrelationID))
	return nil
}

func (s *DecisionService) handleOversightFlagged(ctx context.Context, event util.Event) error {
	flag, ok := event.Payload.(*model.Flag)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	return s.notificationSvc.NotifyOperators(ctx,
		fmt.Sprintf("decision %s flagged by oversight: %s", flag.CorrelationID, flag.Rationale))
}

func (s *DecisionService) handleRulesReloaded(ctx context.Context, event util.Event) error {
	version, ok := event.Payload.(int64)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	return s.notificationSvc.NotifyRulesReloaded(ctx, version)
}

// Decide evaluates one request end to end. Validation failures are returned
// to the caller before any oracle call; every evaluated request produces
// exactly one audit entry before the response is returned.
func (s *DecisionService) Decide(ctx context.Context, req model.DecisionRequest, execute bool) (*model.DecisionResponse, error) {
	if err := s.validationUtil.ValidateDecisionRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", arbiter_errors.ErrValidation, err)
	}

	correlationID := uuid.New().String()
	snap := s.repo.Snapshot()

	ectx, err := engine.BuildContext(snap, req.User, req.Feature, req.Action, req.Parameters)
	if err != nil {
		if errors.Is(err, arbiter_errors.ErrRuleSetNotFound) {
			// An unassigned caller is a decision, not a transport error:
			// fail closed, audit the refusal, answer 200 with ERROR.
			return s.refuse(ctx, req, correlationID, snap, err), nil
		}
		return nil, err
	}

	decision := s.engine.Evaluate(ctx, ectx)

	var execResult *model.ExecutionResult
	if decision.Outcome == model.OutcomeAllowed && execute {
		execResult, err = s.executor.Execute(ctx, decision, ectx, correlationID)
		if err != nil {
			// The decision stands. The failed dispatch is reported in the
			// execution result and preserved in the audit entry.
			if execResult == nil {
				execResult = &model.ExecutionResult{
					Tool:          registry.Key(ectx.Feature, ectx.Action),
					Parameters:    ectx.Parameters,
					Error:         err.Error(),
					Timestamp:     time.Now().UTC(),
					CorrelationID: correlationID,
				}
			}
			logger.Error("Action execution failed",
				zap.Error(err),
				zap.String("correlationID", correlationID),
				zap.String("caller", req.User))
		} else {
			s.eventBus.Publish(ctx, util.EventActionExecuted, execResult)
		}
	}

	s.append(ctx, audit.Entry{
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Context:       *ectx,
		Decision:      *decision,
		Execution:     execResult,
	})

	s.oversight.Submit(ectx, decision, correlationID)
	s.eventBus.Publish(ctx, util.EventDecisionEvaluated, decision)

	return &model.DecisionResponse{
		Decision:        decision.Outcome,
		Reason:          decision.Reason,
		RuleViolated:    decision.RuleViolated,
		ConfidenceScore: decision.ConfidenceScore,
		CorrelationID:   correlationID,
		ExecutionResult: execResult,
	}, nil
}

// refuse produces the fail-closed ERROR response for a caller with no rule
// set, with a minimal-context audit entry.
func (s *DecisionService) refuse(ctx context.Context, req model.DecisionRequest, correlationID string, snap *rules.Snapshot, cause error) *model.DecisionResponse {
	decision := model.Decision{
		Outcome: model.OutcomeError,
		Reason:  fmt.Sprintf("no rule set assigned to caller %s", req.User),
	}
	s.append(ctx, audit.Entry{
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Context: model.EvaluationContext{
			CallerID:       req.User,
			Feature:        req.Feature,
			Action:         req.Action,
			Parameters:     req.Parameters,
			RuleSetVersion: snap.Version,
		},
		Decision: decision,
	})
	logger.Warn("Decision refused, caller has no rule set",
		zap.String("caller", req.User),
		zap.String("correlationID", correlationID),
		zap.Error(cause))
	return &model.DecisionResponse{
		Decision:      decision.Outcome,
		Reason:        decision.Reason,
		CorrelationID: correlationID,
	}
}

// append writes the audit entry. An unavailable audit backend is logged
// loudly but does not turn an already-made decision into a failure.
func (s *DecisionService) append(ctx context.Context, entry audit.Entry) {
	if err := s.auditSvc.Append(ctx, entry); err != nil {
		logger.Error("Audit append failed",
			zap.Error(fmt.Errorf("%w: %v", arbiter_errors.ErrAuditUnavailable, err)),
			zap.String("correlationID", entry.CorrelationID))
	}
}

// Features lists the feature tags the loaded rules govern.
func (s *DecisionService) Features(ctx context.Context) []string {
	return s.repo.Snapshot().Features()
}

// Parameters returns the inferred parameter schema of the loaded rules.
func (s *DecisionService) Parameters(ctx context.Context) map[string]model.ParamType {
	return s.repo.Snapshot().Schema
}

func (s *DecisionService) RuleSets(ctx context.Context) map[string]*model.RuleSet {
	return s.repo.Snapshot().RuleSets
}

func (s *DecisionService) Assignments(ctx context.Context) map[string]string {
	return s.repo.Snapshot().Assignments
}

// ReloadRules forces a reload and returns the new snapshot version.
func (s *DecisionService) ReloadRules(ctx context.Context) (int64, error) {
	if err := s.repo.Reload(); err != nil {
		return 0, err
	}
	version := s.repo.Snapshot().Version
	s.eventBus.Publish(ctx, util.EventRulesReloaded, version)
	return version, nil
}

func (s *DecisionService) History(ctx context.Context, user, feature string, limit int) ([]tools.HistoryRecord, error) {
	return s.store.History(ctx, user, feature, limit)
}

func (s *DecisionService) AuditTrail(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	return s.auditSvc.Query(ctx, filter)
}
