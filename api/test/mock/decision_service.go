// test/mock/decision_service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/arbiter/api/audit"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/tools"
)

// MockDecisionService is a mock implementation of service.IDecisionService
type MockDecisionService struct {
	mock.Mock
}

func (m *MockDecisionService) Decide(ctx context.Context, req model.DecisionRequest, execute bool) (*model.DecisionResponse, error) {
	args := m.Called(ctx, req, execute)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DecisionResponse), args.Error(1)
}

func (m *MockDecisionService) Features(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockDecisionService) Parameters(ctx context.Context) map[string]model.ParamType {
	args := m.Called(ctx)
	return args.Get(0).(map[string]model.ParamType)
}

func (m *MockDecisionService) RuleSets(ctx context.Context) map[string]*model.RuleSet {
	args := m.Called(ctx)
	return args.Get(0).(map[string]*model.RuleSet)
}

func (m *MockDecisionService) Assignments(ctx context.Context) map[string]string {
	args := m.Called(ctx)
	return args.Get(0).(map[string]string)
}

func (m *MockDecisionService) ReloadRules(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDecisionService) History(ctx context.Context, user, feature string, limit int) ([]tools.HistoryRecord, error) {
	args := m.Called(ctx, user, feature, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tools.HistoryRecord), args.Error(1)
}

func (m *MockDecisionService) AuditTrail(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}
