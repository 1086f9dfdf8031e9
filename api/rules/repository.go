// api/rules/repository.go
package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// ruleFile is the persisted shape owned by the external rule editor. The core
// only reads it, never writes it.
type ruleFile struct {
	RuleSets map[string]struct {
		Name  string   `json:"name"`
		Rules []string `json:"rules"`
	} `json:"rule_sets"`
	UserAssignments map[string]string          `json:"user_assignments"`
	ProjectLocation string                     `json:"project_location"`
	ParameterTypes  map[string]model.ParamType `json:"parameter_types"`
}

// Snapshot is an immutable, versioned view of the loaded rule sets. In-flight
// evaluations hold a snapshot and are unaffected by reloads.
type Snapshot struct {
	Version     int64
	LoadedAt    time.Time
	RuleSets    map[string]*model.RuleSet
	Assignments map[string]string
	Environment map[string]string
	Schema      map[string]model.ParamType
}

// Resolve returns the single rule set assigned to callerID.
func (s *Snapshot) Resolve(callerID string) (*model.RuleSet, error) {
	id, ok := s.Assignments[callerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", arbiter_errors.ErrRuleSetNotFound, callerID)
	}
	rs, ok := s.RuleSets[id]
	if !ok {
		return nil, fmt.Errorf("%w: assignment %s references missing rule set %s",
			arbiter_errors.ErrRuleSetNotFound, callerID, id)
	}
	return rs, nil
}

// Features lists every tag that appears as the leading tag of at least one
// rule across all rule sets, sorted for stable output.
func (s *Snapshot) Features() []string {
	seen := make(map[string]bool)
	for _, rs := range s.RuleSets {
		for _, rule := range rs.Rules {
			tags := ParseTags(rule)
			if len(tags) > 0 {
				seen[tags[0].Name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Repository loads rule sets from the externally-owned JSON file and serves
// them as copy-on-write snapshots.
type Repository struct {
	path string
	snap atomic.Pointer[Snapshot]
	ver  atomic.Int64
}

// NewRepository loads the rule file once; failure here is fatal to the caller
// so the system never starts with no loadable rule sets.
func NewRepository(path string) (*Repository, error) {
	r := &Repository{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the rule file and atomically swaps the snapshot. In-flight
// requests keep the snapshot they started with.
func (r *Repository) Reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read rule file %s: %w", r.path, err)
	}
	var file ruleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse rule file %s: %w", r.path, err)
	}
	if len(file.RuleSets) == 0 {
		return fmt.Errorf("rule file %s contains no rule sets", r.path)
	}

	ruleSets := make(map[string]*model.RuleSet, len(file.RuleSets))
	var allRules []string
	for id, rs := range file.RuleSets {
		ruleSets[id] = &model.RuleSet{ID: id, Name: rs.Name, Rules: rs.Rules}
		allRules = append(allRules, rs.Rules...)
	}

	env := map[string]string{}
	if file.ProjectLocation != "" {
		env["project_location"] = file.ProjectLocation
	}

	snap := &Snapshot{
		Version:     r.ver.Add(1),
		LoadedAt:    time.Now().UTC(),
		RuleSets:    ruleSets,
		Assignments: file.UserAssignments,
		Environment: env,
		Schema:      InferSchema(allRules, file.ParameterTypes),
	}
	r.snap.Store(snap)
	logger.Info("Rule sets loaded",
		zap.String("file", r.path),
		zap.Int64("version", snap.Version),
		zap.Int("ruleSets", len(ruleSets)),
		zap.Int("assignments", len(file.UserAssignments)))
	return nil
}

// Snapshot returns the current consistent view. Callers must not mutate it.
func (r *Repository) Snapshot() *Snapshot {
	return r.snap.Load()
}

// Resolve is a convenience over the current snapshot.
func (r *Repository) Resolve(callerID string) (*model.RuleSet, error) {
	return r.Snapshot().Resolve(callerID)
}

// Watch reloads the rule file whenever it changes on disk, until ctx is done.
// A failed reload keeps the previous snapshot serving.
func (r *Repository) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rule file watcher: %w", err)
	}
	// Watch the directory: editors replace files rather than writing in place.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch rule file directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(r.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Reload(); err != nil {
					logger.Error("Rule file reload failed, keeping previous snapshot",
						zap.Error(err), zap.String("file", r.path))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Rule file watcher error", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
