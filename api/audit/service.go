// api/audit/service.go
package audit

import (
	"context"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

type Service interface {
	Append(ctx context.Context, entry Entry) error
	AttachFlag(ctx context.Context, correlationID string, flag *model.Flag) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Append(ctx context.Context, entry Entry) error {
	return s.repo.Append(ctx, entry)
}

func (s *service) AttachFlag(ctx context.Context, correlationID string, flag *model.Flag) error {
	return s.repo.AttachFlag(ctx, correlationID, flag)
}

func (s *service) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	return s.repo.Query(ctx, filter)
}
