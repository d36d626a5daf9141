package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medtrace/medtrace/internal/platform/ledger"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register upserts a business-name to org-id mapping. CreatedAt is the
// transaction timestamp of the registering call.
func (s *Service) Register(ctx context.Context, businessName, orgID string) (*ManufacturerMapping, error) {
	businessName = strings.TrimSpace(businessName)
	orgID = strings.TrimSpace(orgID)
	if businessName == "" {
		return nil, fmt.Errorf("%w: businessName is required", ErrValidation)
	}
	if orgID == "" {
		return nil, fmt.Errorf("%w: orgId is required", ErrValidation)
	}

	m := &ManufacturerMapping{
		BusinessName: businessName,
		OrgID:        orgID,
		CreatedAt:    ledger.TxTime(ctx).Format(time.RFC3339),
	}
	if err := s.repo.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Resolve returns the mapping for a business name.
func (s *Service) Resolve(ctx context.Context, businessName string) (*ManufacturerMapping, error) {
	if strings.TrimSpace(businessName) == "" {
		return nil, fmt.Errorf("%w: businessName is required", ErrValidation)
	}
	return s.repo.Get(ctx, businessName)
}

// List returns every registered mapping.
func (s *Service) List(ctx context.Context) ([]*ManufacturerMapping, error) {
	return s.repo.List(ctx)
}
