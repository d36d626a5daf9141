package medicine

import (
	"errors"
	"testing"
	"time"
)

func policyMedicine() *Medicine {
	return &Medicine{
		ID:                   "MED200",
		Manufacturer:         "PharmaCo Ltd",
		CurrentOwner:         "MediDist Inc",
		Status:               StatusInDistribution,
		ExpirationDate:       "2028-01-15",
		AssignedDistributors: []string{"MediDist Inc", "RegionalDist"},
	}
}

func TestAuthorizeTransition(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(m *Medicine)
		handler string
		next    Status
		wantErr error
	}{
		{
			name:    "manufacturer sets any status",
			handler: "PharmaCo Ltd",
			next:    StatusQualityCheck,
		},
		{
			name:    "current owner moves custody status",
			handler: "MediDist Inc",
			next:    StatusOrderComplete,
		},
		{
			name:    "current owner blocked from manufacturer-only status",
			handler: "MediDist Inc",
			next:    StatusManufactured,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "assigned distributor allowed",
			handler: "RegionalDist",
			next:    StatusInDistribution,
		},
		{
			name:    "assigned distributor blocked from quality check",
			handler: "RegionalDist",
			next:    StatusQualityCheck,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "unknown handler rejected",
			handler: "Stranger",
			next:    StatusInDistribution,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "public user scans",
			handler: HandlerPublicUser,
			next:    StatusScanned,
		},
		{
			name:    "public user cannot recall",
			handler: HandlerPublicUser,
			next:    StatusRecalled,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "regulator recalls",
			handler: HandlerRegulator,
			next:    StatusRecalled,
		},
		{
			name:    "inspector approves",
			handler: HandlerInspector,
			next:    StatusApproved,
		},
		{
			name:    "regulator cannot set custody status",
			handler: HandlerRegulator,
			next:    StatusInDistribution,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "claim outside order complete rejected",
			handler: HandlerPublicUser,
			next:    StatusClaimed,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "claimed is terminal even for manufacturer",
			mutate:  func(m *Medicine) { m.Status = StatusClaimed },
			handler: "PharmaCo Ltd",
			next:    StatusRecalled,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "order complete admits only public user",
			mutate:  func(m *Medicine) { m.Status = StatusOrderComplete },
			handler: "PharmaCo Ltd",
			next:    StatusRecalled,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "order complete public user must claim",
			mutate:  func(m *Medicine) { m.Status = StatusOrderComplete },
			handler: HandlerPublicUser,
			next:    StatusScanned,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "claim succeeds",
			mutate:  func(m *Medicine) { m.Status = StatusOrderComplete },
			handler: HandlerPublicUser,
			next:    StatusClaimed,
		},
		{
			name: "flagged claim blocked",
			mutate: func(m *Medicine) {
				m.Status = StatusOrderComplete
				m.Flagged = true
			},
			handler: HandlerPublicUser,
			next:    StatusClaimed,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "expired claim blocked",
			mutate: func(m *Medicine) {
				m.Status = StatusOrderComplete
				m.ExpirationDate = "2025-05-01"
			},
			handler: HandlerPublicUser,
			next:    StatusClaimed,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "unreadable expiry blocks claim",
			mutate: func(m *Medicine) {
				m.Status = StatusOrderComplete
				m.ExpirationDate = "soon"
			},
			handler: HandlerPublicUser,
			next:    StatusClaimed,
			wantErr: ErrValidation,
		},
		{
			name:    "open status vocabulary for authorized handlers",
			handler: "MediDist Inc",
			next:    Status("Customs Cleared"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := policyMedicine()
			if tt.mutate != nil {
				tt.mutate(m)
			}
			err := authorizeTransition(m, tt.handler, tt.next, now)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
