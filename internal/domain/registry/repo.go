package registry

import "context"

// Repository persists manufacturer mappings.
type Repository interface {
	Upsert(ctx context.Context, m *ManufacturerMapping) error
	Get(ctx context.Context, businessName string) (*ManufacturerMapping, error)
	List(ctx context.Context) ([]*ManufacturerMapping, error)
}
