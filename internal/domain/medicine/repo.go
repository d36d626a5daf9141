package medicine

import "context"

// Repository is the persistence contract for Medicine aggregates. Every
// implementation must provide atomic per-key put so a transition's
// event append and field updates commit as one unit.
type Repository interface {
	// Get returns the medicine or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Medicine, error)
	// Exists reports key presence without decoding the value.
	Exists(ctx context.Context, id string) (bool, error)
	Put(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id string) error

	// All scans the whole medicine keyspace. Values that fail to decode
	// are returned as raw strings, not dropped.
	All(ctx context.Context) ([]*Record, error)
	// ByManufacturer and Flagged are equality-selector queries pushed
	// down to the ledger.
	ByManufacturer(ctx context.Context, manufacturer string) ([]*Medicine, error)
	Flagged(ctx context.Context) ([]*Medicine, error)
}
