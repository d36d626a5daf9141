package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medtrace/medtrace/internal/platform/ledger"
)

const mappingObjectType = "manufacturerMapping"

type ledgerRepo struct {
	store ledger.Store
}

// NewLedgerRepository builds a Repository over a ledger store.
func NewLedgerRepository(store ledger.Store) Repository {
	return &ledgerRepo{store: store}
}

func mappingKey(businessName string) string {
	return ledger.CompositeKey(mappingObjectType, businessName)
}

func (r *ledgerRepo) Upsert(ctx context.Context, m *ManufacturerMapping) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode mapping %s: %w", m.BusinessName, err)
	}
	if err := r.store.Put(ctx, mappingKey(m.BusinessName), raw); err != nil {
		return fmt.Errorf("ledger put mapping %s: %w", m.BusinessName, err)
	}
	return nil
}

func (r *ledgerRepo) Get(ctx context.Context, businessName string) (*ManufacturerMapping, error) {
	raw, err := r.store.Get(ctx, mappingKey(businessName))
	if err != nil {
		return nil, fmt.Errorf("ledger get mapping %s: %w", businessName, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, businessName)
	}
	var m ManufacturerMapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", businessName, err)
	}
	return &m, nil
}

func (r *ledgerRepo) List(ctx context.Context) ([]*ManufacturerMapping, error) {
	prefix := ledger.CompositePrefix(mappingObjectType)
	it, err := r.store.Range(ctx, prefix, ledger.PrefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("ledger range mappings: %w", err)
	}
	defer it.Close()

	var out []*ManufacturerMapping
	for it.Next() {
		var m ManufacturerMapping
		if err := json.Unmarshal(it.Value(), &m); err != nil {
			continue
		}
		out = append(out, &m)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("ledger range mappings: %w", err)
	}
	return out, nil
}
