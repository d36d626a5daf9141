package medicine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medtrace/medtrace/internal/platform/ledger"
)

// medKeyPrefix namespaces medicine records in the shared ledger
// keyspace, keeping range scans clear of auxiliary composite keys.
const medKeyPrefix = "MED_"

type ledgerRepo struct {
	store ledger.Store
}

// NewLedgerRepository builds a Repository over a ledger store.
func NewLedgerRepository(store ledger.Store) Repository {
	return &ledgerRepo{store: store}
}

func medKey(id string) string { return medKeyPrefix + id }

func (r *ledgerRepo) Get(ctx context.Context, id string) (*Medicine, error) {
	raw, err := r.store.Get(ctx, medKey(id))
	if err != nil {
		return nil, fmt.Errorf("ledger get %s: %w", id, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var m Medicine
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode medicine %s: %w", id, err)
	}
	return &m, nil
}

func (r *ledgerRepo) Exists(ctx context.Context, id string) (bool, error) {
	raw, err := r.store.Get(ctx, medKey(id))
	if err != nil {
		return false, fmt.Errorf("ledger get %s: %w", id, err)
	}
	return len(raw) > 0, nil
}

func (r *ledgerRepo) Put(ctx context.Context, m *Medicine) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode medicine %s: %w", m.ID, err)
	}
	if err := r.store.Put(ctx, medKey(m.ID), raw); err != nil {
		return fmt.Errorf("ledger put %s: %w", m.ID, err)
	}
	return nil
}

func (r *ledgerRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, medKey(id)); err != nil {
		return fmt.Errorf("ledger delete %s: %w", id, err)
	}
	return nil
}

func (r *ledgerRepo) All(ctx context.Context) ([]*Record, error) {
	it, err := r.store.Range(ctx, medKeyPrefix, ledger.PrefixEnd(medKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("ledger range scan: %w", err)
	}
	defer it.Close()

	var out []*Record
	for it.Next() {
		rec := &Record{Key: it.Key()[len(medKeyPrefix):]}
		var m Medicine
		if err := json.Unmarshal(it.Value(), &m); err != nil || m.ID == "" {
			// Lenient decoding: surface the opaque value instead of
			// dropping the entry.
			rec.Raw = string(it.Value())
		} else {
			rec.Medicine = &m
		}
		out = append(out, rec)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("ledger range scan: %w", err)
	}
	return out, nil
}

func (r *ledgerRepo) ByManufacturer(ctx context.Context, manufacturer string) ([]*Medicine, error) {
	return r.query(ctx, map[string]any{"manufacturer": manufacturer})
}

func (r *ledgerRepo) Flagged(ctx context.Context) ([]*Medicine, error) {
	return r.query(ctx, map[string]any{"flagged": true})
}

func (r *ledgerRepo) query(ctx context.Context, selector map[string]any) ([]*Medicine, error) {
	it, err := r.store.Query(ctx, medKeyPrefix, selector)
	if err != nil {
		return nil, fmt.Errorf("ledger selector query: %w", err)
	}
	defer it.Close()

	var out []*Medicine
	for it.Next() {
		var m Medicine
		if err := json.Unmarshal(it.Value(), &m); err != nil {
			continue
		}
		out = append(out, &m)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("ledger selector query: %w", err)
	}
	return out, nil
}
