// Package ledger abstracts the transactional key-value store the supply
// chain state machine runs against. Every backend provides atomic per-key
// get/put/delete, ordered range scans, and equality-selector queries over
// JSON values, so the domain layer can run unchanged on an in-memory map,
// an embedded LevelDB, or Postgres.
package ledger

import (
	"context"
	"strings"
	"time"
)

// Store is the key-value contract consumed by the domain repositories.
// Get returns (nil, nil) when the key is absent; callers that need a
// not-found error translate the nil themselves.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Range iterates keys in [start, end) in lexical order. Empty start
	// or end means unbounded on that side.
	Range(ctx context.Context, start, end string) (Iterator, error)

	// Query returns entries whose key begins with prefix and whose JSON
	// value matches every field of the equality selector.
	Query(ctx context.Context, prefix string, selector map[string]any) (Iterator, error)

	Close() error
}

// Iterator walks a result set. Callers must Close it.
type Iterator interface {
	Next() bool
	Key() string
	Value() []byte
	Err() error
	Close() error
}

// compositeKeySep separates composite key parts. The zero byte keeps
// composite keys out of any plain-id keyspace.
const compositeKeySep = "\x00"

// CompositeKey builds a namespaced key from an object type and its
// attribute values.
func CompositeKey(objectType string, attrs ...string) string {
	var b strings.Builder
	b.WriteString(compositeKeySep)
	b.WriteString(objectType)
	for _, a := range attrs {
		b.WriteString(compositeKeySep)
		b.WriteString(a)
	}
	return b.String()
}

// CompositePrefix returns the range-scan prefix covering every key of
// the given object type.
func CompositePrefix(objectType string) string {
	return compositeKeySep + objectType + compositeKeySep
}

// PrefixEnd returns the smallest key greater than every key carrying the
// prefix, for use as a Range upper bound.
func PrefixEnd(prefix string) string {
	return prefix + "\xff"
}

type txTimeKey struct{}

// WithTxTime records the transaction timestamp on the context. The
// gateway sets it once per request so every event written in that
// transaction observes the same instant.
func WithTxTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, txTimeKey{}, t.UTC())
}

// TxTime returns the transaction timestamp bound to the context. All
// replicated executions of one logical transaction must see the same
// value, so event timestamps are never taken from a per-call clock.
// The wall-clock fallback only applies to contexts that never passed
// through a transaction boundary (tests, one-shot CLI commands).
func TxTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(txTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}
