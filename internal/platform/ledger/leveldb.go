package ledger

import (
	"context"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore persists the ledger in an embedded LevelDB database,
// for single-node deployments that need durability without a database
// server.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) the database at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(_ context.Context, key string) ([]byte, error) {
	v, err := s.db.Get([]byte(key), nil)
	if err == ldberrors.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *LevelDBStore) Put(_ context.Context, key string, value []byte) error {
	return s.db.Put([]byte(key), value, nil)
}

func (s *LevelDBStore) Delete(_ context.Context, key string) error {
	return s.db.Delete([]byte(key), nil)
}

func (s *LevelDBStore) Range(_ context.Context, start, end string) (Iterator, error) {
	r := &util.Range{}
	if start != "" {
		r.Start = []byte(start)
	}
	if end != "" {
		r.Limit = []byte(end)
	}
	return &levelDBIterator{it: s.db.NewIterator(r, nil)}, nil
}

func (s *LevelDBStore) Query(ctx context.Context, prefix string, selector map[string]any) (Iterator, error) {
	it, err := s.Range(ctx, prefix, PrefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var pairs []kvPair
	for it.Next() {
		if matchSelector(it.Value(), selector) {
			pairs = append(pairs, kvPair{key: it.Key(), value: it.Value()})
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return newSliceIterator(pairs), nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

type levelDBIterator struct {
	it interface {
		Next() bool
		Key() []byte
		Value() []byte
		Error() error
		Release()
	}
}

func (l *levelDBIterator) Next() bool { return l.it.Next() }
func (l *levelDBIterator) Key() string {
	return string(l.it.Key())
}

func (l *levelDBIterator) Value() []byte {
	// LevelDB reuses the value buffer between Next calls.
	v := l.it.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (l *levelDBIterator) Err() error { return l.it.Error() }
func (l *levelDBIterator) Close() error {
	l.it.Release()
	return nil
}
