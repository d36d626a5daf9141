package ledger

import "encoding/json"

type kvPair struct {
	key   string
	value []byte
}

// sliceIterator serves a materialized result set. Backends that cannot
// stream (Postgres rows must be drained before the connection is
// released) and selector queries all funnel through it.
type sliceIterator struct {
	pairs []kvPair
	pos   int
}

func newSliceIterator(pairs []kvPair) *sliceIterator {
	return &sliceIterator{pairs: pairs, pos: -1}
}

func (it *sliceIterator) Next() bool {
	if it.pos+1 >= len(it.pairs) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Key() string {
	if it.pos < 0 || it.pos >= len(it.pairs) {
		return ""
	}
	return it.pairs[it.pos].key
}

func (it *sliceIterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.pos].value
}

func (it *sliceIterator) Err() error   { return nil }
func (it *sliceIterator) Close() error { return nil }

// matchSelector reports whether the JSON document contains every field
// of the equality selector with an equal value. Undecodable documents
// never match.
func matchSelector(value []byte, selector map[string]any) bool {
	if len(selector) == 0 {
		return true
	}
	var doc map[string]any
	if err := json.Unmarshal(value, &doc); err != nil {
		return false
	}
	for field, want := range selector {
		got, ok := doc[field]
		if !ok || !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

// jsonEqual compares two values through their canonical JSON encoding,
// which sidesteps int-vs-float64 mismatches between decoded documents
// and caller-supplied selector values.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
