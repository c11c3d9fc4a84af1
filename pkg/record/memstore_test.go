package record

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Storage with just enough filter evaluation for
// the filters the engines build: field equality (nil matching absent),
// $and/$or, and the comparison operators of the boundary predicates.
type memStore struct {
	mu   sync.Mutex
	data map[string][]Record

	insertErr error
	updateErr error

	insertCalls int
	updateCalls int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]Record{}}
}

func (s *memStore) Fetch(_ context.Context, collection string, filter bson.M, sortDoc bson.D, limit int64) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, rec := range s.data[collection] {
		if matchFilter(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	sortRecords(out, sortDoc)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) FetchOne(_ context.Context, collection string, filter bson.M) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.data[collection] {
		if matchFilter(rec, filter) {
			return rec.Clone(), nil
		}
	}
	return nil, nil
}

func (s *memStore) Count(_ context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, rec := range s.data[collection] {
		if matchFilter(rec, filter) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Insert(_ context.Context, collection string, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertCalls++
	if s.insertErr != nil {
		return nil, s.insertErr
	}

	stored := rec.Clone()
	if _, ok := stored[FieldID]; !ok {
		stored[FieldID] = primitive.NewObjectID()
	}
	s.data[collection] = append(s.data[collection], stored)
	return stored.Clone(), nil
}

func (s *memStore) AtomicUpdate(_ context.Context, collection string, match Record, modification bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateCalls++
	if s.updateErr != nil {
		return 0, s.updateErr
	}

	for _, rec := range s.data[collection] {
		if !matchImage(rec, match) {
			continue
		}
		if set, ok := modification["$set"].(bson.M); ok {
			for field, value := range set {
				rec[field] = value
			}
		}
		if unset, ok := modification["$unset"].(bson.M); ok {
			for field := range unset {
				delete(rec, field)
			}
		}
		return 1, nil
	}
	return 0, nil
}

func (s *memStore) AtomicFindAndRemove(_ context.Context, collection string, idFilter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.data[collection]
	for i, rec := range recs {
		if matchFilter(rec, idFilter) {
			s.data[collection] = append(recs[:i:i], recs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *memStore) RemoveMany(_ context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []Record
	var removed int64
	for _, rec := range s.data[collection] {
		if matchFilter(rec, filter) {
			removed++
		} else {
			kept = append(kept, rec)
		}
	}
	s.data[collection] = kept
	return removed, nil
}

// matchImage checks every field of the previously-read image against the
// stored document, the way the engine's full-image update match works.
func matchImage(rec, image Record) bool {
	for field, want := range image {
		if !valuesEqual(rec[field], want) {
			return false
		}
	}
	return true
}

func matchFilter(rec Record, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range asFilterList(cond) {
				if !matchFilter(rec, sub) {
					return false
				}
			}
		case "$or":
			any := false
			for _, sub := range asFilterList(cond) {
				if matchFilter(rec, sub) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		default:
			if !matchField(rec[key], cond) {
				return false
			}
		}
	}
	return true
}

func asFilterList(cond any) []bson.M {
	switch v := cond.(type) {
	case []bson.M:
		return v
	case []any:
		out := make([]bson.M, 0, len(v))
		for _, sub := range v {
			out = append(out, sub.(bson.M))
		}
		return out
	default:
		panic(fmt.Sprintf("unsupported clause list %T", cond))
	}
}

func matchField(value any, cond any) bool {
	ops, ok := cond.(bson.M)
	if !ok {
		return valuesEqual(value, cond)
	}
	for op, operand := range ops {
		switch op {
		case "$ne":
			if valuesEqual(value, operand) {
				return false
			}
		case "$gt":
			if compareValues(value, operand) <= 0 {
				return false
			}
		case "$gte":
			if compareValues(value, operand) < 0 {
				return false
			}
		case "$lt":
			if compareValues(value, operand) >= 0 {
				return false
			}
		case "$lte":
			if compareValues(value, operand) > 0 {
				return false
			}
		default:
			// A plain map value, not an operator document.
			return valuesEqual(value, cond)
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Equal(bt)
	}
	if aok || bok {
		return false
	}
	return a == b
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case time.Time:
		bt := b.(time.Time)
		switch {
		case av.Before(bt):
			return -1
		case av.After(bt):
			return 1
		default:
			return 0
		}
	case primitive.ObjectID:
		return strings.Compare(av.Hex(), b.(primitive.ObjectID).Hex())
	default:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		panic(fmt.Sprintf("unsupported numeric type %T", v))
	}
}

func sortRecords(recs []Record, sortDoc bson.D) {
	if len(sortDoc) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, entry := range sortDoc {
			cmp := compareValues(recs[i][entry.Key], recs[j][entry.Key])
			if cmp == 0 {
				continue
			}
			if entry.Value.(int) < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}
