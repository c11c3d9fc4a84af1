package record

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort specifies one field and direction in a sort order.
type Sort struct {
	Field string
	Order SortOrder
}

// Query bundles the base filter and requested sort order for a page fetch.
type Query struct {
	Filter bson.M
	Sort   []Sort
}

// Cursor marks a page boundary: for each active sort field plus the identity
// field, the value of the first record past the boundary. A nil cursor means
// the first page. Cursors stay valid even when the record they were derived
// from is deleted; no re-fetch is needed to use one.
type Cursor map[string]any

// PageResult is one page of records in forward sort order plus the cursors
// to its neighbors. A nil cursor means no page in that direction.
type PageResult struct {
	Items    []Record
	Previous Cursor
	Next     Cursor
}

// Page fetches one page of up to pageSize records. Paging is keyset-based:
// boundaries are value comparisons against the cursor, not offsets, so pages
// stay stable under concurrent inserts, deletes, and updates elsewhere in
// the collection.
//
// The sort is normalized by appending an ascending identity field unless the
// identity field already terminates it, guaranteeing a total order. Sorts
// with more than one non-identity field are rejected with ErrUnsupportedSort:
// the boundary predicate disambiguates a single primary field plus the
// identity tie-break and was never specified beyond that.
func (e *Engine) Page(ctx context.Context, ent *Entity, q Query, cursor Cursor, pageSize int) (PageResult, error) {
	if pageSize <= 0 {
		return PageResult{}, fmt.Errorf("record: page size must be positive, got %d", pageSize)
	}

	sortSpec := normalizeSort(q.Sort)
	if nonIdentityFields(sortSpec) > 1 {
		e.log.Warn("rejecting composite sort", "collection", ent.Collection, "fields", len(sortSpec))
		return PageResult{}, ErrUnsupportedSort
	}

	start := time.Now()

	filter := MergeAnd(q.Filter, pagingConditions(sortSpec, cursor))
	items, err := e.store.Fetch(ctx, ent.Collection, filter, sortDocument(sortSpec), int64(pageSize+1))
	if err != nil {
		return PageResult{}, fmt.Errorf("record: failed to fetch page of %s: %w", ent.Collection, err)
	}

	// The extra record is the first one past this page; its sort values
	// become the next cursor.
	var next Cursor
	if len(items) > pageSize {
		next = cursorFrom(items[pageSize], sortSpec)
		items = items[:pageSize]
	}

	// The previous cursor is recovered in a single reversed pass: flip every
	// direction, rebuild the boundary predicate against the same cursor, and
	// walk backwards pageSize+1 records. The most distant record of that
	// walk is the first record of the previous page. The first page has no
	// predecessor by definition, so all of this is skipped without a cursor.
	var previous Cursor
	if cursor != nil {
		reversed := reverseSort(sortSpec)
		backFilter := MergeAnd(q.Filter, pagingConditions(reversed, cursor))
		back, err := e.store.Fetch(ctx, ent.Collection, backFilter, sortDocument(reversed), int64(pageSize+1))
		if err != nil {
			return PageResult{}, fmt.Errorf("record: failed to fetch previous page of %s: %w", ent.Collection, err)
		}
		if len(back) > 1 {
			previous = cursorFrom(back[len(back)-1], sortSpec)
		}
	}

	e.metrics.RecordPage(ent.Collection, time.Since(start))
	return PageResult{Items: items, Previous: previous, Next: next}, nil
}

// normalizeSort fills in missing directions and appends the identity
// tie-break unless the sort already ends on the identity field.
func normalizeSort(sort []Sort) []Sort {
	normalized := make([]Sort, 0, len(sort)+1)
	for _, s := range sort {
		if s.Order != SortDesc {
			s.Order = SortAsc
		}
		normalized = append(normalized, s)
	}
	if len(normalized) == 0 || normalized[len(normalized)-1].Field != FieldID {
		normalized = append(normalized, Sort{Field: FieldID, Order: SortAsc})
	}
	return normalized
}

func nonIdentityFields(sort []Sort) int {
	n := 0
	for _, s := range sort {
		if s.Field != FieldID {
			n++
		}
	}
	return n
}

func reverseSort(sort []Sort) []Sort {
	reversed := make([]Sort, len(sort))
	for i, s := range sort {
		if s.Order == SortAsc {
			s.Order = SortDesc
		} else {
			s.Order = SortAsc
		}
		reversed[i] = s
	}
	return reversed
}

func sortDocument(sort []Sort) bson.D {
	doc := make(bson.D, 0, len(sort))
	for _, s := range sort {
		dir := 1
		if s.Order == SortDesc {
			dir = -1
		}
		doc = append(doc, bson.E{Key: s.Field, Value: dir})
	}
	return doc
}

// pagingConditions builds the boundary predicate selecting records at or
// past the cursor in the given sort order. With a primary sort field the
// predicate is
//
//	field strictlyPast cursor[field]
//	OR (field == cursor[field] AND _id pastOrEqual cursor[_id])
//
// where the identity comparison direction follows the last sort entry. With
// an identity-only sort it degenerates to the plain identity comparison. No
// cursor means no boundary.
func pagingConditions(sort []Sort, cursor Cursor) bson.M {
	if len(cursor) == 0 {
		return nil
	}

	identityOp := "$gte"
	if sort[len(sort)-1].Order == SortDesc {
		identityOp = "$lte"
	}

	first := sort[0]
	if first.Field == FieldID {
		return bson.M{FieldID: bson.M{identityOp: cursor[FieldID]}}
	}

	strictOp := "$gt"
	if first.Order == SortDesc {
		strictOp = "$lt"
	}
	return bson.M{"$or": []bson.M{
		{first.Field: bson.M{strictOp: cursor[first.Field]}},
		{"$and": []bson.M{
			{first.Field: cursor[first.Field]},
			{FieldID: bson.M{identityOp: cursor[FieldID]}},
		}},
	}}
}

// cursorFrom captures the boundary record's value for every sort field; the
// normalized sort always includes the identity field.
func cursorFrom(rec Record, sort []Sort) Cursor {
	c := make(Cursor, len(sort))
	for _, s := range sort {
		c[s.Field] = rec[s.Field]
	}
	return c
}
