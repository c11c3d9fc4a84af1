package record

import "go.mongodb.org/mongo-driver/bson"

// MergeAnd combines two filter expressions with logical AND. An absent or
// empty filter is the neutral element: the other operand is returned
// unchanged. Nested $and clauses produced by earlier merges are flattened,
// so chained merges build the same expression regardless of association
// order.
func MergeAnd(a, b bson.M) bson.M {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	clauses := make([]bson.M, 0, 2)
	clauses = appendAndClauses(clauses, a)
	clauses = appendAndClauses(clauses, b)
	return bson.M{"$and": clauses}
}

func appendAndClauses(dst []bson.M, filter bson.M) []bson.M {
	if len(filter) == 1 {
		if nested, ok := filter["$and"].([]bson.M); ok {
			return append(dst, nested...)
		}
	}
	return append(dst, filter)
}
