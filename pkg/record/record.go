// Package record implements an ActiveRecord-style access layer over a
// schemaless document collection: lifecycle hooks for create/update/delete,
// automatic timestamping, uniqueness checks, and keyset (cursor-based)
// pagination. The underlying store is reached through the narrow Storage
// interface so the engines stay driver-agnostic and testable.
package record

// Field names the engine manages on every record.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Record is a schemaless document: field names mapped to scalar values,
// nested maps, or sequences. A persisted record always carries FieldID.
type Record map[string]any

// unsetSentinel marks a field for removal in an update attribute set.
type unsetSentinel struct{}

// Unset, used as an attribute value in Update, removes the field from the
// stored document instead of assigning it.
var Unset any = unsetSentinel{}

// Clone returns a shallow copy. Engines copy before handing records to
// hooks so caller-owned attribute maps are never mutated.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
