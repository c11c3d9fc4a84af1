package record

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/nimburion/docstore/pkg/observability/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

// UpdateOptions tunes a single Update call.
type UpdateOptions struct {
	// SkipValidations bypasses the entity validator. Lifecycle hooks still
	// run.
	SkipValidations bool
}

// Create runs the create pipeline:
//
//	before-validation -> before-validation-on-create -> validate ->
//	before-save -> before-create -> timestamp defaulting -> insert ->
//	after-create
//
// Validation failure returns the errors without touching storage. A driver
// failure during insert is logged and surfaced as Errors under FieldBase,
// never as a panic or wrapped error. On success the persisted record,
// carrying its generated identity, is returned.
func (e *Engine) Create(ctx context.Context, ent *Entity, attrs Record) (Record, Errors) {
	start := time.Now()
	hc := &HookContext{Context: ctx, Entity: ent, Store: e.store}

	rec := attrs.Clone()
	rec = runHook(ent.BeforeValidation, hc, rec)
	rec = runHook(ent.BeforeValidationOnCreate, hc, rec)

	if ent.Validator != nil {
		if errs := ent.Validator(hc, rec); !errs.Empty() {
			e.metrics.RecordMutation(ent.Collection, metrics.OpCreate, metrics.OutcomeInvalid, time.Since(start))
			return nil, errs
		}
	}

	rec = runHook(ent.BeforeSave, hc, rec)
	rec = runHook(ent.BeforeCreate, hc, rec)

	// Default timestamps only when the key is absent. An explicitly
	// supplied value, including an explicit nil, is preserved.
	now := e.now()
	if _, ok := rec[FieldCreatedAt]; !ok {
		rec[FieldCreatedAt] = now
	}
	if _, ok := rec[FieldUpdatedAt]; !ok {
		rec[FieldUpdatedAt] = now
	}

	persisted, err := e.store.Insert(ctx, ent.Collection, rec)
	if err != nil {
		e.log.Error("insert failed", "collection", ent.Collection, "error", err)
		e.metrics.RecordMutation(ent.Collection, metrics.OpCreate, metrics.OutcomeStorageError, time.Since(start))
		return nil, Errors{FieldBase: []string{InsertFailedMessage}}
	}

	persisted = runHook(ent.AfterCreate, hc, persisted)
	e.metrics.RecordMutation(ent.Collection, metrics.OpCreate, metrics.OutcomeOK, time.Since(start))
	return persisted, nil
}

// Update modifies the record with the given id. Attribute values equal to
// Unset mark their field for removal; the rest are assigned over the stored
// document. A nil record with nil errors means no document carries that id.
// A non-nil error is returned only for a malformed id or a failed read.
//
// When the prepared record equals the stored one and nothing is being unset,
// no write is issued and the stored record is returned as-is, so no-op
// updates never churn updated_at.
func (e *Engine) Update(ctx context.Context, ent *Entity, id any, attrs Record, opts UpdateOptions) (Record, Errors, error) {
	start := time.Now()

	oid, err := ToNativeID(id)
	if err != nil {
		return nil, nil, err
	}

	old, err := e.store.FetchOne(ctx, ent.Collection, bson.M{FieldID: oid})
	if err != nil {
		return nil, nil, fmt.Errorf("record: failed to fetch %s %v: %w", ent.Collection, oid, err)
	}
	if old == nil {
		e.metrics.RecordMutation(ent.Collection, metrics.OpUpdate, metrics.OutcomeNotFound, time.Since(start))
		return nil, nil, nil
	}

	var removals []string
	assignments := Record{}
	for field, value := range attrs {
		if value == Unset {
			removals = append(removals, field)
		} else {
			assignments[field] = value
		}
	}

	changed := old.Clone()
	for _, field := range removals {
		delete(changed, field)
	}
	for field, value := range assignments {
		changed[field] = value
	}
	// Hooks must never see a missing or foreign id.
	changed[FieldID] = old[FieldID]

	hc := &HookContext{Context: ctx, Entity: ent, Store: e.store}
	changed = runHook(ent.BeforeValidation, hc, changed)

	if !opts.SkipValidations && ent.Validator != nil {
		if errs := ent.Validator(hc, changed); !errs.Empty() {
			e.metrics.RecordMutation(ent.Collection, metrics.OpUpdate, metrics.OutcomeInvalid, time.Since(start))
			return nil, errs, nil
		}
	}

	prepared := runHook(ent.BeforeSave, hc, changed)

	if len(removals) == 0 && reflect.DeepEqual(prepared, old) {
		e.metrics.RecordMutation(ent.Collection, metrics.OpUpdate, metrics.OutcomeNoop, time.Since(start))
		return old, nil, nil
	}

	prepared = runHook(ent.BeforeUpdate, hc, prepared)

	modification := e.buildModification(old, prepared, attrs, removals)

	matched, err := e.store.AtomicUpdate(ctx, ent.Collection, old, modification)
	if err != nil {
		e.log.Error("update failed", "collection", ent.Collection, "id", oid, "error", err)
		if ent.OnUpdateError != nil {
			ent.OnUpdateError(hc, changed)
		}
		e.metrics.RecordMutation(ent.Collection, metrics.OpUpdate, metrics.OutcomeStorageError, time.Since(start))
		return nil, Errors{FieldBase: []string{UpdateFailedMessage}}, nil
	}
	if matched == 0 {
		// The stored document no longer equals the image we read: a
		// concurrent mutation won the race. The caller re-reads and retries.
		e.log.Warn("update matched no document", "collection", ent.Collection, "id", oid)
	}

	updated, err := e.store.FetchOne(ctx, ent.Collection, bson.M{FieldID: old[FieldID]})
	if err != nil {
		return nil, nil, fmt.Errorf("record: failed to re-fetch %s %v: %w", ent.Collection, oid, err)
	}

	if pipeline := composeAfterUpdate(ent.AfterUpdate, hc, old); pipeline != nil && updated != nil {
		updated = pipeline(updated)
	}
	e.metrics.RecordMutation(ent.Collection, metrics.OpUpdate, metrics.OutcomeOK, time.Since(start))
	return updated, nil, nil
}

// buildModification assembles the atomic write: one $set carrying the whole
// prepared record except the id, with updated_at injected, plus one $unset
// for removed fields. Empty operator maps are omitted; some stores reject
// them.
func (e *Engine) buildModification(old, prepared, attrs Record, removals []string) bson.M {
	set := bson.M{}
	for field, value := range prepared {
		if field != FieldID {
			set[field] = value
		}
	}

	// Honor an explicitly supplied updated_at when it actually changes the
	// stored value; otherwise stamp the current time. There is no way to
	// change another field without bumping updated_at in the same call.
	updatedAt := any(e.now())
	if supplied, ok := attrs[FieldUpdatedAt]; ok && supplied != Unset && !reflect.DeepEqual(supplied, old[FieldUpdatedAt]) {
		updatedAt = supplied
	}

	unset := bson.M{}
	for _, field := range removals {
		unset[field] = ""
	}
	if _, removed := unset[FieldUpdatedAt]; !removed {
		set[FieldUpdatedAt] = updatedAt
	}

	modification := bson.M{}
	if len(set) > 0 {
		modification["$set"] = set
	}
	if len(unset) > 0 {
		modification["$unset"] = unset
	}
	return modification
}

// Delete removes the record with the given id and returns how many documents
// the atomic removal actually deleted (0 or 1). A record that was already
// gone is not an error. BeforeDelete and the AfterDelete queue both see the
// pre-delete snapshot; the after-delete hooks fire on that snapshot even
// when the removal raced and deleted nothing.
func (e *Engine) Delete(ctx context.Context, ent *Entity, id any) (int64, error) {
	start := time.Now()

	oid, err := ToNativeID(id)
	if err != nil {
		return 0, err
	}

	hc := &HookContext{Context: ctx, Entity: ent, Store: e.store}
	idFilter := bson.M{FieldID: oid}

	snapshot, err := e.store.FetchOne(ctx, ent.Collection, idFilter)
	if err != nil {
		return 0, fmt.Errorf("record: failed to fetch %s %v: %w", ent.Collection, oid, err)
	}

	if ent.BeforeDelete != nil && snapshot != nil {
		ent.BeforeDelete(hc, snapshot)
	}

	deleted, err := e.store.AtomicFindAndRemove(ctx, ent.Collection, idFilter)
	if err != nil {
		e.metrics.RecordMutation(ent.Collection, metrics.OpDelete, metrics.OutcomeStorageError, time.Since(start))
		return 0, fmt.Errorf("record: failed to delete %s %v: %w", ent.Collection, oid, err)
	}

	if snapshot != nil {
		if run := composeAfterDelete(ent.AfterDelete, hc); run != nil {
			run(snapshot)
		}
	}

	outcome := metrics.OutcomeOK
	if deleted == 0 {
		outcome = metrics.OutcomeNotFound
	}
	e.metrics.RecordMutation(ent.Collection, metrics.OpDelete, outcome, time.Since(start))
	return deleted, nil
}

// DeleteAll removes every document matching filter, bypassing hooks and
// validation. The filter is mandatory: wiping a collection takes an explicit
// empty filter, a nil filter is rejected.
func (e *Engine) DeleteAll(ctx context.Context, ent *Entity, filter bson.M) (int64, error) {
	if filter == nil {
		return 0, ErrFilterRequired
	}
	deleted, err := e.store.RemoveMany(ctx, ent.Collection, filter)
	if err != nil {
		return 0, fmt.Errorf("record: failed to delete from %s: %w", ent.Collection, err)
	}
	return deleted, nil
}

// Unique reports whether no other record shares the keyFields values held in
// attrs. A missing key field and an explicit nil land in the same uniqueness
// bucket. When attrs carries an id, that record is excluded so an existing
// record can re-check itself. The scope filter is ANDed in with the same
// merge semantics pagination uses.
func (e *Engine) Unique(ctx context.Context, ent *Entity, attrs Record, keyFields []string, scope bson.M) (bool, error) {
	filter := bson.M{}
	for _, field := range keyFields {
		filter[field] = attrs[field]
	}
	filter = MergeAnd(filter, scope)
	if id, ok := attrs[FieldID]; ok && id != nil {
		filter = MergeAnd(filter, bson.M{FieldID: bson.M{"$ne": id}})
	}

	count, err := e.store.Count(ctx, ent.Collection, filter)
	if err != nil {
		return false, fmt.Errorf("record: failed to count %s: %w", ent.Collection, err)
	}
	return count == 0, nil
}
