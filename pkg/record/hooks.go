package record

import "context"

// HookContext carries the collaborators a lifecycle hook may need: the
// entity being mutated, the storage handle for nested queries, and the
// request context. Hooks read it, never mutate it.
type HookContext struct {
	Context context.Context
	Entity  *Entity
	Store   Storage
}

// Hook transforms a record at a single lifecycle slot. The engine rebinds
// the working record to the hook's return value.
type Hook func(hc *HookContext, rec Record) Record

// Validator inspects a record and returns the errors found. An empty result
// means the record is valid.
type Validator func(hc *HookContext, rec Record) Errors

// AfterUpdateHook runs after a successful update. It receives the re-fetched
// document and the pre-update snapshot, and returns the record handed to the
// next hook in the queue.
type AfterUpdateHook func(hc *HookContext, updated, previous Record) Record

// AfterDeleteHook runs after the atomic removal, against the pre-delete
// snapshot.
type AfterDeleteHook func(hc *HookContext, rec Record)

// Queue is an ordered sequence of hooks sharing one lifecycle slot. The
// zero value is the empty queue. Append returns a new queue; invocation
// order always equals registration order.
type Queue[H any] struct {
	hooks []H
}

// Append returns a queue ending with h, preserving prior order.
func (q Queue[H]) Append(h H) Queue[H] {
	hooks := make([]H, len(q.hooks), len(q.hooks)+1)
	copy(hooks, q.hooks)
	return Queue[H]{hooks: append(hooks, h)}
}

// Len reports the number of registered hooks.
func (q Queue[H]) Len() int {
	return len(q.hooks)
}

// composeAfterUpdate builds one pipeline function from the queue, or nil
// when the queue is empty. Wrapping closures applies them right-to-left, so
// the queue is walked backwards: at call time the first registered hook runs
// first, each later hook receiving the previous hook's return value.
func composeAfterUpdate(q Queue[AfterUpdateHook], hc *HookContext, previous Record) func(Record) Record {
	if q.Len() == 0 {
		return nil
	}
	pipeline := func(rec Record) Record { return rec }
	for i := q.Len() - 1; i >= 0; i-- {
		hook := q.hooks[i]
		next := pipeline
		pipeline = func(rec Record) Record {
			return next(hook(hc, rec, previous))
		}
	}
	return pipeline
}

// composeAfterDelete is the after-delete counterpart; delete hooks observe
// the snapshot but do not rebind it.
func composeAfterDelete(q Queue[AfterDeleteHook], hc *HookContext) func(Record) {
	if q.Len() == 0 {
		return nil
	}
	return func(rec Record) {
		for _, hook := range q.hooks {
			hook(hc, rec)
		}
	}
}

// runHook applies an optional single-slot hook; an absent hook is a
// passthrough.
func runHook(h Hook, hc *HookContext, rec Record) Record {
	if h == nil {
		return rec
	}
	return h(hc, rec)
}
