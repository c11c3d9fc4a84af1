package record

import (
	"fmt"
	"testing"
)

func TestQueue_AppendPreservesOrder(t *testing.T) {
	var q Queue[AfterUpdateHook]
	if q.Len() != 0 {
		t.Fatalf("zero queue has %d hooks", q.Len())
	}

	var order []string
	name := func(n string) AfterUpdateHook {
		return func(_ *HookContext, updated, _ Record) Record {
			order = append(order, n)
			return updated
		}
	}

	q = q.Append(name("a"))
	one := q
	q = q.Append(name("b"))
	q = q.Append(name("c"))

	if one.Len() != 1 {
		t.Fatalf("appending must not mutate earlier queues, len = %d", one.Len())
	}
	if q.Len() != 3 {
		t.Fatalf("queue len = %d, want 3", q.Len())
	}

	pipeline := composeAfterUpdate(q, &HookContext{}, Record{})
	pipeline(Record{})

	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("invocation order = %v, want %v", order, want)
		}
	}
}

func TestComposeAfterUpdate_ChainsRecords(t *testing.T) {
	var q Queue[AfterUpdateHook]
	for i := 0; i < 3; i++ {
		step := fmt.Sprintf("step-%d", i)
		q = q.Append(func(_ *HookContext, updated, _ Record) Record {
			next := updated.Clone()
			next["trail"] = fmt.Sprintf("%v>%s", updated["trail"], step)
			return next
		})
	}

	pipeline := composeAfterUpdate(q, &HookContext{}, Record{})
	out := pipeline(Record{"trail": "start"})

	if out["trail"] != "start>step-0>step-1>step-2" {
		t.Fatalf("trail = %v", out["trail"])
	}
}

func TestComposeAfterUpdate_EmptyQueueIsNil(t *testing.T) {
	var q Queue[AfterUpdateHook]
	if composeAfterUpdate(q, &HookContext{}, Record{}) != nil {
		t.Fatal("empty queue must compose to nil")
	}
}

func TestComposeAfterDelete(t *testing.T) {
	var q Queue[AfterDeleteHook]
	if composeAfterDelete(q, &HookContext{}) != nil {
		t.Fatal("empty queue must compose to nil")
	}

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		q = q.Append(func(_ *HookContext, _ Record) {
			order = append(order, i)
		})
	}

	composeAfterDelete(q, &HookContext{})(Record{})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("invocation order = %v", order)
	}
}

func TestRunHook_NilIsPassthrough(t *testing.T) {
	rec := Record{"a": 1}
	if got := runHook(nil, &HookContext{}, rec); got["a"] != 1 {
		t.Fatalf("passthrough returned %v", got)
	}
}
