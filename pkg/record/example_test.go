package record

import (
	"context"
	"fmt"

	"github.com/nimburion/docstore/pkg/config"
	"github.com/nimburion/docstore/pkg/observability/logger"
	"github.com/nimburion/docstore/pkg/observability/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

// ExampleNewEngine shows wiring the metrics.enabled flag into the engine's
// recorder.
func ExampleNewEngine() {
	cfg := config.DefaultConfig()

	e, err := NewEngine(newMemStore(), logger.NewNop(),
		WithMetricsRecorder(metrics.NewRecorder(cfg.Metrics.Enabled)))
	if err != nil {
		fmt.Println("wiring failed:", err)
		return
	}

	_, errs := e.Create(context.Background(), &Entity{Collection: "articles"}, Record{"title": "hello"})
	fmt.Println("created:", errs.Empty())

	// Output:
	// created: true
}

// ExampleEngine_Create demonstrates wiring an entity descriptor with a
// validator and a before-save hook.
func ExampleEngine_Create() {
	e, _ := NewEngine(newMemStore(), logger.NewNop())

	articles := &Entity{
		Collection: "articles",
		Validator: func(_ *HookContext, rec Record) Errors {
			if rec["title"] == nil || rec["title"] == "" {
				return Errors{"title": []string{"is required"}}
			}
			return nil
		},
		BeforeSave: func(_ *HookContext, rec Record) Record {
			out := rec.Clone()
			out["slug"] = fmt.Sprintf("post-%v", rec["title"])
			return out
		},
	}

	if _, errs := e.Create(context.Background(), articles, Record{}); !errs.Empty() {
		fmt.Println("rejected:", errs["title"][0])
	}

	rec, _ := e.Create(context.Background(), articles, Record{"title": "hello"})
	fmt.Println("slug:", rec["slug"])

	// Output:
	// rejected: is required
	// slug: post-hello
}

// ExampleEngine_Page demonstrates cursor-based paging over a sorted
// collection.
func ExampleEngine_Page() {
	e, _ := NewEngine(newMemStore(), logger.NewNop())
	articles := &Entity{Collection: "articles"}

	for i := 0; i < 5; i++ {
		e.Create(context.Background(), articles, Record{"title": fmt.Sprintf("a%d", i)})
	}

	q := Query{Sort: []Sort{{Field: "title", Order: SortAsc}}}
	page, _ := e.Page(context.Background(), articles, q, nil, 3)
	for _, rec := range page.Items {
		fmt.Println(rec["title"])
	}
	fmt.Println("has next:", page.Next != nil)

	// Output:
	// a0
	// a1
	// a2
	// has next: true
}

// ExampleMergeAnd shows the neutral-element behavior.
func ExampleMergeAnd() {
	base := bson.M{"status": "published"}

	fmt.Println(len(MergeAnd(base, nil)))
	fmt.Println(len(MergeAnd(base, bson.M{"rank": 1})["$and"].([]bson.M)))

	// Output:
	// 1
	// 2
}
