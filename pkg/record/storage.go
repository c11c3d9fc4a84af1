package record

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Storage is the narrow contract the engines consume from the document
// store driver. Implementations perform plain, independently-atomic I/O;
// no transaction spans more than one call.
type Storage interface {
	// Fetch returns up to limit records matching filter, ordered by sort.
	// A zero limit means no limit; a nil filter matches everything.
	Fetch(ctx context.Context, collection string, filter bson.M, sort bson.D, limit int64) ([]Record, error)

	// FetchOne returns the first record matching filter, or nil when no
	// record matches.
	FetchOne(ctx context.Context, collection string, filter bson.M) (Record, error)

	// Count returns the number of records matching filter.
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)

	// Insert persists a new record and returns it carrying its generated
	// identity.
	Insert(ctx context.Context, collection string, rec Record) (Record, error)

	// AtomicUpdate applies modification to the single document matching the
	// full match image, and reports how many documents matched. Matching on
	// the previously-read image rather than the id alone means a concurrent
	// mutation makes the write match zero documents instead of silently
	// overwriting it.
	AtomicUpdate(ctx context.Context, collection string, match Record, modification bson.M) (int64, error)

	// AtomicFindAndRemove removes the document matching idFilter and
	// returns the number removed (0 or 1).
	AtomicFindAndRemove(ctx context.Context, collection string, idFilter bson.M) (int64, error)

	// RemoveMany removes every document matching filter.
	RemoveMany(ctx context.Context, collection string, filter bson.M) (int64, error)
}
