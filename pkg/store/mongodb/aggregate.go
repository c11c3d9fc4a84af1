package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DayCount is one bucket of a per-day aggregation: the day in YYYY-MM-DD
// form and how many documents fall on it.
type DayCount struct {
	Day   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// CountByDay groups the documents matching filter by the calendar day of the
// given time field, evaluated in loc, and returns the buckets in day order.
// Day boundaries are computed inside the store so documents written in any
// timezone bucket consistently.
func (a *Adapter) CountByDay(ctx context.Context, collection string, filter bson.M, field string, loc *time.Location) ([]DayCount, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	timezone := time.UTC.String()
	if loc != nil {
		timezone = loc.String()
	}

	pipeline := []bson.M{
		{"$match": orEmptyFilter(filter)},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$" + field,
				"timezone": timezone,
			}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := a.Collection(collection).Aggregate(opCtx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(opCtx)

	var buckets []DayCount
	if err := cursor.All(opCtx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
