package record

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToNativeID coerces an id given in portable string form to the store's
// native ObjectID. Native ids pass through unchanged. Malformed input
// returns an *InvalidIDError.
func ToNativeID(id any) (primitive.ObjectID, error) {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v, nil
	case string:
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return primitive.NilObjectID, &InvalidIDError{Value: id, Cause: err}
		}
		return oid, nil
	default:
		return primitive.NilObjectID, &InvalidIDError{Value: id}
	}
}
