package storage

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// nativeIDKeys are the identifier fields backends emit natively. They are
// renamed to "id" and never appear in a normalized record.
var nativeIDKeys = []string{"_id", "id"}

// Normalize converts a raw stored record from any backend into the one
// canonical JSON-able shape the API emits:
//
//   - the storage-native identifier is renamed to "id" as a string and the
//     native field is dropped;
//   - every populated date/timestamp value becomes epoch milliseconds;
//   - absent fields stay absent (never null-filled);
//   - all other fields pass through unchanged.
//
// Every new backend must produce records this function understands; it is the
// only place the three storage shapes converge.
func Normalize(rec Record) Record {
	if rec == nil {
		return nil
	}

	out := make(Record, len(rec))
	for key, value := range rec {
		if isNativeID(key) {
			out["id"] = idString(value)
			continue
		}
		out[key] = normalizeValue(value)
	}

	return out
}

// NormalizeAll normalizes a listing in stored order.
func NormalizeAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i := range recs {
		out[i] = Normalize(recs[i])
	}
	return out
}

func isNativeID(key string) bool {
	for _, k := range nativeIDKeys {
		if key == k {
			return true
		}
	}
	return false
}

func idString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UnixMilli()
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UnixMilli()
	case primitive.DateTime:
		// Mongo stores DateTime as epoch milliseconds already.
		return int64(v)
	default:
		return value
	}
}
