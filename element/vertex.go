package element

import (
	"fmt"
	"math"
	"reflect"
)

type bytesKey string

type formattedKey string

// VertexKey returns a comparable value identifying v, suitable as a map key.
// Byte slices compare by content. Numbers compare by value regardless of
// their Go type: a seed of int(1) and a decoded int64(1) share a key.
// Non-comparable values fall back to their Go-syntax representation.
func VertexKey(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return bytesKey(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return unsignedKey(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return unsignedKey(x)
	case float32:
		return float64(x)
	case string, bool, int64, float64:
		return x
	case fmt.Stringer:
		if isComparable(v) {
			return v
		}
		return formattedKey(x.String())
	default:
		if isComparable(v) {
			return v
		}
		return formattedKey(fmt.Sprintf("%#v", v))
	}
}

func unsignedKey(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

func isComparable(v any) bool {
	return reflect.ValueOf(v).Comparable()
}
