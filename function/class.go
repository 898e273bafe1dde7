package function

// Value classes a schema type may declare.
const (
	ClassString    = "string"
	ClassInt64     = "int64"
	ClassFloat64   = "float64"
	ClassBool      = "bool"
	ClassBytes     = "bytes"
	ClassStringSet = "string-set"
	ClassAny       = "any"
)

// KnownClass reports whether class is one of the declared value classes.
func KnownClass(class string) bool {
	switch class {
	case ClassString, ClassInt64, ClassFloat64, ClassBool, ClassBytes, ClassStringSet, ClassAny:
		return true
	}
	return false
}

// InstanceOf reports whether v belongs to class. Narrow integer and float
// types count as int64 and float64.
func InstanceOf(class string, v any) bool {
	switch class {
	case ClassAny:
		return true
	case ClassString:
		_, ok := v.(string)
		return ok
	case ClassInt64:
		_, ok := asInt64(v)
		return ok
	case ClassFloat64:
		switch v.(type) {
		case float64, float32:
			return true
		}
	case ClassBool:
		_, ok := v.(bool)
		return ok
	case ClassBytes:
		_, ok := v.([]byte)
		return ok
	case ClassStringSet:
		_, ok := v.([]string)
		return ok
	}
	return false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// compare orders two numbers or two strings. ok is false for any other pair.
func compare(a, b any) (c int, ok bool) {
	if ai, aok := asInt64(a); aok {
		if bi, bok := asInt64(b); bok {
			return cmpOrdered(ai, bi), true
		}
	}
	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			return cmpOrdered(af, bf), true
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return cmpOrdered(as, bs), true
		}
	}
	return 0, false
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
