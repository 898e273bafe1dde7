package serialisation

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/elasticjava/gaffer/codec"
)

// String serialises strings as their UTF-8 bytes.
type String struct{}

func (String) Name() string { return "string" }
func (String) PreservesOrdering() bool { return true }

func (String) CanHandle(v any) bool {
	_, ok := v.(string)
	return ok
}

func (s String) Serialise(v any) ([]byte, error) {
	str, ok := v.(string)
	if !ok {
		return nil, serialiseErr(s.Name(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v))
	}
	return []byte(str), nil
}

func (String) Deserialise(b []byte) (any, error) { return string(b), nil }

// OrderedInt64 serialises signed integers as 8 big-endian bytes with the sign
// bit flipped, so byte order equals numeric order.
type OrderedInt64 struct{}

func (OrderedInt64) Name() string { return "ordered-int64" }
func (OrderedInt64) PreservesOrdering() bool { return true }

func (OrderedInt64) CanHandle(v any) bool {
	_, ok := toInt64(v)
	return ok
}

func (s OrderedInt64) Serialise(v any) ([]byte, error) {
	n, ok := toInt64(v)
	if !ok {
		return nil, serialiseErr(s.Name(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v))
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n)^(1<<63))
	return b[:], nil
}

func (s OrderedInt64) Deserialise(b []byte) (any, error) {
	if len(b) != 8 {
		return nil, deserialiseErr(s.Name(), fmt.Errorf("expected 8 bytes, got %d", len(b)))
	}
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63)), nil
}

func toInt64(v any) (int64, bool) {
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
	default:
		return 0, false
	}
}

// OrderedFloat64 serialises floats so that byte order equals numeric order
// (negative values have all bits inverted, positive values the sign bit set).
type OrderedFloat64 struct{}

func (OrderedFloat64) Name() string { return "ordered-float64" }
func (OrderedFloat64) PreservesOrdering() bool { return true }

func (OrderedFloat64) CanHandle(v any) bool {
	switch v.(type) {
	case float64, float32:
		return true
	}
	return false
}

func (s OrderedFloat64) Serialise(v any) ([]byte, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return nil, serialiseErr(s.Name(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v))
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bits)
	return b[:], nil
}

func (s OrderedFloat64) Deserialise(b []byte) (any, error) {
	if len(b) != 8 {
		return nil, deserialiseErr(s.Name(), fmt.Errorf("expected 8 bytes, got %d", len(b)))
	}
	bits := binary.BigEndian.Uint64(b)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

// Bool serialises booleans as a single byte.
type Bool struct{}

func (Bool) Name() string { return "bool" }
func (Bool) PreservesOrdering() bool { return true }

func (Bool) CanHandle(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (s Bool) Serialise(v any) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, serialiseErr(s.Name(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v))
	}
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (s Bool) Deserialise(b []byte) (any, error) {
	if len(b) != 1 || b[0] > 1 {
		return nil, deserialiseErr(s.Name(), fmt.Errorf("invalid bool encoding %x", b))
	}
	return b[0] == 1, nil
}

// Bytes passes byte slices through unchanged.
type Bytes struct{}

func (Bytes) Name() string { return "bytes" }
func (Bytes) PreservesOrdering() bool { return true }

func (Bytes) CanHandle(v any) bool {
	_, ok := v.([]byte)
	return ok
}

func (s Bytes) Serialise(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, serialiseErr(s.Name(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v))
	}
	return append([]byte(nil), b...), nil
}

func (Bytes) Deserialise(b []byte) (any, error) { return append([]byte(nil), b...), nil }

// StringSet serialises a set of strings as sorted, de-duplicated,
// uvarint length-prefixed members. Deserialised values are []string.
type StringSet struct{}

func (StringSet) Name() string { return "string-set" }
func (StringSet) PreservesOrdering() bool { return false }

func (StringSet) CanHandle(v any) bool {
	_, ok := v.([]string)
	return ok
}

func (s StringSet) Serialise(v any) ([]byte, error) {
	members, ok := v.([]string)
	if !ok {
		return nil, serialiseErr(s.Name(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v))
	}
	members = NormaliseSet(members)
	var out []byte
	for _, m := range members {
		out = binary.AppendUvarint(out, uint64(len(m)))
		out = append(out, m...)
	}
	return out, nil
}

func (s StringSet) Deserialise(b []byte) (any, error) {
	out := []string{}
	for len(b) > 0 {
		n, w := binary.Uvarint(b)
		if w <= 0 || uint64(len(b)-w) < n {
			return nil, deserialiseErr(s.Name(), fmt.Errorf("truncated member"))
		}
		b = b[w:]
		out = append(out, string(b[:n]))
		b = b[n:]
	}
	return out, nil
}

// NormaliseSet returns a sorted copy of members without duplicates.
func NormaliseSet(members []string) []string {
	out := append([]string(nil), members...)
	sort.Strings(out)
	j := 0
	for i, m := range out {
		if i > 0 && m == out[j-1] {
			continue
		}
		out[j] = m
		j++
	}
	return out[:j]
}

// JSON serialises arbitrary values through a codec. Deserialised values are
// the codec's generic representation (maps, slices, float64, string, bool).
type JSON struct {
	codec codec.Codec
}

const jsonName = "json"

// JSONByName returns the JSON serialiser whose Name is name, resolving the
// codec part with codec.ByName.
func JSONByName(name string) (JSON, bool) {
	if name == jsonName {
		return NewJSON(nil), true
	}
	codecName, ok := strings.CutPrefix(name, jsonName+":")
	if !ok {
		return JSON{}, false
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		return JSON{}, false
	}
	return NewJSON(c), true
}

// NewJSON returns a JSON serialiser using c, or codec.Default when c is nil.
func NewJSON(c codec.Codec) JSON {
	if c == nil {
		c = codec.Default
	}
	return JSON{codec: c}
}

func (s JSON) c() codec.Codec {
	if s.codec == nil {
		return codec.Default
	}
	return s.codec
}

// Name is "json" for the default codec and "json:<codec>" otherwise.
func (s JSON) Name() string {
	c := s.c()
	if c.Name() == codec.Default.Name() {
		return jsonName
	}
	return jsonName + ":" + c.Name()
}
func (JSON) PreservesOrdering() bool { return false }
func (JSON) CanHandle(any) bool { return true }

func (s JSON) Serialise(v any) ([]byte, error) {
	b, err := s.c().Marshal(v)
	if err != nil {
		return nil, serialiseErr(s.Name(), err)
	}
	return b, nil
}

func (s JSON) Deserialise(b []byte) (any, error) {
	var v any
	if err := s.c().Unmarshal(b, &v); err != nil {
		return nil, deserialiseErr(s.Name(), err)
	}
	return v, nil
}
