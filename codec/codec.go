// Package codec centralizes the JSON encodings used for schema documents and
// JSON-typed property values.
//
// Changing the codec of a serialiser changes the bytes written to the store,
// so a JSON property type names its codec in the serialiser name recorded in
// the schema ("json" for Default, "json:<codec>" otherwise).
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// NumberDecoder is implemented by codecs that can decode JSON numbers into
// interface values as json.Number rather than float64.
type NumberDecoder interface {
	UnmarshalUseNumber(data []byte, v any) error
}

// UnmarshalNumbers decodes data into v keeping numbers exact when c supports
// it, and falls back to c.Unmarshal otherwise.
func UnmarshalNumbers(c Codec, data []byte, v any) error {
	if c == nil {
		c = Default
	}
	if nd, ok := c.(NumberDecoder); ok {
		return nd.UnmarshalUseNumber(data, v)
	}
	return c.Unmarshal(data, v)
}
