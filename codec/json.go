package codec

import (
	"bytes"
	"encoding/json"
	"errors"
)

// JSON is the standard-library JSON codec.
//
// It is kept for callers that need the reference encoder's exact output (for
// example when comparing against documents produced by other tools).
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// UnmarshalUseNumber decodes data into v with numbers held as json.Number.
func (JSON) UnmarshalUseNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return trailing(dec.More())
}

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for schema documents and the JSON serialiser.
var Default Codec = GoJSON{}

var errTrailingData = errors.New("codec: trailing data after JSON value")

func trailing(more bool) error {
	if more {
		return errTrailingData
	}
	return nil
}
