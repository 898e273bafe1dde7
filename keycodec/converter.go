// Package keycodec maps graph elements to byte-sortable keys and back.
//
// Key layout (esc is the order-preserving escaping of 0x00 and 0x01, 00 is
// the delimiter):
//
//	entity: esc(vertex) 00 esc(group) 00 esc(qualifier) 00 flag
//	edge:   esc(row) 00 esc(other) 00 esc(group) 00 esc(qualifier) 00 flag
//
// Every key of a vertex starts with esc(vertex) 00, so a prefix scan returns
// the vertex's entity and all incident edges. The flag is always the last
// byte and can be read without decoding the key.
package keycodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/schema"
)

// MalformedKeyError is returned when a key or value cannot be decoded.
type MalformedKeyError struct {
	Key    []byte
	Reason string
	Err    error
}

func (e *MalformedKeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keycodec: malformed key %x: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("keycodec: malformed key %x: %s", e.Key, e.Reason)
}

func (e *MalformedKeyError) Unwrap() error { return e.Err }

// KeyValue is one encoded store record.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Option configures a Converter.
type Option func(*Converter)

// WithCompression sets the compression used for new value payloads.
func WithCompression(c Compression) Option {
	return func(cv *Converter) {
		cv.compression = c
	}
}

// Converter encodes and decodes elements for one schema.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	schema      *schema.Schema
	compression Compression
}

// NewConverter returns a converter for s.
func NewConverter(s *schema.Schema, opts ...Option) (*Converter, error) {
	if s == nil {
		return nil, errors.New("keycodec: schema is required")
	}
	c := &Converter{schema: s}
	for _, opt := range opts {
		opt(c)
	}
	switch c.compression {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return nil, fmt.Errorf("keycodec: unknown compression %d", c.compression)
	}
	return c, nil
}

// Schema returns the schema the converter was built for.
func (c *Converter) Schema() *schema.Schema { return c.schema }

// Encode returns the records for e: one for an entity or a self-loop, two for
// any other edge (one under each endpoint). Undirected edges are stored with
// the smaller serialised vertex as source.
func (c *Converter) Encode(e element.Element) ([]KeyValue, error) {
	keys, err := c.EncodeKeys(e)
	if err != nil {
		return nil, err
	}
	value, err := c.EncodeValue(e)
	if err != nil {
		return nil, err
	}
	out := make([]KeyValue, len(keys))
	for i, k := range keys {
		out[i] = KeyValue{Key: k, Value: value}
	}
	return out, nil
}

// EncodeKeys returns only the keys of e.
func (c *Converter) EncodeKeys(e element.Element) ([][]byte, error) {
	def, err := c.definition(e)
	if err != nil {
		return nil, err
	}
	qualifier, err := c.encodeProperties(def, def.QualifierProperties(), e.ElementProperties())
	if err != nil {
		return nil, err
	}

	switch x := e.(type) {
	case *element.Entity:
		v, err := c.serialiseVertex(x.Vertex)
		if err != nil {
			return nil, err
		}
		return [][]byte{buildKey([][]byte{v, []byte(x.Group), qualifier}, FlagEntity)}, nil
	case *element.Edge:
		src, dst, err := c.orientedEndpoints(x)
		if err != nil {
			return nil, err
		}
		correct, incorrect := edgeFlags(x.Directed)
		first := buildKey([][]byte{src, dst, []byte(x.Group), qualifier}, correct)
		if bytes.Equal(src, dst) {
			return [][]byte{first}, nil
		}
		second := buildKey([][]byte{dst, src, []byte(x.Group), qualifier}, incorrect)
		return [][]byte{first, second}, nil
	default:
		return nil, fmt.Errorf("keycodec: unsupported element %T", e)
	}
}

// EncodeValue returns the value payload of e.
func (c *Converter) EncodeValue(e element.Element) ([]byte, error) {
	def, err := c.definition(e)
	if err != nil {
		return nil, err
	}
	body, err := c.encodeProperties(def, def.ValueProperties(), e.ElementProperties())
	if err != nil {
		return nil, err
	}
	return compressPayload(body, c.compression)
}

// Decode rebuilds an element from a key and its value payload.
func (c *Converter) Decode(key, value []byte) (element.Element, error) {
	e, def, err := c.decodeKey(key)
	if err != nil {
		return nil, err
	}
	if err := c.decodeValueInto(def, key, value, e.ElementProperties()); err != nil {
		return nil, err
	}
	return e, nil
}

// DecodeKey rebuilds an element from its key alone. Only group-by properties
// are populated.
func (c *Converter) DecodeKey(key []byte) (element.Element, error) {
	e, _, err := c.decodeKey(key)
	return e, err
}

// DecodeValue decodes the value-position properties of group.
func (c *Converter) DecodeValue(group string, value []byte) (element.Properties, error) {
	def, ok := c.schema.Group(group)
	if !ok {
		return nil, fmt.Errorf("keycodec: %w %q", schema.ErrUnknownGroup, group)
	}
	props := element.Properties{}
	if err := c.decodeValueInto(def, nil, value, props); err != nil {
		return nil, err
	}
	return props, nil
}

// RowPrefix returns the prefix shared by every key stored under vertex.
func (c *Converter) RowPrefix(vertex any) ([]byte, error) {
	v, err := c.serialiseVertex(vertex)
	if err != nil {
		return nil, err
	}
	return append(AppendEscaped(nil, v), Delimiter), nil
}

// EdgePrefix returns the prefix shared by every edge key whose row is a and
// whose other endpoint is b.
func (c *Converter) EdgePrefix(a, b any) ([]byte, error) {
	prefix, err := c.RowPrefix(a)
	if err != nil {
		return nil, err
	}
	other, err := c.serialiseVertex(b)
	if err != nil {
		return nil, err
	}
	return append(AppendEscaped(prefix, other), Delimiter), nil
}

func (c *Converter) definition(e element.Element) (*schema.ElementDefinition, error) {
	if e == nil {
		return nil, errors.New("keycodec: nil element")
	}
	def, ok := c.schema.Group(e.ElementGroup())
	if !ok {
		return nil, fmt.Errorf("keycodec: %w %q", schema.ErrUnknownGroup, e.ElementGroup())
	}
	if def.Kind() != schema.KindOf(e) {
		return nil, fmt.Errorf("keycodec: group %q holds %s elements, got %T", def.Name(), def.Kind(), e)
	}
	return def, nil
}

func (c *Converter) serialiseVertex(v any) ([]byte, error) {
	if v == nil {
		return nil, errors.New("keycodec: nil vertex")
	}
	return c.schema.VertexSerialiser().Serialise(v)
}

func (c *Converter) orientedEndpoints(e *element.Edge) (src, dst []byte, err error) {
	if src, err = c.serialiseVertex(e.Source); err != nil {
		return nil, nil, err
	}
	if dst, err = c.serialiseVertex(e.Destination); err != nil {
		return nil, nil, err
	}
	if !e.Directed && bytes.Compare(src, dst) > 0 {
		src, dst = dst, src
	}
	return src, dst, nil
}

// encodeProperties writes uvarint(len+1) followed by the serialised bytes for
// each named property, or uvarint(0) when the property is absent.
func (c *Converter) encodeProperties(def *schema.ElementDefinition, names []string, props element.Properties) ([]byte, error) {
	var out []byte
	for _, name := range names {
		v, ok := props[name]
		if !ok || v == nil {
			out = binary.AppendUvarint(out, 0)
			continue
		}
		t, _ := def.PropertyType(name)
		b, err := t.SerialiserImpl().Serialise(v)
		if err != nil {
			return nil, fmt.Errorf("keycodec: property %q of group %q: %w", name, def.Name(), err)
		}
		out = binary.AppendUvarint(out, uint64(len(b))+1)
		out = append(out, b...)
	}
	return out, nil
}

func (c *Converter) decodeProperties(def *schema.ElementDefinition, names []string, data []byte, into element.Properties) error {
	for _, name := range names {
		if len(data) == 0 {
			// Properties appended to a group after data was written.
			return nil
		}
		n, w := binary.Uvarint(data)
		if w <= 0 {
			return errors.New("truncated property length")
		}
		data = data[w:]
		if n == 0 {
			continue
		}
		size := n - 1
		if uint64(len(data)) < size {
			return fmt.Errorf("property %q truncated", name)
		}
		t, _ := def.PropertyType(name)
		v, err := t.SerialiserImpl().Deserialise(data[:size])
		if err != nil {
			return err
		}
		into[name] = v
		data = data[size:]
	}
	if len(data) != 0 {
		return errors.New("trailing property bytes")
	}
	return nil
}

func (c *Converter) decodeValueInto(def *schema.ElementDefinition, key, value []byte, into element.Properties) error {
	body, err := decompressPayload(value)
	if err != nil {
		return &MalformedKeyError{Key: key, Reason: "value payload", Err: err}
	}
	if err := c.decodeProperties(def, def.ValueProperties(), body, into); err != nil {
		return &MalformedKeyError{Key: key, Reason: "value properties", Err: err}
	}
	return nil
}

func (c *Converter) decodeKey(key []byte) (element.Element, *schema.ElementDefinition, error) {
	malformed := func(reason string, err error) error {
		return &MalformedKeyError{Key: key, Reason: reason, Err: err}
	}

	flag, ok := FlagOf(key)
	if !ok {
		return nil, nil, malformed("empty key", nil)
	}
	if !flag.Valid() {
		return nil, nil, malformed(fmt.Sprintf("unknown flag %d", byte(flag)), nil)
	}
	body := key[:len(key)-1]
	if len(body) == 0 || body[len(body)-1] != Delimiter {
		return nil, nil, malformed("missing delimiter before flag", nil)
	}
	raw := bytes.Split(body[:len(body)-1], []byte{Delimiter})

	want := 4
	if flag == FlagEntity {
		want = 3
	}
	if len(raw) != want {
		return nil, nil, malformed(fmt.Sprintf("%s key has %d fields, want %d", flag, len(raw), want), nil)
	}
	fields := make([][]byte, len(raw))
	for i, f := range raw {
		u, err := Unescape(f)
		if err != nil {
			return nil, nil, malformed(fmt.Sprintf("field %d", i), err)
		}
		fields[i] = u
	}

	vs := c.schema.VertexSerialiser()
	group := string(fields[want-2])
	def, ok := c.schema.Group(group)
	if !ok {
		return nil, nil, malformed(fmt.Sprintf("unknown group %q", group), schema.ErrUnknownGroup)
	}
	props := element.Properties{}

	var e element.Element
	if flag == FlagEntity {
		if def.Kind() != schema.KindEntity {
			return nil, nil, malformed(fmt.Sprintf("entity flag on edge group %q", group), nil)
		}
		v, err := vs.Deserialise(fields[0])
		if err != nil {
			return nil, nil, malformed("vertex", err)
		}
		e = &element.Entity{Group: group, Vertex: v, Properties: props}
	} else {
		if def.Kind() != schema.KindEdge {
			return nil, nil, malformed(fmt.Sprintf("edge flag on entity group %q", group), nil)
		}
		row, err := vs.Deserialise(fields[0])
		if err != nil {
			return nil, nil, malformed("row vertex", err)
		}
		other, err := vs.Deserialise(fields[1])
		if err != nil {
			return nil, nil, malformed("other vertex", err)
		}
		edge := &element.Edge{Group: group, Directed: flag.IsDirected(), Properties: props}
		if flag.IsCorrectWay() {
			edge.Source, edge.Destination = row, other
		} else {
			edge.Source, edge.Destination = other, row
		}
		e = edge
	}

	if err := c.decodeProperties(def, def.QualifierProperties(), fields[want-1], props); err != nil {
		return nil, nil, malformed("qualifier", err)
	}
	return e, def, nil
}

func buildKey(fields [][]byte, flag Flag) []byte {
	size := 1
	for _, f := range fields {
		size += len(f) + 2
	}
	key := make([]byte, 0, size)
	for _, f := range fields {
		key = AppendEscaped(key, f)
		key = append(key, Delimiter)
	}
	return append(key, byte(flag))
}
