package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/elasticjava/gaffer/codec"
	"github.com/elasticjava/gaffer/function"
)

// Interchange document. Field order fixes the top-level key order; maps are
// emitted with sorted keys; property lists keep declaration order.
type document struct {
	Edges            map[string]*elementDocument `json:"edges,omitempty"`
	Entities         map[string]*elementDocument `json:"entities,omitempty"`
	Types            map[string]*typeDocument    `json:"types,omitempty"`
	VertexSerialiser string                      `json:"vertexSerialiser,omitempty"`
}

type elementDocument struct {
	Properties orderedProperties `json:"properties"`
	Validator  *chainDocument    `json:"validator,omitempty"`
	Aggregator *chainDocument    `json:"aggregator,omitempty"`
}

type chainDocument struct {
	Functions []stepDocument `json:"functions"`
}

type stepDocument struct {
	Function  function.Spec `json:"function"`
	Selection []string      `json:"selection"`
}

type typeDocument struct {
	Class             string          `json:"class,omitempty"`
	Serialiser        string          `json:"serialiser"`
	Position          Position        `json:"position,omitempty"`
	AggregateFunction *function.Spec  `json:"aggregateFunction,omitempty"`
	ValidateFunctions []function.Spec `json:"validateFunctions,omitempty"`
}

// orderedProperties is a JSON object whose member order is significant.
type orderedProperties []Property

func (p orderedProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(prop.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *orderedProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("properties must be a JSON object")
	}
	out := orderedProperties{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var typ string
		if err := dec.Decode(&typ); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		out = append(out, Property{Name: name, Type: typ})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// ToJSON renders the schema in its interchange form. The compact form has no
// insignificant whitespace; the pretty form indents with two spaces.
// Rendering, parsing and rendering again yields identical bytes.
func (s *Schema) ToJSON(pretty bool) ([]byte, error) {
	compact, err := codec.Default.Marshal(s.document())
	if err != nil {
		return nil, &DefinitionError{Subject: "document", Reason: "encode", Err: err}
	}
	if !pretty {
		return compact, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, &DefinitionError{Subject: "document", Reason: "indent", Err: err}
	}
	return buf.Bytes(), nil
}

// FromJSON builds a schema from one or more interchange documents. Parts are
// merged; a group or type declared in several parts must be declared
// identically.
func FromJSON(parts ...[]byte) (*Schema, error) {
	if len(parts) == 0 {
		return nil, &DefinitionError{Subject: "document", Reason: "no schema documents"}
	}
	b := NewBuilder()
	for _, p := range parts {
		b = b.JSON(p)
	}
	return b.Build()
}

// JSON adds the declarations of an interchange document. Parse errors are
// reported by Build. Numeric function parameters are decoded exactly.
func (b Builder) JSON(data []byte) Builder {
	var doc document
	if err := codec.UnmarshalNumbers(codec.Default, data, &doc); err != nil {
		b.errs = append(slices.Clip(b.errs), &DefinitionError{Subject: "document", Reason: "malformed JSON", Err: err})
		return b
	}
	b = b.VertexSerialiser(doc.VertexSerialiser)
	for _, name := range sortedNames(doc.Types) {
		t := doc.Types[name]
		if t == nil {
			t = &typeDocument{}
		}
		b = b.Type(name, TypeDefinition{
			Class:             t.Class,
			Serialiser:        t.Serialiser,
			Position:          t.Position,
			AggregateFunction: t.AggregateFunction,
			Validators:        t.ValidateFunctions,
		})
	}
	for _, name := range sortedNames(doc.Entities) {
		b = b.Entity(name, doc.Entities[name].definition())
	}
	for _, name := range sortedNames(doc.Edges) {
		b = b.Edge(name, doc.Edges[name].definition())
	}
	return b
}

func (s *Schema) document() document {
	doc := document{VertexSerialiser: s.vertexSerialiserName}
	if len(s.edges) > 0 {
		doc.Edges = make(map[string]*elementDocument, len(s.edges))
		for name, d := range s.edges {
			doc.Edges[name] = newElementDocument(d)
		}
	}
	if len(s.entities) > 0 {
		doc.Entities = make(map[string]*elementDocument, len(s.entities))
		for name, d := range s.entities {
			doc.Entities[name] = newElementDocument(d)
		}
	}
	if len(s.types) > 0 {
		doc.Types = make(map[string]*typeDocument, len(s.types))
		for name, t := range s.types {
			doc.Types[name] = &typeDocument{
				Class:             t.Class,
				Serialiser:        t.Serialiser,
				Position:          t.Position,
				AggregateFunction: t.AggregateFunction,
				ValidateFunctions: t.Validators,
			}
		}
	}
	return doc
}

func newElementDocument(d *ElementDefinition) *elementDocument {
	props := orderedProperties(d.Properties)
	if props == nil {
		props = orderedProperties{}
	}
	return &elementDocument{
		Properties: props,
		Validator:  newChainDocument(d.Validator),
		Aggregator: newChainDocument(d.Aggregator),
	}
}

func newChainDocument(steps []Step) *chainDocument {
	if steps == nil {
		return nil
	}
	c := &chainDocument{Functions: make([]stepDocument, len(steps))}
	for i, s := range steps {
		c.Functions[i] = stepDocument{Function: s.Function, Selection: s.Selection}
	}
	return c
}

func (e *elementDocument) definition() ElementDefinition {
	if e == nil {
		return ElementDefinition{}
	}
	return ElementDefinition{
		Properties: []Property(e.Properties),
		Validator:  e.Validator.steps(),
		Aggregator: e.Aggregator.steps(),
	}
}

func (c *chainDocument) steps() []Step {
	if c == nil {
		return nil
	}
	out := make([]Step, len(c.Functions))
	for i, f := range c.Functions {
		out[i] = Step{Selection: f.Selection, Function: f.Function}
	}
	return out
}
