// Package avroschema infers an Avro-style schema from a JSON document.
//
// Objects become records named after their field path ("root",
// "root_address"), arrays become {"type":"array"} with a union of the
// distinct item schemas, and scalars map to string, long, double, boolean or
// null. Object field order is preserved.
package avroschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	json "github.com/goccy/go-json"
)

// DefaultMaxDepth bounds object/array nesting.
const DefaultMaxDepth = 10000

// ErrMaxDepth is returned when the document nests deeper than MaxDepth.
var ErrMaxDepth = errors.New("json document exceeds maximum nesting depth")

// Options tunes Infer.
type Options struct {
	MaxDepth int    // default: 10000
	RootName string // default: "root"
}

// Schema is a schema node: a primitive name, a Record, an Array or a union
// list of nodes.
type Schema = any

// Field is one record field. Fields marshal in declaration order.
type Field struct {
	Name string `json:"name"`
	Type Schema `json:"type"`
}

// Record is an Avro record node.
type Record struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Array is an Avro array node.
type Array struct {
	Type  string `json:"type"`
	Items Schema `json:"items"`
}

// Infer parses data and returns its schema.
func Infer(data []byte, opts Options) (Schema, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.RootName == "" {
		opts.RootName = "root"
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	in := &inferrer{dec: dec, maxDepth: opts.MaxDepth}

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	s, err := in.value(tok, opts.RootName, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse json: trailing data after document")
	}
	return s, nil
}

type inferrer struct {
	dec      *json.Decoder
	maxDepth int
}

func (in *inferrer) next() (json.Token, error) {
	tok, err := in.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return tok, nil
}

func (in *inferrer) value(tok json.Token, name string, depth int) (Schema, error) {
	switch t := tok.(type) {
	case json.Delim:
		if depth >= in.maxDepth {
			return nil, ErrMaxDepth
		}
		if t == '{' {
			return in.record(name, depth+1)
		}
		if t == '[' {
			return in.array(name, depth+1)
		}
		return nil, fmt.Errorf("parse json: unexpected %q", t)
	case string:
		return "string", nil
	case bool:
		return "boolean", nil
	case nil:
		return "null", nil
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return "long", nil
		}
		return "double", nil
	}
	return nil, fmt.Errorf("parse json: unexpected token %v", tok)
}

func (in *inferrer) record(name string, depth int) (Schema, error) {
	rec := Record{Type: "record", Name: name, Fields: []Field{}}
	for {
		tok, err := in.next()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return rec, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: object key is %v", tok)
		}
		vtok, err := in.next()
		if err != nil {
			return nil, err
		}
		s, err := in.value(vtok, name+"_"+key, depth)
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, Field{Name: key, Type: s})
	}
}

func (in *inferrer) array(name string, depth int) (Schema, error) {
	var items []Schema
	for {
		tok, err := in.next()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			break
		}
		s, err := in.value(tok, name, depth)
		if err != nil {
			return nil, err
		}
		if !contains(items, s) {
			items = append(items, s)
		}
	}

	arr := Array{Type: "array"}
	switch len(items) {
	case 0:
		arr.Items = "null"
	case 1:
		arr.Items = items[0]
	default:
		arr.Items = items
	}
	return arr, nil
}

func contains(items []Schema, s Schema) bool {
	for _, it := range items {
		if reflect.DeepEqual(it, s) {
			return true
		}
	}
	return false
}
