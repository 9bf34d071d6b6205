package request

import (
	"strconv"
	"strings"
)

// Field is a single named request parameter. File is set for binary parts
// of a multipart body and Value is ignored in that case.
type Field struct {
	Name  string
	Value string
	File  *File
}

// File is a binary multipart part.
type File struct {
	Filename string
	Data     []byte
}

// Params is an ordered set of request parameters. Absent optional values
// are never recorded, so they never reach the wire.
type Params struct {
	fields []Field
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{}
}

// Set records a text parameter.
func (p *Params) Set(name, value string) *Params {
	p.fields = append(p.fields, Field{Name: name, Value: value})
	return p
}

// SetBool records a boolean as "true"/"false".
func (p *Params) SetBool(name string, value bool) *Params {
	return p.Set(name, strconv.FormatBool(value))
}

// SetInt records an integer parameter.
func (p *Params) SetInt(name string, value int64) *Params {
	return p.Set(name, strconv.FormatInt(value, 10))
}

// SetFloat records a float with the shortest representation.
func (p *Params) SetFloat(name string, value float64) *Params {
	return p.Set(name, strconv.FormatFloat(value, 'f', -1, 64))
}

// SetList joins values with sep into one parameter.
func (p *Params) SetList(name, sep string, values []string) *Params {
	return p.Set(name, strings.Join(values, sep))
}

// OptionalString records value only when it is non-empty.
func (p *Params) OptionalString(name, value string) *Params {
	if value == "" {
		return p
	}
	return p.Set(name, value)
}

// OptionalStringPtr records *value when value is non-nil, including "".
func (p *Params) OptionalStringPtr(name string, value *string) *Params {
	if value == nil {
		return p
	}
	return p.Set(name, *value)
}

// OptionalBool records *value when value is non-nil.
func (p *Params) OptionalBool(name string, value *bool) *Params {
	if value == nil {
		return p
	}
	return p.SetBool(name, *value)
}

// OptionalInt records *value when value is non-nil.
func (p *Params) OptionalInt(name string, value *int64) *Params {
	if value == nil {
		return p
	}
	return p.SetInt(name, *value)
}

// OptionalFloat records *value when value is non-nil.
func (p *Params) OptionalFloat(name string, value *float64) *Params {
	if value == nil {
		return p
	}
	return p.SetFloat(name, *value)
}

// OptionalList records the joined list when it has at least one element.
func (p *Params) OptionalList(name, sep string, values []string) *Params {
	if len(values) == 0 {
		return p
	}
	return p.SetList(name, sep, values)
}

// AddFile records a binary part.
func (p *Params) AddFile(name, filename string, data []byte) *Params {
	p.fields = append(p.fields, Field{Name: name, File: &File{Filename: filename, Data: data}})
	return p
}

// Fields returns the recorded fields in insertion order.
func (p *Params) Fields() []Field {
	if p == nil {
		return nil
	}
	return p.fields
}

// Has reports whether a field with the given name was recorded.
func (p *Params) Has(name string) bool {
	for _, f := range p.Fields() {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of recorded fields.
func (p *Params) Len() int {
	return len(p.Fields())
}
