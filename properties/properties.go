// Package properties implements the ordered, typed name/value store attached to maps,
// tilesets, tiles, layers and objects.
package properties

import (
	"errors"
	"math"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"golang.org/x/exp/errors/fmt"
)

var ErrInvalidPropertyValue = errors.New("InvalidPropertyValue")

type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
	TypeColor  Type = "color"
	TypeFile   Type = "file"
)

// ParseType accepts the names used in TMX documents; "" means string.
func ParseType(s string) (Type, errorsx.Error) {
	switch Type(s) {
	case "", TypeString:
		return TypeString, nil
	case TypeInt, TypeFloat, TypeBool, TypeColor, TypeFile:
		return Type(s), nil
	}
	return "", errorsx.Wrap(ErrInvalidPropertyValue, "type", s)
}

// Value is a tagged property value. The zero Value is the empty string.
type Value struct {
	typ Type
	s   string
	i   int64
	f   float64
	b   bool
	c   tmxcolor.Color
}

func String(s string) Value             { return Value{typ: TypeString, s: s} }
func Int(i int64) Value                 { return Value{typ: TypeInt, i: i} }
func Float(f float64) Value             { return Value{typ: TypeFloat, f: f} }
func Bool(b bool) Value                 { return Value{typ: TypeBool, b: b} }
func ColorValue(c tmxcolor.Color) Value { return Value{typ: TypeColor, c: c} }
func File(path string) Value            { return Value{typ: TypeFile, s: path} }

// Parse converts the serialized form of a value of type t.
func Parse(t Type, raw string) (Value, errorsx.Error) {
	switch t {
	case "", TypeString:
		return String(raw), nil
	case TypeFile:
		return File(raw), nil
	case TypeInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, invalid(t, raw, err)
		}
		return Int(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, invalid(t, raw, err)
		}
		return Float(f), nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, invalid(t, raw, err)
		}
		return Bool(b), nil
	case TypeColor:
		c, err := tmxcolor.ParseHex(raw)
		if err != nil {
			return Value{}, invalid(t, raw, err)
		}
		return ColorValue(c), nil
	}
	return Value{}, errorsx.Wrap(ErrInvalidPropertyValue, "type", string(t))
}

func invalid(t Type, raw string, cause error) errorsx.Error {
	return errorsx.Wrap(ErrInvalidPropertyValue,
		"type", string(t),
		"raw", raw,
		"reason", fmt.Sprintf("%v", cause),
	)
}

func (v Value) Type() Type {
	if v.typ == "" {
		return TypeString
	}
	return v.typ
}

// Raw returns the value as it is written in a document.
func (v Value) Raw() string {
	switch v.Type() {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e15 {
			return strconv.FormatFloat(v.f, 'f', 1, 64)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeColor:
		return v.c.Hex()
	}
	return v.s
}

func (v Value) String() string {
	return v.Raw()
}

func (v Value) AsString() string        { return v.s }
func (v Value) AsInt() int64            { return v.i }
func (v Value) AsFloat() float64        { return v.f }
func (v Value) AsBool() bool            { return v.b }
func (v Value) AsColor() tmxcolor.Color { return v.c }
func (v Value) Equal(other Value) bool  { return v.Type() == other.Type() && v.Raw() == other.Raw() }

// Store keeps properties in insertion order. Names are unique.
type Store struct {
	names  []string
	values map[string]Value
}

func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

func (s *Store) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Set adds or replaces a property. A replaced property keeps its position.
func (s *Store) Set(name string, value Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

// SetRaw parses raw as type t and stores the result. The store is untouched on error.
func (s *Store) SetRaw(name string, t Type, raw string) errorsx.Error {
	v, err := Parse(t, raw)
	if err != nil {
		return errorsx.Wrap(err, "property", name)
	}
	s.Set(name, v)
	return nil
}

func (s *Store) Delete(name string) bool {
	if _, ok := s.values[name]; !ok {
		return false
	}
	delete(s.values, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Each calls fn for every property in order.
func (s *Store) Each(fn func(name string, value Value)) {
	if s == nil {
		return
	}
	for _, n := range s.names {
		fn(n, s.values[n])
	}
}

func (s *Store) Clone() *Store {
	clone := NewStore()
	s.Each(clone.Set)
	return clone
}

func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, n := range s.Names() {
		a, _ := s.Get(n)
		b, ok := other.Get(n)
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}
