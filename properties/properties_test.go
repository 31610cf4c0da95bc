package properties

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/tmxkit/tmxcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		raw     string
		want    Value
		wantErr bool
	}{
		{"string", TypeString, "hello", String("hello"), false},
		{"empty type is string", "", "x", String("x"), false},
		{"int", TypeInt, "-12", Int(-12), false},
		{"bad int", TypeInt, "1.5", Value{}, true},
		{"float", TypeFloat, "0.25", Float(0.25), false},
		{"bad float", TypeFloat, "abc", Value{}, true},
		{"bool", TypeBool, "true", Bool(true), false},
		{"bad bool", TypeBool, "maybe", Value{}, true},
		{"color", TypeColor, "#ff0000", ColorValue(tmxcolor.RGB(1, 0, 0)), false},
		{"bad color", TypeColor, "#12", Value{}, true},
		{"file", TypeFile, "a/b.png", File("a/b.png"), false},
		{"unknown type", Type("vector"), "1", Value{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.typ, tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidPropertyValue, errorsx.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestValue_Raw(t *testing.T) {
	assert.Equal(t, "3", Int(3).Raw())
	assert.Equal(t, "2.0", Float(2).Raw())
	assert.Equal(t, "0.5", Float(0.5).Raw())
	assert.Equal(t, "false", Bool(false).Raw())
	assert.Equal(t, "#00ff00", ColorValue(tmxcolor.RGB(0, 1, 0)).Raw())
	assert.Equal(t, TypeString, Value{}.Type())
}

func TestStore(t *testing.T) {
	s := NewStore()
	s.Set("b", String("1"))
	s.Set("a", Int(2))
	s.Set("b", String("3"))

	assert.Equal(t, []string{"b", "a"}, s.Names())
	v, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", v.AsString())

	err := s.SetRaw("c", TypeInt, "nope")
	require.Error(t, err)
	assert.Equal(t, ErrInvalidPropertyValue, errorsx.Cause(err))
	assert.Equal(t, 2, s.Len())

	clone := s.Clone()
	assert.True(t, s.Equal(clone))

	assert.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"))
	assert.Equal(t, []string{"a"}, s.Names())
	assert.False(t, s.Equal(clone))
	assert.Equal(t, 2, clone.Len())
}

func TestStore_Nil(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("x")
	assert.False(t, ok)
	assert.Nil(t, s.Names())
}
