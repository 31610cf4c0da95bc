package namedlist

import (
	"errors"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	name string
}

func (i *item) GetName() string {
	return i.name
}

func names(l *List[*item]) []string {
	var out []string
	for _, i := range l.Items() {
		out = append(out, i.name)
	}
	return out
}

func newList(t *testing.T, hooks Hooks[*item], ns ...string) *List[*item] {
	l := New[*item](hooks)
	for _, n := range ns {
		require.NoError(t, l.Append(&item{n}))
	}
	return l
}

func TestList_Get(t *testing.T) {
	first := &item{"X"}
	l := New[*item](nil)
	require.NoError(t, l.Append(&item{"a"}, first, &item{"X"}))

	got, err := l.Get(Name("X"))
	require.NoError(t, err)
	assert.True(t, got == first)

	got, err = l.Get(Index(-1))
	require.NoError(t, err)
	assert.Equal(t, "X", got.name)
	assert.False(t, got == first)

	_, err = l.Get(Index(3))
	assert.Equal(t, ErrIndexOutOfRange, errorsx.Cause(err))

	_, err = l.Get(Name("nope"))
	assert.Equal(t, ErrNameNotFound, errorsx.Cause(err))

	assert.True(t, l.Contains(first))
	assert.False(t, l.Contains(&item{"X"}))
	assert.True(t, l.ContainsName("a"))
}

func TestList_Insert(t *testing.T) {
	tests := []struct {
		name string
		at   int
		want []string
	}{
		{"front", 0, []string{"n", "a", "b", "c"}},
		{"middle", 1, []string{"a", "n", "b", "c"}},
		{"end", 3, []string{"a", "b", "c", "n"}},
		{"past end", 10, []string{"a", "b", "c", "n"}},
		{"negative", -1, []string{"a", "b", "n", "c"}},
		{"very negative", -10, []string{"n", "a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newList(t, nil, "a", "b", "c")
			require.NoError(t, l.Insert(tt.at, &item{"n"}))
			assert.Equal(t, tt.want, names(l))
		})
	}
}

func TestList_InsertAfterAndBefore(t *testing.T) {
	l := newList(t, nil, "a", "b", "c")
	require.NoError(t, l.InsertAfter(Name("b"), &item{"x"}))
	require.NoError(t, l.InsertBefore(Name("a"), &item{"y"}))
	require.NoError(t, l.InsertAfter(Index(-1), &item{"z"}))
	assert.Equal(t, []string{"y", "a", "b", "x", "c", "z"}, names(l))

	err := l.InsertAfter(Name("missing"), &item{"q"})
	assert.Equal(t, ErrNameNotFound, errorsx.Cause(err))
	assert.Equal(t, 6, l.Len())
}

func TestList_MoveAndShift(t *testing.T) {
	l := newList(t, nil, "a", "b", "c", "d")

	require.NoError(t, l.Move(Name("d"), 0))
	assert.Equal(t, []string{"d", "a", "b", "c"}, names(l))

	require.NoError(t, l.Move(Index(0), 10))
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(l))

	require.NoError(t, l.Shift(Name("c"), -1))
	assert.Equal(t, []string{"a", "c", "b", "d"}, names(l))

	require.NoError(t, l.Shift(Name("a"), -1))
	assert.Equal(t, []string{"a", "c", "b", "d"}, names(l))

	require.NoError(t, l.Shift(Name("a"), 2))
	assert.Equal(t, []string{"c", "b", "a", "d"}, names(l))

	require.NoError(t, l.Shift(Name("c"), 100))
	assert.Equal(t, []string{"b", "a", "d", "c"}, names(l))
}

func TestList_RemoveSetClear(t *testing.T) {
	l := newList(t, nil, "a", "b", "c")

	removed, err := l.Remove(Name("b"))
	require.NoError(t, err)
	assert.Equal(t, "b", removed.name)
	assert.Equal(t, []string{"a", "c"}, names(l))

	require.NoError(t, l.Set(Index(0), &item{"z"}))
	assert.Equal(t, []string{"z", "c"}, names(l))

	_, err = l.Remove(Index(5))
	assert.Equal(t, ErrIndexOutOfRange, errorsx.Cause(err))

	require.NoError(t, l.Clear())
	assert.Equal(t, 0, l.Len())
}

var errRejected = errors.New("rejected")

type countingHooks struct {
	BaseHooks[*item]
	will, did  int
	rejectName string
	failDid    bool
}

func (h *countingHooks) Stored(i *item) (*item, errorsx.Error) {
	if i.name == h.rejectName {
		return nil, errorsx.Wrap(errRejected, "name", i.name)
	}
	return i, nil
}

func (h *countingHooks) WillMutate(current []*item) errorsx.Error {
	h.will++
	return nil
}

func (h *countingHooks) DidMutate(previous, current []*item) errorsx.Error {
	h.did++
	if h.failDid {
		return errorsx.Wrap(errRejected)
	}
	return nil
}

func TestList_HooksRunOncePerEdit(t *testing.T) {
	hooks := &countingHooks{}
	l := newList(t, hooks, "a", "b", "c")
	hooks.will, hooks.did = 0, 0

	require.NoError(t, l.Move(Name("c"), 0))
	assert.Equal(t, 1, hooks.will)
	assert.Equal(t, 1, hooks.did)

	require.NoError(t, l.Modify(func(current []*item) ([]*item, errorsx.Error) {
		current = append(current, &item{"d"})
		return current[1:], nil
	}))
	assert.Equal(t, 2, hooks.will)
	assert.Equal(t, 2, hooks.did)
	assert.Equal(t, []string{"a", "b", "d"}, names(l))
}

func TestList_RollbackOnHookError(t *testing.T) {
	hooks := &countingHooks{rejectName: "bad"}
	l := newList(t, hooks, "a", "b")

	err := l.Append(&item{"bad"})
	assert.Equal(t, errRejected, errorsx.Cause(err))
	assert.Equal(t, []string{"a", "b"}, names(l))

	hooks.failDid = true
	_, err = l.Remove(Index(0))
	assert.Equal(t, errRejected, errorsx.Cause(err))
	assert.Equal(t, []string{"a", "b"}, names(l))
}

func TestList_NestedModifyRejected(t *testing.T) {
	l := newList(t, nil, "a")
	err := l.Modify(func(current []*item) ([]*item, errorsx.Error) {
		return nil, l.Append(&item{"b"})
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, names(l))
}
