// Package namedlist provides an ordered list whose elements can also be looked up by name.
//
// Name lookups return the first element with a matching name; names are not required to be unique.
// Every structural change goes through one mutation path, so hooks observe each logical edit
// exactly once and a failing hook leaves the list as it was.
package namedlist

import (
	"errors"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
)

var (
	ErrIndexOutOfRange = errors.New("IndexOutOfRange")
	ErrNameNotFound    = errors.New("NameNotFound")
)

type Named interface {
	GetName() string
}

// Key addresses an element either by position or by name.
type Key struct {
	index  int
	name   string
	byName bool
}

// Index addresses an element by position. Negative positions count from the end.
func Index(i int) Key {
	return Key{index: i}
}

func Name(name string) Key {
	return Key{name: name, byName: true}
}

func (k Key) String() string {
	if k.byName {
		return k.name
	}
	return strconv.Itoa(k.index)
}

// Hooks customises a List. Stored is called for every element entering the list and may reject it.
// WillMutate runs before an edit is applied and DidMutate after; an error from either aborts the edit.
type Hooks[T Named] interface {
	Stored(item T) (T, errorsx.Error)
	Retrieved(item T) T
	WillMutate(current []T) errorsx.Error
	DidMutate(previous, current []T) errorsx.Error
}

// BaseHooks is a no-op implementation of Hooks, meant to be embedded.
type BaseHooks[T Named] struct{}

func (BaseHooks[T]) Stored(item T) (T, errorsx.Error)              { return item, nil }
func (BaseHooks[T]) Retrieved(item T) T                            { return item }
func (BaseHooks[T]) WillMutate(current []T) errorsx.Error          { return nil }
func (BaseHooks[T]) DidMutate(previous, current []T) errorsx.Error { return nil }

type List[T Named] struct {
	items    []T
	hooks    Hooks[T]
	mutating bool
}

// New creates a list. hooks may be nil.
func New[T Named](hooks Hooks[T]) *List[T] {
	if hooks == nil {
		hooks = BaseHooks[T]{}
	}
	return &List[T]{hooks: hooks}
}

func (l *List[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the elements, in order.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	for i, item := range l.items {
		out[i] = l.hooks.Retrieved(item)
	}
	return out
}

func (l *List[T]) Get(key Key) (T, errorsx.Error) {
	var zero T
	i, err := l.resolve(l.items, key)
	if err != nil {
		return zero, err
	}
	return l.hooks.Retrieved(l.items[i]), nil
}

// Lookup is Get without the error.
func (l *List[T]) Lookup(key Key) (T, bool) {
	item, err := l.Get(key)
	return item, err == nil
}

// IndexOf returns the position of the element addressed by key.
func (l *List[T]) IndexOf(key Key) (int, errorsx.Error) {
	return l.resolve(l.items, key)
}

// Position returns the index of item in the list, or -1.
func (l *List[T]) Position(item T) int {
	for i, existing := range l.items {
		if same(l.hooks.Retrieved(existing), item) {
			return i
		}
	}
	return -1
}

func (l *List[T]) Contains(item T) bool {
	return l.Position(item) >= 0
}

func (l *List[T]) ContainsName(name string) bool {
	_, err := l.resolve(l.items, Name(name))
	return err == nil
}

func (l *List[T]) Append(items ...T) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		return append(current, items...), nil
	})
}

// Insert places item before the element at position i.
// Negative positions count from the end; out-of-range positions are clamped, so Insert never fails on position alone.
func (l *List[T]) Insert(i int, item T) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		return insertAt(current, clampInsert(i, len(current)), item), nil
	})
}

// InsertBefore places item before the element addressed by key.
func (l *List[T]) InsertBefore(key Key, item T) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		i, err := l.resolve(current, key)
		if err != nil {
			return nil, err
		}
		return insertAt(current, i, item), nil
	})
}

// InsertAfter places item after the element addressed by key.
func (l *List[T]) InsertAfter(key Key, item T) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		i, err := l.resolve(current, key)
		if err != nil {
			return nil, err
		}
		return insertAt(current, i+1, item), nil
	})
}

// Set replaces the element addressed by key.
func (l *List[T]) Set(key Key, item T) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		i, err := l.resolve(current, key)
		if err != nil {
			return nil, err
		}
		current[i] = item
		return current, nil
	})
}

// Remove deletes the element addressed by key and returns it.
func (l *List[T]) Remove(key Key) (T, errorsx.Error) {
	var removed T
	err := l.Modify(func(current []T) ([]T, errorsx.Error) {
		i, err := l.resolve(current, key)
		if err != nil {
			return nil, err
		}
		removed = current[i]
		return append(current[:i], current[i+1:]...), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return l.hooks.Retrieved(removed), nil
}

// Move takes the element addressed by key out of the list and re-inserts it at position to,
// with Insert's clamping rules applied against the shortened list.
func (l *List[T]) Move(key Key, to int) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		i, err := l.resolve(current, key)
		if err != nil {
			return nil, err
		}
		item := current[i]
		current = append(current[:i], current[i+1:]...)
		return insertAt(current, clampInsert(to, len(current)), item), nil
	})
}

// Shift moves the element addressed by key by amount positions. The target is clamped to the list bounds.
func (l *List[T]) Shift(key Key, amount int) errorsx.Error {
	i, err := l.resolve(l.items, key)
	if err != nil {
		return err
	}
	to := i + amount
	if to < 0 {
		to = 0
	}
	return l.Move(Index(i), to)
}

func (l *List[T]) Clear() errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		return nil, nil
	})
}

// Replace swaps the whole content of the list.
func (l *List[T]) Replace(items []T) errorsx.Error {
	return l.Modify(func(current []T) ([]T, errorsx.Error) {
		return append([]T(nil), items...), nil
	})
}

// Modify runs fn against a copy of the list and commits its result as one edit.
// Several changes made inside one fn are seen by the hooks as a single edit.
// fn and the hooks must not modify the list themselves.
func (l *List[T]) Modify(fn func(current []T) ([]T, errorsx.Error)) errorsx.Error {
	if l.mutating {
		return errorsx.Errorf("list is already being modified")
	}

	previous := l.items
	err := l.hooks.WillMutate(append([]T(nil), previous...))
	if err != nil {
		return err
	}

	l.mutating = true
	defer func() {
		l.mutating = false
	}()

	next, err := fn(append([]T(nil), previous...))
	if err != nil {
		l.items = previous
		return err
	}

	stored, err := l.storeAll(next)
	if err != nil {
		l.items = previous
		return err
	}
	l.items = stored

	err = l.hooks.DidMutate(append([]T(nil), previous...), append([]T(nil), stored...))
	if err != nil {
		l.items = previous
		return err
	}
	return nil
}

func (l *List[T]) storeAll(items []T) ([]T, errorsx.Error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		stored, err := l.hooks.Stored(item)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (l *List[T]) resolve(items []T, key Key) (int, errorsx.Error) {
	if key.byName {
		for i, item := range items {
			if l.hooks.Retrieved(item).GetName() == key.name {
				return i, nil
			}
		}
		return 0, errorsx.Wrap(ErrNameNotFound, "name", key.name)
	}

	i := key.index
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return 0, errorsx.Wrap(ErrIndexOutOfRange, "index", key.index, "length", len(items))
	}
	return i, nil
}

func clampInsert(i, length int) int {
	if i < 0 {
		i += length
		if i < 0 {
			return 0
		}
	}
	if i > length {
		return length
	}
	return i
}

func insertAt[T any](items []T, i int, item T) []T {
	items = append(items, item)
	copy(items[i+1:], items[i:])
	items[i] = item
	return items
}

func same[T any](a, b T) bool {
	return any(a) == any(b)
}
