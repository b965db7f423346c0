// Package position provides pure reordering helpers for ordered sequences.
// Every helper returns a new slice and leaves its input untouched.
package position

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrOutOfRange reports an index outside the sequence bounds. Callers are
// expected to resolve indices before calling, so this signals a programming
// error rather than bad user input.
var ErrOutOfRange = goerr.New("index out of range")

// Move removes the element at from and reinserts it so that it ends up at
// index to. Every other element keeps its relative order.
func Move[T any](s []T, from, to int) ([]T, error) {
	if err := checkIndex(len(s), from, "from"); err != nil {
		return nil, err
	}
	if err := checkIndex(len(s), to, "to"); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(s))
	item := s[from]
	for idx, v := range s {
		if idx == from {
			continue
		}
		if len(out) == to {
			out = append(out, item)
		}
		out = append(out, v)
	}
	if len(out) == to {
		out = append(out, item)
	}
	return out, nil
}

// InsertAt returns a copy of s with item placed at index. index may equal
// len(s), which appends.
func InsertAt[T any](s []T, index int, item T) ([]T, error) {
	if index < 0 || index > len(s) {
		return nil, goerr.Wrap(ErrOutOfRange, "cannot insert",
			goerr.V("index", index), goerr.V("length", len(s)))
	}
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:index]...)
	out = append(out, item)
	out = append(out, s[index:]...)
	return out, nil
}

// Swap returns a copy of s with the elements at i and j exchanged.
func Swap[T any](s []T, i, j int) ([]T, error) {
	if err := checkIndex(len(s), i, "i"); err != nil {
		return nil, err
	}
	if err := checkIndex(len(s), j, "j"); err != nil {
		return nil, err
	}
	out := append([]T(nil), s...)
	out[i], out[j] = out[j], out[i]
	return out, nil
}

// RemoveAt returns a copy of s without the element at index.
func RemoveAt[T any](s []T, index int) ([]T, error) {
	if err := checkIndex(len(s), index, "index"); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:index]...)
	out = append(out, s[index+1:]...)
	return out, nil
}

func checkIndex(length, index int, name string) error {
	if index < 0 || index >= length {
		return goerr.Wrap(ErrOutOfRange, "index outside sequence",
			goerr.V(name, index), goerr.V("length", length))
	}
	return nil
}
