package protovalue

import (
	"slices"
	"strings"
)

// List is a read-only, ordered sequence of values. Both Values and the
// repeated field views in package protoaccess implement it, so either can be
// compared against the other with ListsEqual.
type List interface {
	Len() int
	Get(i int) Value
}

// Values is a plain slice of values that implements List.
type Values []Value

var _ List = Values(nil)

func (vs Values) Len() int {
	return len(vs)
}

func (vs Values) Get(i int) Value {
	return vs[i]
}

// Equal reports whether vs and other hold equal values in the same order.
func (vs Values) Equal(other List) bool {
	return ListsEqual(vs, other)
}

func (vs Values) String() string {
	return FormatList(vs)
}

// ListsEqual reports whether a and b have the same length and hold equal
// values at every index. It is symmetric: ListsEqual(a, b) == ListsEqual(b, a).
func ListsEqual(a, b List) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, length := 0, a.Len(); i < length; i++ {
		if !Equal(a.Get(i), b.Get(i)) {
			return false
		}
	}
	return true
}

// FormatList renders l like "[10, 20, 30]".
func FormatList(l List) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, length := 0, l.Len(); i < length; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(l.Get(i).String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Entry is one key/value pair of a map field.
type Entry struct {
	Key   Value
	Value Value
}

// SortEntries sorts entries by key, per Compare.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return Compare(a.Key, b.Key)
	})
}

// EntriesEqual reports whether a and b contain the same key/value pairs,
// ignoring order. Keys within each slice are expected to be unique, as they
// are in a map field.
func EntriesEqual(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	SortEntries(as)
	SortEntries(bs)
	for i := range as {
		if !Equal(as[i].Key, bs[i].Key) || !Equal(as[i].Value, bs[i].Value) {
			return false
		}
	}
	return true
}

// FormatEntries renders entries like "{1: "a", 2: "b"}", in key order.
func FormatEntries(entries []Entry) string {
	sorted := slices.Clone(entries)
	SortEntries(sorted)
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range sorted {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Key.String())
		sb.WriteString(": ")
		sb.WriteString(e.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
