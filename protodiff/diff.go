// Package protodiff computes field-by-field differences between two messages
// of the same type, using field accessors so that generated and dynamic
// messages can be compared with each other.
package protodiff

import (
	"fmt"
	"strings"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protomessage"
	"github.com/jhump/protoaccess/protovalue"
)

// Kind describes how a value differs between the two messages.
type Kind int

const (
	// Added means the value is present only in the second message.
	Added Kind = iota + 1
	// Removed means the value is present only in the first message.
	Removed
	// Changed means the value is present in both messages but differs.
	Changed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Difference is one value that differs between two messages.
type Difference struct {
	// Path locates the value, such as `sub_m.n`, `subs[2]` or
	// `sub_map["k"].label`.
	Path string
	Kind Kind
	// Left is the value in the first message. It is invalid for Added.
	Left protovalue.Value
	// Right is the value in the second message. It is invalid for Removed.
	Right protovalue.Value
}

func (d Difference) String() string {
	switch d.Kind {
	case Added:
		return fmt.Sprintf("+ %s: %v", d.Path, d.Right)
	case Removed:
		return fmt.Sprintf("- %s: %v", d.Path, d.Left)
	default:
		return fmt.Sprintf("~ %s: %v -> %v", d.Path, d.Left, d.Right)
	}
}

// Format renders differences one per line.
func Format(diffs []Difference) string {
	var sb strings.Builder
	for _, d := range diffs {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Diff returns the differences between a and b, in field declaration order
// (and index or key order within repeated and map fields). Nested messages
// present on both sides are compared field by field. The result is empty if
// and only if the two messages are equal.
//
// Diff panics with an error wrapping protoaccess.ErrWrongMessage if a and b
// are not of the same message type.
func Diff(a, b protoaccess.Message) []Difference {
	da, db := protoaccess.DescriptorOf(a), protoaccess.DescriptorOf(b)
	if da.FullName() != db.FullName() {
		panic(fmt.Errorf("%w: cannot compare %s with %s", protoaccess.ErrWrongMessage, da.FullName(), db.FullName()))
	}
	d := differ{root: da}
	d.messages(a, b, make([]any, 0, 8))
	return d.diffs
}

type differ struct {
	root  *protoaccess.MessageDescriptor
	diffs []Difference
}

func (d *differ) add(path []any, kind Kind, left, right protovalue.Value) {
	d.diffs = append(d.diffs, Difference{
		Path:  protomessage.FormatPath(d.root, path),
		Kind:  kind,
		Left:  left,
		Right: right,
	})
}

func (d *differ) messages(a, b protoaccess.Message, path []any) {
	fieldsA := protoaccess.DescriptorOf(a).Fields()
	descB := protoaccess.DescriptorOf(b)
	for _, fa := range fieldsA {
		// a and b may be of different concrete types, each with its own
		// descriptor
		fb := descB.FieldByNumber(fa.Number())
		path := append(path, fa.Number())
		switch fa.Cardinality() {
		case protoaccess.Repeated:
			d.lists(fa.GetRepeated(a), fb.GetRepeated(b), path)
		case protoaccess.Map:
			d.maps(fa.GetMap(a), fb.GetMap(b), path)
		default:
			hasA, hasB := fa.HasField(a), fb.HasField(b)
			switch {
			case hasA && hasB:
				d.values(fa.GetSingularFieldOrDefault(a), fb.GetSingularFieldOrDefault(b), path)
			case hasA:
				d.add(path, Removed, fa.GetSingularFieldOrDefault(a), protovalue.Value{})
			case hasB:
				d.add(path, Added, protovalue.Value{}, fb.GetSingularFieldOrDefault(b))
			}
		}
	}
}

func (d *differ) values(a, b protovalue.Value, path []any) {
	if a.Kind() == protovalue.MessageKind && b.Kind() == protovalue.MessageKind {
		d.messages(a.Message(), b.Message(), path)
		return
	}
	if !protovalue.Equal(a, b) {
		d.add(path, Changed, a, b)
	}
}

func (d *differ) lists(a, b protoaccess.RepeatedView, path []any) {
	for i := 0; i < a.Len() || i < b.Len(); i++ {
		path := append(path, i)
		switch {
		case i >= b.Len():
			d.add(path, Removed, a.Get(i), protovalue.Value{})
		case i >= a.Len():
			d.add(path, Added, protovalue.Value{}, b.Get(i))
		default:
			d.values(a.Get(i), b.Get(i), path)
		}
	}
}

func (d *differ) maps(a, b protoaccess.MapView, path []any) {
	entriesA, entriesB := a.Entries(), b.Entries()
	// both are sorted by key, so merge them
	i, j := 0, 0
	for i < len(entriesA) || j < len(entriesB) {
		var cmp int
		switch {
		case i >= len(entriesA):
			cmp = 1
		case j >= len(entriesB):
			cmp = -1
		default:
			cmp = protovalue.Compare(entriesA[i].Key, entriesB[j].Key)
		}
		switch {
		case cmp < 0:
			d.add(append(path, entriesA[i].Key), Removed, entriesA[i].Value, protovalue.Value{})
			i++
		case cmp > 0:
			d.add(append(path, entriesB[j].Key), Added, protovalue.Value{}, entriesB[j].Value)
			j++
		default:
			d.values(entriesA[i].Value, entriesB[j].Value, append(path, entriesA[i].Key))
			i++
			j++
		}
	}
}
