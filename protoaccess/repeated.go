package protoaccess

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protovalue"
)

// RepeatedView is a read-only view of a repeated field's list. It looks the
// field up in the message on every call and so reflects later changes to
// the field, including elements added after the view was taken while the
// field was still absent. It must not be used after the caller's hold on
// the message ends.
type RepeatedView struct {
	fd      protoreflect.FieldDescriptor
	msg     protoreflect.Message
	mutable bool
}

// list returns the field's current storage.
func (v RepeatedView) list() protoreflect.List {
	if v.mutable {
		return v.msg.Mutable(v.fd).List()
	}
	return v.msg.Get(v.fd).List()
}

var _ protovalue.List = RepeatedView{}

// Field returns the repeated field that this view reads.
func (v RepeatedView) Field() protoreflect.FieldDescriptor {
	return v.fd
}

func (v RepeatedView) Len() int {
	return v.list().Len()
}

// Get returns the element at index i. It panics if i is out of range.
func (v RepeatedView) Get(i int) protovalue.Value {
	val, err := v.TryGet(i)
	if err != nil {
		panic(err)
	}
	return val
}

// TryGet is like Get, except it returns an error instead of panicking.
func (v RepeatedView) TryGet(i int) (protovalue.Value, error) {
	if err := v.checkIndex(i); err != nil {
		return protovalue.Value{}, err
	}
	return protovalue.FromReflect(v.fd, v.list().Get(i)), nil
}

func (v RepeatedView) checkIndex(i int) error {
	if n := v.list().Len(); i < 0 || i >= n {
		return fmt.Errorf("%w: index %d of %s with length %d", ErrIndexOutOfRange, i, v.fd.FullName(), n)
	}
	return nil
}

// Range calls f for each element in order, stopping early if f returns false.
func (v RepeatedView) Range(f func(i int, val protovalue.Value) bool) {
	list := v.list()
	for i, length := 0, list.Len(); i < length; i++ {
		if !f(i, protovalue.FromReflect(v.fd, list.Get(i))) {
			return
		}
	}
}

// Values copies the elements out into a slice.
func (v RepeatedView) Values() protovalue.Values {
	list := v.list()
	vals := make(protovalue.Values, list.Len())
	for i := range vals {
		vals[i] = protovalue.FromReflect(v.fd, list.Get(i))
	}
	return vals
}

// Equal reports whether the view holds the same elements as other, in the
// same order.
func (v RepeatedView) Equal(other protovalue.List) bool {
	return protovalue.ListsEqual(v, other)
}

func (v RepeatedView) String() string {
	return protovalue.FormatList(v)
}

// MutRepeatedView is a mutable view of a repeated field's list. Changes made
// through it are made directly to the message.
type MutRepeatedView struct {
	RepeatedView
}

// Push appends val to the list. It panics if val does not match the field's
// element type.
func (v MutRepeatedView) Push(val protovalue.Value) {
	if err := v.TryPush(val); err != nil {
		panic(err)
	}
}

// TryPush is like Push, except it returns an error instead of panicking. On
// error, the list is not modified.
func (v MutRepeatedView) TryPush(val protovalue.Value) error {
	pv, err := v.element(val)
	if err != nil {
		return err
	}
	v.list().Append(pv)
	return nil
}

// Set replaces the element at index i. It panics if i is out of range or val
// does not match the field's element type.
func (v MutRepeatedView) Set(i int, val protovalue.Value) {
	if err := v.TrySet(i, val); err != nil {
		panic(err)
	}
}

// TrySet is like Set, except it returns an error instead of panicking.
func (v MutRepeatedView) TrySet(i int, val protovalue.Value) error {
	if err := v.checkIndex(i); err != nil {
		return err
	}
	pv, err := v.element(val)
	if err != nil {
		return err
	}
	v.list().Set(i, pv)
	return nil
}

func (v MutRepeatedView) element(val protovalue.Value) (protoreflect.Value, error) {
	if err := checkValue(v.fd, val); err != nil {
		return protoreflect.Value{}, err
	}
	return storageValue(v.fd, val, v.list().NewElement)
}

// Truncate shortens the list to n elements. It panics if n is negative or
// greater than the list's length.
func (v MutRepeatedView) Truncate(n int) {
	list := v.list()
	if n < 0 || n > list.Len() {
		panic(fmt.Errorf("%w: cannot truncate %s with length %d to %d", ErrIndexOutOfRange, v.fd.FullName(), list.Len(), n))
	}
	list.Truncate(n)
}

// MutMessage returns the live message at index i of a repeated message field.
func (v MutRepeatedView) MutMessage(i int) Message {
	if err := checkMessageKind(v.fd); err != nil {
		panic(err)
	}
	if err := v.checkIndex(i); err != nil {
		panic(err)
	}
	return v.list().Get(i).Message().Interface()
}

// PushMessage appends a new empty message to a repeated message field and
// returns it.
func (v MutRepeatedView) PushMessage() Message {
	if err := checkMessageKind(v.fd); err != nil {
		panic(err)
	}
	return v.list().AppendMutable().Message().Interface()
}
