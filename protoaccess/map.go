package protoaccess

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protovalue"
)

// MapView is a read-only view of a map field. It looks the field up in the
// message on every call and so reflects later changes to the field, even
// if the field was absent when the view was taken. It must not be used
// after the caller's hold on the message ends.
type MapView struct {
	fd      protoreflect.FieldDescriptor
	msg     protoreflect.Message
	mutable bool
}

// storage returns the field's current map.
func (v MapView) storage() protoreflect.Map {
	if v.mutable {
		return v.msg.Mutable(v.fd).Map()
	}
	return v.msg.Get(v.fd).Map()
}

// Field returns the map field that this view reads.
func (v MapView) Field() protoreflect.FieldDescriptor {
	return v.fd
}

func (v MapView) Len() int {
	return v.storage().Len()
}

func (v MapView) IsEmpty() bool {
	return v.storage().Len() == 0
}

// Get returns the value for the given key and whether the key is present. It
// panics if key does not match the map's key type.
func (v MapView) Get(key protovalue.Value) (protovalue.Value, bool) {
	val, ok, err := v.TryGet(key)
	if err != nil {
		panic(err)
	}
	return val, ok
}

// TryGet is like Get, except it returns an error instead of panicking.
func (v MapView) TryGet(key protovalue.Value) (protovalue.Value, bool, error) {
	if err := checkValue(v.fd.MapKey(), key); err != nil {
		return protovalue.Value{}, false, err
	}
	pv := v.storage().Get(key.MapKey())
	if !pv.IsValid() {
		return protovalue.Value{}, false, nil
	}
	return protovalue.FromReflect(v.fd.MapValue(), pv), true, nil
}

// Has reports whether the given key is present. It panics if key does not
// match the map's key type.
func (v MapView) Has(key protovalue.Value) bool {
	if err := checkValue(v.fd.MapKey(), key); err != nil {
		panic(err)
	}
	return v.storage().Has(key.MapKey())
}

// Entries returns all entries of the map, sorted by key.
func (v MapView) Entries() []protovalue.Entry {
	m := v.storage()
	entries := make([]protovalue.Entry, 0, m.Len())
	keyFd, valFd := v.fd.MapKey(), v.fd.MapValue()
	m.Range(func(k protoreflect.MapKey, val protoreflect.Value) bool {
		entries = append(entries, protovalue.Entry{
			Key:   protovalue.FromMapKey(keyFd, k),
			Value: protovalue.FromReflect(valFd, val),
		})
		return true
	})
	protovalue.SortEntries(entries)
	return entries
}

// Range calls f for each entry in ascending key order, stopping early if f
// returns false.
func (v MapView) Range(f func(key, val protovalue.Value) bool) {
	for _, e := range v.Entries() {
		if !f(e.Key, e.Value) {
			return
		}
	}
}

// EqualEntries reports whether the map holds exactly the given entries. The
// order of entries does not matter.
func (v MapView) EqualEntries(entries []protovalue.Entry) bool {
	return protovalue.EntriesEqual(v.Entries(), entries)
}

func (v MapView) String() string {
	return protovalue.FormatEntries(v.Entries())
}

// MutMapView is a mutable view of a map field. Changes made through it are
// made directly to the message.
type MutMapView struct {
	MapView
}

// Insert stores val under key, replacing any value already stored there. It
// panics if key or val do not match the map's types.
func (v MutMapView) Insert(key, val protovalue.Value) {
	if err := v.TryInsert(key, val); err != nil {
		panic(err)
	}
}

// TryInsert is like Insert, except it returns an error instead of panicking.
// On error, the map is not modified.
func (v MutMapView) TryInsert(key, val protovalue.Value) error {
	if err := checkValue(v.fd.MapKey(), key); err != nil {
		return err
	}
	valFd := v.fd.MapValue()
	if err := checkValue(valFd, val); err != nil {
		return err
	}
	pv, err := storageValue(valFd, val, v.storage().NewValue)
	if err != nil {
		return err
	}
	v.storage().Set(key.MapKey(), pv)
	return nil
}

// Delete removes key from the map and reports whether it was present. It
// panics if key does not match the map's key type.
func (v MutMapView) Delete(key protovalue.Value) bool {
	if err := checkValue(v.fd.MapKey(), key); err != nil {
		panic(err)
	}
	mk := key.MapKey()
	if !v.storage().Has(mk) {
		return false
	}
	v.storage().Clear(mk)
	return true
}

// Clear removes all entries.
func (v MutMapView) Clear() {
	m := v.storage()
	var keys []protoreflect.MapKey
	m.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
		keys = append(keys, k)
		return true
	})
	for _, k := range keys {
		m.Clear(k)
	}
}

// MutMessage returns the live message stored under key in a map with message
// values, first inserting an empty one if the key is absent.
func (v MutMapView) MutMessage(key protovalue.Value) Message {
	if err := checkMessageKind(v.fd.MapValue()); err != nil {
		panic(err)
	}
	if err := checkValue(v.fd.MapKey(), key); err != nil {
		panic(err)
	}
	return v.storage().Mutable(key.MapKey()).Message().Interface()
}
