package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

var errBadPath = errors.New("invalid field path")

// pathSegment is one step of a field path: a field name, optionally followed
// by a subscript. For repeated fields, the subscript is an index, or empty to
// mean a new element (appended). For map fields, it is a key.
type pathSegment struct {
	field     string
	subscript string
	indexed   bool
}

func (s pathSegment) String() string {
	if !s.indexed {
		return s.field
	}
	return s.field + "[" + s.subscript + "]"
}

// parsePath parses a path such as `sub_m.n`, `subs[1].label`,
// `sub_map["k"]` or `subs[]`.
func parsePath(path string) ([]pathSegment, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", errBadPath)
	}
	var segs []pathSegment
	rest := path
	for {
		end := strings.IndexAny(rest, ".[")
		name := rest
		if end >= 0 {
			name = rest[:end]
		}
		if name == "" {
			return nil, fmt.Errorf("%w: %q: missing field name", errBadPath, path)
		}
		seg := pathSegment{field: name}
		if end < 0 {
			return append(segs, seg), nil
		}
		rest = rest[end:]
		if rest[0] == '[' {
			sub, n, err := scanSubscript(rest)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", errBadPath, path, err)
			}
			seg.subscript, seg.indexed = sub, true
			rest = rest[n:]
		}
		segs = append(segs, seg)
		if rest == "" {
			return segs, nil
		}
		if rest[0] != '.' {
			return nil, fmt.Errorf("%w: %q: unexpected %q after %s", errBadPath, path, rest[0], seg)
		}
		rest = rest[1:]
	}
}

// scanSubscript reads a bracketed subscript at the start of s and returns its
// contents and the number of bytes consumed. Quoted keys may contain brackets
// and dots.
func scanSubscript(s string) (string, int, error) {
	if len(s) > 1 && s[1] == '"' {
		quoted, err := strconv.QuotedPrefix(s[1:])
		if err != nil {
			return "", 0, fmt.Errorf("bad quoted key: %w", err)
		}
		n := 1 + len(quoted)
		if n >= len(s) || s[n] != ']' {
			return "", 0, errors.New("missing ']'")
		}
		return quoted, n + 1, nil
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", 0, errors.New("missing ']'")
	}
	return strings.TrimSpace(s[1:end]), end + 1, nil
}

// cutAssignment splits arg around the first '=' outside of a subscript, so
// that map keys may contain '='.
func cutAssignment(arg string) (path, value string, ok bool) {
	for i := 0; i < len(arg); {
		switch arg[i] {
		case '=':
			return arg[:i], arg[i+1:], true
		case '[':
			_, n, err := scanSubscript(arg[i:])
			if err != nil {
				// parsePath reports the malformed subscript
				return strings.Cut(arg, "=")
			}
			i += n
		default:
			i++
		}
	}
	return arg, "", false
}

func findField(desc *protoaccess.MessageDescriptor, name string) (*protoaccess.FieldDescriptor, error) {
	fd := desc.FindFieldByName(name)
	if fd == nil {
		return nil, fmt.Errorf("%w: %s has no field %q", protoaccess.ErrUnknownField, desc.FullName(), name)
	}
	return fd, nil
}

func parseIndex(fd *protoaccess.FieldDescriptor, sub string) (int, error) {
	i, err := strconv.Atoi(sub)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: index %q is not a number", errBadPath, fd.Name(), sub)
	}
	return i, nil
}

func parseKey(fd *protoaccess.FieldDescriptor, sub string) (protovalue.Value, error) {
	return parseScalar(fd.MapKey(), sub)
}

// resolve returns what path refers to in m: a protovalue.Value, or, for a
// repeated or map field without a subscript, a RepeatedView or MapView.
// Absent singular fields resolve to their defaults.
func resolve(m protoaccess.Message, path []pathSegment) (fmt.Stringer, error) {
	for i, seg := range path {
		last := i == len(path)-1
		fd, err := findField(protoaccess.DescriptorOf(m), seg.field)
		if err != nil {
			return nil, err
		}
		var v protovalue.Value
		switch fd.Cardinality() {
		case protoaccess.Repeated:
			if !seg.indexed {
				if !last {
					return nil, fmt.Errorf("%w: %s is repeated and needs an index", errBadPath, fd.Name())
				}
				return fd.GetRepeated(m), nil
			}
			idx, err := parseIndex(fd, seg.subscript)
			if err != nil {
				return nil, err
			}
			if v, err = fd.GetRepeated(m).TryGet(idx); err != nil {
				return nil, err
			}
		case protoaccess.Map:
			if !seg.indexed {
				if !last {
					return nil, fmt.Errorf("%w: %s is a map and needs a key", errBadPath, fd.Name())
				}
				return fd.GetMap(m), nil
			}
			key, err := parseKey(fd, seg.subscript)
			if err != nil {
				return nil, err
			}
			var ok bool
			if v, ok, err = fd.GetMap(m).TryGet(key); err != nil {
				return nil, err
			} else if !ok {
				return nil, fmt.Errorf("%s: no entry for key %v", seg, key)
			}
		default:
			if seg.indexed {
				return nil, fmt.Errorf("%w: %s is not repeated or a map", errBadPath, fd.Name())
			}
			v = fd.GetSingularFieldOrDefault(m)
		}
		if last {
			return v, nil
		}
		if v.Kind() != protovalue.MessageKind {
			return nil, fmt.Errorf("%w: %s is %v, not a message", errBadPath, seg, v.Kind())
		}
		m = v.Message()
	}
	panic("unreachable")
}

// assign parses text and stores it at path in m, creating intermediate
// messages as needed.
func assign(m protoaccess.Message, path []pathSegment, text string) error {
	for _, seg := range path[:len(path)-1] {
		fd, err := findField(protoaccess.DescriptorOf(m), seg.field)
		if err != nil {
			return err
		}
		if fd.MessageDescriptor() == nil {
			return fmt.Errorf("%w: %s is %v, not a message", errBadPath, seg, fd.DeclaredType())
		}
		switch fd.Cardinality() {
		case protoaccess.Repeated:
			if !seg.indexed {
				return fmt.Errorf("%w: %s is repeated and needs an index", errBadPath, fd.Name())
			}
			mut := fd.MutRepeated(m)
			if seg.subscript == "" {
				m = mut.PushMessage()
				continue
			}
			idx, err := parseIndex(fd, seg.subscript)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= fd.LenField(m) {
				return fmt.Errorf("%w: %s", protoaccess.ErrIndexOutOfRange, seg)
			}
			m = mut.MutMessage(idx)
		case protoaccess.Map:
			if !seg.indexed {
				return fmt.Errorf("%w: %s is a map and needs a key", errBadPath, fd.Name())
			}
			key, err := parseKey(fd, seg.subscript)
			if err != nil {
				return err
			}
			m = fd.MutMap(m).MutMessage(key)
		default:
			if seg.indexed {
				return fmt.Errorf("%w: %s is not repeated or a map", errBadPath, fd.Name())
			}
			m = fd.MutMessage(m)
		}
	}

	seg := path[len(path)-1]
	fd, err := findField(protoaccess.DescriptorOf(m), seg.field)
	if err != nil {
		return err
	}
	elem := fd.Unwrap()
	if fd.Cardinality() == protoaccess.Map {
		elem = fd.MapValue()
	}
	v, err := parseValue(elem, fd.MessageDescriptor(), text)
	if err != nil {
		return err
	}
	switch fd.Cardinality() {
	case protoaccess.Repeated:
		if !seg.indexed {
			return fmt.Errorf("%w: %s is repeated; use %s[] to append", errBadPath, fd.Name(), fd.Name())
		}
		if seg.subscript == "" {
			return fd.MutRepeated(m).TryPush(v)
		}
		idx, err := parseIndex(fd, seg.subscript)
		if err != nil {
			return err
		}
		return fd.MutRepeated(m).TrySet(idx, v)
	case protoaccess.Map:
		if !seg.indexed {
			return fmt.Errorf("%w: %s is a map and needs a key", errBadPath, fd.Name())
		}
		key, err := parseKey(fd, seg.subscript)
		if err != nil {
			return err
		}
		return fd.MutMap(m).TryInsert(key, v)
	default:
		if seg.indexed {
			return fmt.Errorf("%w: %s is not repeated or a map", errBadPath, fd.Name())
		}
		return fd.TrySetSingularField(m, v)
	}
}
