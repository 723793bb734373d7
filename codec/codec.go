// Package codec contains a reader/writer type that assists with encoding
// and decoding protobuf's binary representation.
//
// Messages are encoded and decoded using only their descriptors and field
// accessors (see package protoaccess), so the same code handles generated
// and dynamic messages. The wire primitives come from package protowire.
package codec

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Buffer is a reader and a writer that wraps a slice of bytes and also
// provides API for decoding and encoding the protobuf binary format.
//
// The zero value is an empty buffer, ready to use.
type Buffer struct {
	buf   []byte
	index int
}

// NewBuffer creates a new buffer with the given slice of bytes as the
// buffer's initial contents.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// Reset resets this buffer back to empty. Any subsequent writes/encodes
// to the buffer will allocate a new backing slice of bytes.
func (cb *Buffer) Reset() {
	cb.buf = []byte(nil)
	cb.index = 0
}

// Bytes returns the slice of bytes remaining in the buffer. Note that
// this does not perform a copy: if the contents of the returned slice
// are modified, the modifications will be visible to subsequent reads
// via the buffer.
func (cb *Buffer) Bytes() []byte {
	return cb.buf[cb.index:]
}

// String returns the remaining bytes in the buffer as a string.
func (cb *Buffer) String() string {
	return string(cb.Bytes())
}

// EOF returns true if there are no more bytes remaining to read.
func (cb *Buffer) EOF() bool {
	return cb.index >= len(cb.buf)
}

// Skip attempts to skip the given number of bytes in the input. If
// the input has fewer bytes than the given count, io.ErrUnexpectedEOF
// is returned and the buffer is unchanged.
func (cb *Buffer) Skip(count int) error {
	if count < 0 {
		return fmt.Errorf("proto: bad byte length %d", count)
	}
	newIndex := cb.index + count
	if newIndex < cb.index || newIndex > len(cb.buf) {
		return io.ErrUnexpectedEOF
	}
	cb.index = newIndex
	return nil
}

// Len returns the remaining number of bytes in the buffer.
func (cb *Buffer) Len() int {
	return len(cb.buf) - cb.index
}

// Read implements the io.Reader interface. If there are no bytes
// remaining in the buffer, it will return 0, io.EOF. Otherwise,
// it reads min(len(dest), cb.Len()) bytes from input and copies
// them into dest.
func (cb *Buffer) Read(dest []byte) (int, error) {
	if cb.index == len(cb.buf) {
		return 0, io.EOF
	}
	copied := copy(dest, cb.buf[cb.index:])
	cb.index += copied
	return copied, nil
}

var _ io.Reader = (*Buffer)(nil)

// Write implements the io.Writer interface. It always returns
// len(data), nil.
func (cb *Buffer) Write(data []byte) (int, error) {
	cb.buf = append(cb.buf, data...)
	return len(data), nil
}

var _ io.Writer = (*Buffer)(nil)

// consumed advances past n bytes, where n is the result of one of the
// protowire.Consume functions (negative on error).
func (cb *Buffer) consumed(n int) error {
	if n < 0 {
		return protowire.ParseError(n)
	}
	cb.index += n
	return nil
}

// DecodeVarint reads a varint-encoded integer from the Buffer.
// This is the format for the
// int32, int64, uint32, uint64, bool, and enum
// protocol buffer types.
func (cb *Buffer) DecodeVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(cb.Bytes())
	return v, cb.consumed(n)
}

// DecodeTagAndWireType decodes a field tag and wire type from input.
func (cb *Buffer) DecodeTagAndWireType() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(cb.Bytes())
	return num, typ, cb.consumed(n)
}

// DecodeFixed64 reads a 64-bit integer from the Buffer.
// This is the format for the
// fixed64, sfixed64, and double protocol buffer types.
func (cb *Buffer) DecodeFixed64() (uint64, error) {
	v, n := protowire.ConsumeFixed64(cb.Bytes())
	return v, cb.consumed(n)
}

// DecodeFixed32 reads a 32-bit integer from the Buffer.
// This is the format for the
// fixed32, sfixed32, and float protocol buffer types.
func (cb *Buffer) DecodeFixed32() (uint32, error) {
	v, n := protowire.ConsumeFixed32(cb.Bytes())
	return v, cb.consumed(n)
}

// DecodeRawBytes reads a count-delimited byte buffer from the Buffer.
// This is the format used for the bytes protocol buffer
// type and for embedded messages. If alloc is true, the data is copied
// to a new slice. Otherwise, the returned slice is a view into the
// buffer's underlying byte slice.
func (cb *Buffer) DecodeRawBytes(alloc bool) ([]byte, error) {
	b, n := protowire.ConsumeBytes(cb.Bytes())
	if err := cb.consumed(n); err != nil {
		return nil, err
	}
	if alloc {
		b = append([]byte(nil), b...)
	}
	return b, nil
}

// SkipField discards the value of a field whose tag has already been read,
// including nested groups.
func (cb *Buffer) SkipField(num protowire.Number, typ protowire.Type) error {
	return cb.consumed(protowire.ConsumeFieldValue(num, typ, cb.Bytes()))
}

// EncodeVarint writes a varint-encoded integer to the Buffer.
// This is the format for the
// int32, int64, uint32, uint64, bool, and enum
// protocol buffer types.
func (cb *Buffer) EncodeVarint(x uint64) {
	cb.buf = protowire.AppendVarint(cb.buf, x)
}

// EncodeTagAndWireType encodes the given field tag and wire type to the
// buffer. This combines the two values and then writes them as a varint.
func (cb *Buffer) EncodeTagAndWireType(num protowire.Number, typ protowire.Type) {
	cb.buf = protowire.AppendTag(cb.buf, num, typ)
}

// EncodeFixed64 writes a 64-bit integer to the Buffer.
// This is the format for the
// fixed64, sfixed64, and double protocol buffer types.
func (cb *Buffer) EncodeFixed64(x uint64) {
	cb.buf = protowire.AppendFixed64(cb.buf, x)
}

// EncodeFixed32 writes a 32-bit integer to the Buffer.
// This is the format for the
// fixed32, sfixed32, and float protocol buffer types.
func (cb *Buffer) EncodeFixed32(x uint32) {
	cb.buf = protowire.AppendFixed32(cb.buf, x)
}

// EncodeRawBytes writes a count-delimited byte buffer to the Buffer.
// This is the format used for the bytes protocol buffer
// type and for embedded messages.
func (cb *Buffer) EncodeRawBytes(b []byte) {
	cb.buf = protowire.AppendBytes(cb.buf, b)
}
