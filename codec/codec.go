/*
Package codec implements the protobuf wire format used by the mining
extension entities, messages and the application transaction.

Only the subset of the format needed by proto3 messages declared in the
codec.proto files is supported: varints, length delimited fields and nested
messages. Zero values are never written, as a proto3 encoder would do. Unknown
fields are skipped when decoding so that older binaries can read data written
by newer ones.
*/
package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/weave/errors"
)

// Marshaler is implemented by all messages that can be nested.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Unmarshaler is implemented by all messages that can be nested.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Encoder builds a serialized message field by field. Fields must be written
// in the order of their numbers.
type Encoder struct {
	buf []byte
}

// Result returns the serialized message.
func (e *Encoder) Result() []byte {
	return e.buf
}

func (e *Encoder) key(field int, wire int) {
	e.buf = append(e.buf, proto.EncodeVarint(uint64(field)<<3|uint64(wire))...)
}

// Uint writes an unsigned varint field.
func (e *Encoder) Uint(field int, v uint64) {
	if v == 0 {
		return
	}
	e.key(field, proto.WireVarint)
	e.buf = append(e.buf, proto.EncodeVarint(v)...)
}

// Int writes a signed varint field (int64 and int32 protobuf types).
func (e *Encoder) Int(field int, v int64) {
	e.Uint(field, uint64(v))
}

// Bool writes a boolean field.
func (e *Encoder) Bool(field int, v bool) {
	if v {
		e.Uint(field, 1)
	}
}

// Raw writes a length delimited bytes field.
func (e *Encoder) Raw(field int, b []byte) {
	if len(b) == 0 {
		return
	}
	e.raw(field, b)
}

func (e *Encoder) raw(field int, b []byte) {
	e.key(field, proto.WireBytes)
	e.buf = append(e.buf, proto.EncodeVarint(uint64(len(b)))...)
	e.buf = append(e.buf, b...)
}

// Text writes a string field.
func (e *Encoder) Text(field int, s string) {
	e.Raw(field, []byte(s))
}

// RepeatedRaw writes a repeated bytes field. Empty elements are preserved.
func (e *Encoder) RepeatedRaw(field int, items [][]byte) {
	for _, b := range items {
		e.raw(field, b)
	}
}

// Message writes a nested message field. Callers must not pass a nil
// pointer wrapped in the interface.
func (e *Encoder) Message(field int, m Marshaler) error {
	b, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "field %d", field)
	}
	e.raw(field, b)
	return nil
}

// Decoder reads a serialized message field by field.
type Decoder struct {
	buf  []byte
	wire int
}

// NewDecoder returns a decoder reading given serialized message.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// More returns true if there is at least one more field to read.
func (d *Decoder) More() bool {
	return len(d.buf) > 0
}

// Next reads the key of the next field and returns its number. The value must
// be consumed with one of the typed readers or with Skip.
func (d *Decoder) Next() (int, error) {
	key, err := d.varint()
	if err != nil {
		return 0, errors.Wrap(err, "field key")
	}
	field := int(key >> 3)
	if field <= 0 {
		return 0, errors.Wrapf(errors.ErrInput, "illegal field number %d", field)
	}
	d.wire = int(key & 0x7)
	return field, nil
}

func (d *Decoder) varint() (uint64, error) {
	v, n := proto.DecodeVarint(d.buf)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrInput, "malformed varint")
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *Decoder) expect(wire int) error {
	if d.wire != wire {
		return errors.Wrapf(errors.ErrInput, "wire type %d, expected %d", d.wire, wire)
	}
	return nil
}

// Uint reads an unsigned varint value.
func (d *Decoder) Uint() (uint64, error) {
	if err := d.expect(proto.WireVarint); err != nil {
		return 0, err
	}
	return d.varint()
}

// Int reads a signed varint value.
func (d *Decoder) Int() (int64, error) {
	v, err := d.Uint()
	return int64(v), err
}

// Bool reads a boolean value.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint()
	return v != 0, err
}

// Raw reads a length delimited value. Returned slice is a copy and can be
// retained.
func (d *Decoder) Raw() ([]byte, error) {
	if err := d.expect(proto.WireBytes); err != nil {
		return nil, err
	}
	n, err := d.varint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(d.buf)) {
		return nil, errors.Wrapf(errors.ErrInput, "length %d exceeds %d available bytes", n, len(d.buf))
	}
	b := make([]byte, n)
	copy(b, d.buf[:n])
	d.buf = d.buf[n:]
	return b, nil
}

// Text reads a string value.
func (d *Decoder) Text() (string, error) {
	b, err := d.Raw()
	return string(b), err
}

// Message reads a nested message value into given destination.
func (d *Decoder) Message(dst Unmarshaler) error {
	b, err := d.Raw()
	if err != nil {
		return err
	}
	return dst.Unmarshal(b)
}

// Skip discards the value of the current field.
func (d *Decoder) Skip() error {
	switch d.wire {
	case proto.WireVarint:
		_, err := d.varint()
		return err
	case proto.WireBytes:
		_, err := d.Raw()
		return err
	case proto.WireFixed64:
		return d.drop(8)
	case proto.WireFixed32:
		return d.drop(4)
	default:
		return errors.Wrapf(errors.ErrInput, "unsupported wire type %d", d.wire)
	}
}

func (d *Decoder) drop(n int) error {
	if len(d.buf) < n {
		return errors.Wrap(errors.ErrInput, "unexpected end of input")
	}
	d.buf = d.buf[n:]
	return nil
}
