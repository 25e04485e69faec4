package jumpch

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"
)

// Key lists the types HashKey accepts.
type Key interface {
	~string | ~[]byte | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// HashKey returns the bucket of key among slots buckets, using the default
// SipHash-1-3 reducer and the WriteValue encoding. It panics when slots is 0.
func HashKey[K Key](key K, slots uint32) uint32 {
	h := New(slots)
	MustWriteValue(h, key)
	return h.Sum32()
}

// Multi-byte integers are encoded little-endian. int and uint always use 8 bytes,
// so buckets do not depend on the platform.

// stringTerminator follows every encoded string. 0xff never appears in UTF-8.
var stringTerminator = []byte{0xff}

// WriteString writes the bytes of s followed by 0xff, so that ("ab", "c") and
// ("a", "bc") encode differently.
func WriteString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	_, err := w.Write(stringTerminator)
	return err
}

// WriteBytes writes the length of p as a uint64, then p.
func WriteBytes(w io.Writer, p []byte) error {
	if err := WriteUint64(w, uint64(len(p))); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

// WriteBool writes true as 1 and false as 0, on one byte.
func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteUint8(w, 1)
	}
	return WriteUint8(w, 0)
}

// WriteUint8 and the other fixed-width integer encoders write v little-endian,
// on the width of its type.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func WriteUint16(w io.Writer, v uint16) error {
	_, err := w.Write(binary.LittleEndian.AppendUint16(nil, v))
	return err
}

func WriteUint32(w io.Writer, v uint32) error {
	_, err := w.Write(binary.LittleEndian.AppendUint32(nil, v))
	return err
}

func WriteUint64(w io.Writer, v uint64) error {
	_, err := w.Write(binary.LittleEndian.AppendUint64(nil, v))
	return err
}

// WriteUint and WriteInt always write 8 bytes.
func WriteUint(w io.Writer, v uint) error { return WriteUint64(w, uint64(v)) }

func WriteInt8(w io.Writer, v int8) error { return WriteUint8(w, uint8(v)) }

func WriteInt16(w io.Writer, v int16) error { return WriteUint16(w, uint16(v)) }

func WriteInt32(w io.Writer, v int32) error { return WriteUint32(w, uint32(v)) }

func WriteInt64(w io.Writer, v int64) error { return WriteUint64(w, uint64(v)) }

func WriteInt(w io.Writer, v int) error { return WriteUint64(w, uint64(v)) }

// WriteFloat32 and WriteFloat64 write the IEEE 754 bits of v.
func WriteFloat32(w io.Writer, v float32) error { return WriteUint32(w, math.Float32bits(v)) }

func WriteFloat64(w io.Writer, v float64) error { return WriteUint64(w, math.Float64bits(v)) }

// WriteValue encodes v with the Write* function matching its type.
//
// Values implementing encoding.BinaryMarshaler or fmt.Stringer are encoded through
// them. Other named types are encoded like their underlying kind, arrays and structs
// field by field. WriteValue panics on anything else (maps, pointers, funcs,
// channels...): their bytes are not a stable identity.
func WriteValue(w io.Writer, v any) error {
	switch x := v.(type) {
	case string:
		return WriteString(w, x)
	case []byte:
		return WriteBytes(w, x)
	case bool:
		return WriteBool(w, x)
	case int:
		return WriteInt(w, x)
	case int8:
		return WriteInt8(w, x)
	case int16:
		return WriteInt16(w, x)
	case int32:
		return WriteInt32(w, x)
	case int64:
		return WriteInt64(w, x)
	case uint:
		return WriteUint(w, x)
	case uint8:
		return WriteUint8(w, x)
	case uint16:
		return WriteUint16(w, x)
	case uint32:
		return WriteUint32(w, x)
	case uint64:
		return WriteUint64(w, x)
	case uintptr:
		return WriteUint64(w, uint64(x))
	case float32:
		return WriteFloat32(w, x)
	case float64:
		return WriteFloat64(w, x)
	}

	switch x := v.(type) {
	case encoding.BinaryMarshaler:
		p, err := x.MarshalBinary()
		if err != nil {
			return err
		}
		return WriteBytes(w, p)
	case fmt.Stringer:
		return WriteString(w, x.String())
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !encodable(rv.Type()) {
		panic(fmt.Sprintf("jumpch: cannot hash value of type %T", v))
	}

	return writeKind(w, rv)
}

// MustWriteValue is like WriteValue but panics when v cannot be encoded, including
// when its MarshalBinary fails or w returns an error.
func MustWriteValue(w io.Writer, v any) {
	if err := WriteValue(w, v); err != nil {
		panic(fmt.Sprintf("jumpch: cannot hash value of type %T: %v", v, err))
	}
}

// encodable reports whether writeKind has a stable encoding for t.
func encodable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Array:
		return encodable(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !encodable(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}

// writeKind encodes rv by kind. rv.Type() must be encodable.
func writeKind(w io.Writer, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		return WriteString(w, rv.String())
	case reflect.Bool:
		return WriteBool(w, rv.Bool())
	case reflect.Int8:
		return WriteInt8(w, int8(rv.Int()))
	case reflect.Int16:
		return WriteInt16(w, int16(rv.Int()))
	case reflect.Int32:
		return WriteInt32(w, int32(rv.Int()))
	case reflect.Int, reflect.Int64:
		return WriteInt64(w, rv.Int())
	case reflect.Uint8:
		return WriteUint8(w, uint8(rv.Uint()))
	case reflect.Uint16:
		return WriteUint16(w, uint16(rv.Uint()))
	case reflect.Uint32:
		return WriteUint32(w, uint32(rv.Uint()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return WriteUint64(w, rv.Uint())
	case reflect.Float32:
		return WriteFloat32(w, float32(rv.Float()))
	case reflect.Float64:
		return WriteFloat64(w, rv.Float())
	case reflect.Slice:
		return WriteBytes(w, rv.Bytes())
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := writeKind(w, rv.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if err := writeKind(w, rv.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}
