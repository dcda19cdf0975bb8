// Package schema decodes replay data driven by a type table instead of
// generated code. One Decoder interprets any protocol build: a build is
// only a Table (its type list) plus a handful of root type ids.
//
// A Table is the Go form of a build's type list. Every entry has a Kind and
// whatever that kind needs: integer and length bounds, an element type, or
// the fields of a struct or choice. Type ids are indexes into Table.Types.
package schema

import (
	"fmt"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// Kind is the shape of a schema type.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindBlob
	KindBitArray
	KindArray
	KindOptional
	KindStruct
	KindChoice
	KindFourCC
	KindReal32
	KindReal64

	kindCount
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindBlob:     "blob",
	KindBitArray: "bitarray",
	KindArray:    "array",
	KindOptional: "optional",
	KindStruct:   "struct",
	KindChoice:   "choice",
	KindFourCC:   "fourcc",
	KindReal32:   "real32",
	KindReal64:   "real64",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParentField is the field name whose value is merged into the enclosing
// struct rather than stored under its own key.
const ParentField = "__parent"

// NoType marks an absent type reference, e.g. an event stream without user ids.
const NoType = -1

// FieldInfo is a struct field or a choice variant.
type FieldInfo struct {
	Name     string `cbor:"1,keyasint"`
	Type     int    `cbor:"2,keyasint"`
	Tag      int64  `cbor:"3,keyasint"`
	Optional bool   `cbor:"4,keyasint,omitempty"`
}

// TypeInfo describes one schema type.
//
// Bounds holds the value range of an int, the length prefix of a blob,
// bit array or array, and the selector of a choice. Elem is the element
// type of an array or optional. Fields lists struct fields in wire order
// for the packed encoding, or choice variants.
type TypeInfo struct {
	Kind   Kind           `cbor:"1,keyasint"`
	Bounds s2proto.Bounds `cbor:"2,keyasint"`
	Elem   int            `cbor:"3,keyasint,omitempty"`
	Fields []FieldInfo    `cbor:"4,keyasint,omitempty"`
}

// Table is the type list of one protocol build.
type Table struct {
	Types []TypeInfo `cbor:"1,keyasint"`
}

// Add appends t and returns its type id.
func (t *Table) Add(ti TypeInfo) int {
	t.Types = append(t.Types, ti)
	return len(t.Types) - 1
}

// Type returns the type with the given id.
func (t *Table) Type(id int) (*TypeInfo, error) {
	if id < 0 || id >= len(t.Types) {
		return nil, &TableError{Type: id, Reason: "no such type"}
	}
	return &t.Types[id], nil
}

// TableError reports an inconsistent type table.
type TableError struct {
	Type   int
	Reason string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("schema: type %d: %s", e.Type, e.Reason)
}

// fieldOptional reports whether a struct field may be absent from the wire.
func (t *Table) fieldOptional(f *FieldInfo) bool {
	if f.Optional {
		return true
	}
	ft, err := t.Type(f.Type)
	return err == nil && ft.Kind == KindOptional
}

// Validate checks that every type reference resolves, that struct and
// choice tags are unique, and that every choice selector can address all
// of its variants.
func (t *Table) Validate() error {
	for id := range t.Types {
		if err := t.validateType(id); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) validateType(id int) error {
	ti := &t.Types[id]
	bad := func(format string, args ...any) error {
		return &TableError{Type: id, Reason: fmt.Sprintf(format, args...)}
	}
	ref := func(what string, ref int) error {
		if ref < 0 || ref >= len(t.Types) {
			return bad("%s refers to missing type %d", what, ref)
		}
		return nil
	}

	switch ti.Kind {
	case KindNull, KindBool, KindFourCC, KindReal32, KindReal64:
		return nil
	case KindInt:
		if ti.Bounds.Bits < 0 || ti.Bounds.Bits > 64 {
			return bad("int width %d out of range", ti.Bounds.Bits)
		}
		return nil
	case KindBlob, KindBitArray:
		if ti.Bounds.Bits < 0 || ti.Bounds.Bits > 63 {
			return bad("length width %d out of range", ti.Bounds.Bits)
		}
		return nil
	case KindArray:
		if ti.Bounds.Bits < 0 || ti.Bounds.Bits > 63 {
			return bad("length width %d out of range", ti.Bounds.Bits)
		}
		return ref("array element", ti.Elem)
	case KindOptional:
		return ref("optional element", ti.Elem)
	case KindStruct:
		tags := make(map[int64]string, len(ti.Fields))
		for _, f := range ti.Fields {
			if err := ref("field "+f.Name, f.Type); err != nil {
				return err
			}
			if prev, dup := tags[f.Tag]; dup {
				return bad("fields %s and %s share tag %d", prev, f.Name, f.Tag)
			}
			tags[f.Tag] = f.Name
		}
		return nil
	case KindChoice:
		sel := ti.Bounds
		if sel.Bits < 0 || sel.Bits > 63 {
			return bad("selector width %d out of range", sel.Bits)
		}
		if need := s2proto.SelectorBits(len(ti.Fields)); sel.Bits < need {
			return bad("%d variants need a %d bit selector, have %d", len(ti.Fields), need, sel.Bits)
		}
		tags := make(map[int64]string, len(ti.Fields))
		for _, f := range ti.Fields {
			if err := ref("variant "+f.Name, f.Type); err != nil {
				return err
			}
			if prev, dup := tags[f.Tag]; dup {
				return bad("variants %s and %s share tag %d", prev, f.Name, f.Tag)
			}
			tags[f.Tag] = f.Name
			if f.Tag < sel.Offset || (sel.Bits < 63 && f.Tag-sel.Offset >= int64(1)<<sel.Bits) {
				return bad("variant %s tag %d not addressable by selector", f.Name, f.Tag)
			}
		}
		return nil
	}
	return bad("unknown kind %s", ti.Kind)
}

// Convenience constructors for building tables by hand.

func Null() TypeInfo   { return TypeInfo{Kind: KindNull} }
func Bool() TypeInfo   { return TypeInfo{Kind: KindBool} }
func FourCC() TypeInfo { return TypeInfo{Kind: KindFourCC} }
func Real32() TypeInfo { return TypeInfo{Kind: KindReal32} }
func Real64() TypeInfo { return TypeInfo{Kind: KindReal64} }

func Int(offset int64, bits int) TypeInfo {
	return TypeInfo{Kind: KindInt, Bounds: s2proto.Bounds{Offset: offset, Bits: bits}}
}

func Blob(offset int64, bits int) TypeInfo {
	return TypeInfo{Kind: KindBlob, Bounds: s2proto.Bounds{Offset: offset, Bits: bits}}
}

func BitArray(offset int64, bits int) TypeInfo {
	return TypeInfo{Kind: KindBitArray, Bounds: s2proto.Bounds{Offset: offset, Bits: bits}}
}

func Array(offset int64, bits int, elem int) TypeInfo {
	return TypeInfo{Kind: KindArray, Bounds: s2proto.Bounds{Offset: offset, Bits: bits}, Elem: elem}
}

func Optional(elem int) TypeInfo { return TypeInfo{Kind: KindOptional, Elem: elem} }

func Struct(fields ...FieldInfo) TypeInfo { return TypeInfo{Kind: KindStruct, Fields: fields} }

func Choice(offset int64, bits int, variants ...FieldInfo) TypeInfo {
	return TypeInfo{Kind: KindChoice, Bounds: s2proto.Bounds{Offset: offset, Bits: bits}, Fields: variants}
}
