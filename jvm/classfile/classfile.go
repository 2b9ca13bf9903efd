// This file is part of wipiemu.
//
// wipiemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// wipiemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with wipiemu.  If not, see <https://www.gnu.org/licenses/>.

// Package classfile parses Java class files of the vintage found in WIPI
// application archives (major version 45 to 49). Only the structures the
// emulator consumes are retained: the constant pool, class names, field
// and method declarations and method bytecode.
package classfile

import (
	"encoding/binary"
	"math"

	"github.com/wipi-emu/wipiemu/curated"
)

// sentinel error patterns for the classfile package.
const (
	NotAClassFile = "classfile: not a class file"
	Truncated     = "classfile: truncated class file"
	BadConstant   = "classfile: unsupported constant pool tag %d"
)

// access flags used by the emulator.
const (
	AccStatic = 0x0008
	AccNative = 0x0100
)

// constant pool tags.
const (
	tagUTF8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldRef           = 9
	tagMethodRef          = 10
	tagInterfaceMethodRef = 11
	tagNameAndType        = 12
)

// Constant is one constant pool entry.
type Constant struct {
	Tag uint8

	// tagInteger, tagLong: the integral value. tagFloat, tagDouble: the
	// bit pattern, see Float()/Double()
	Value int64

	// tagUTF8
	UTF8 string

	// index operands. meaning depends on the tag
	Index1 uint16
	Index2 uint16
}

// Float returns the value of a tagFloat constant.
func (c Constant) Float() float32 {
	return math.Float32frombits(uint32(c.Value))
}

// Double returns the value of a tagDouble constant.
func (c Constant) Double() float64 {
	return math.Float64frombits(uint64(c.Value))
}

// Field is a field declaration.
type Field struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// Method is a method declaration with its bytecode, if any.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  string

	// from the Code attribute. nil for abstract and native methods
	MaxStack  int
	MaxLocals int
	Code      []byte
}

// ClassFile is a parsed class file.
type ClassFile struct {
	Pool       []Constant
	Name       string
	SuperName  string
	Interfaces []string
	Fields     []Field
	Methods    []Method
}

type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) u1() uint8 {
	if r.err != nil || r.pos+1 > len(r.data) {
		r.err = curated.Errorf(Truncated)
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if r.err != nil || r.pos+2 > len(r.data) {
		r.err = curated.Errorf(Truncated)
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if r.err != nil || r.pos+4 > len(r.data) {
		r.err = curated.Errorf(Truncated)
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil || n < 0 || r.pos+n > len(r.data) {
		r.err = curated.Errorf(Truncated)
		return nil
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

// Parse a class file.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}

	if r.u4() != 0xcafebabe {
		return nil, curated.Errorf(NotAClassFile)
	}
	r.u2() // minor version
	r.u2() // major version

	cf := &ClassFile{}

	// constant pool. indices are 1 based and long/double entries occupy
	// two slots
	poolCount := int(r.u2())
	cf.Pool = make([]Constant, poolCount)
	for i := 1; i < poolCount; i++ {
		tag := r.u1()
		c := Constant{Tag: tag}

		switch tag {
		case tagUTF8:
			length := int(r.u2())
			c.UTF8 = string(r.bytes(length))
		case tagInteger:
			c.Value = int64(int32(r.u4()))
		case tagFloat:
			c.Value = int64(r.u4())
		case tagLong:
			c.Value = int64(uint64(r.u4())<<32 | uint64(r.u4()))
		case tagDouble:
			c.Value = int64(uint64(r.u4())<<32 | uint64(r.u4()))
		case tagClass, tagString:
			c.Index1 = r.u2()
		case tagFieldRef, tagMethodRef, tagInterfaceMethodRef, tagNameAndType:
			c.Index1 = r.u2()
			c.Index2 = r.u2()
		default:
			return nil, curated.Errorf(BadConstant, tag)
		}

		if r.err != nil {
			return nil, r.err
		}

		cf.Pool[i] = c

		if tag == tagLong || tag == tagDouble {
			i++
		}
	}

	r.u2() // access flags
	cf.Name = cf.ClassName(r.u2())
	super := r.u2()
	if super != 0 {
		cf.SuperName = cf.ClassName(super)
	}

	interfaceCount := int(r.u2())
	for i := 0; i < interfaceCount; i++ {
		cf.Interfaces = append(cf.Interfaces, cf.ClassName(r.u2()))
	}

	fieldCount := int(r.u2())
	for i := 0; i < fieldCount; i++ {
		f := Field{
			AccessFlags: r.u2(),
			Name:        cf.UTF8(r.u2()),
			Descriptor:  cf.UTF8(r.u2()),
		}
		r.skipAttributes()
		cf.Fields = append(cf.Fields, f)
	}

	methodCount := int(r.u2())
	for i := 0; i < methodCount; i++ {
		m := Method{
			AccessFlags: r.u2(),
			Name:        cf.UTF8(r.u2()),
			Descriptor:  cf.UTF8(r.u2()),
		}

		attrCount := int(r.u2())
		for a := 0; a < attrCount; a++ {
			name := cf.UTF8(r.u2())
			length := int(r.u4())
			if name == "Code" {
				end := r.pos + length
				m.MaxStack = int(r.u2())
				m.MaxLocals = int(r.u2())
				codeLength := int(r.u4())
				m.Code = append([]byte(nil), r.bytes(codeLength)...)
				r.pos = end
			} else {
				r.bytes(length)
			}
		}

		cf.Methods = append(cf.Methods, m)
	}

	if r.err != nil {
		return nil, r.err
	}

	return cf, nil
}

func (r *reader) skipAttributes() {
	attrCount := int(r.u2())
	for a := 0; a < attrCount; a++ {
		r.u2() // name index
		length := int(r.u4())
		r.bytes(length)
	}
}

// UTF8 returns the string at the supplied constant pool index.
func (cf *ClassFile) UTF8(idx uint16) string {
	if int(idx) >= len(cf.Pool) {
		return ""
	}
	return cf.Pool[idx].UTF8
}

// ClassName returns the name of the class referenced by the constant
// pool entry at the supplied index.
func (cf *ClassFile) ClassName(idx uint16) string {
	if int(idx) >= len(cf.Pool) {
		return ""
	}
	return cf.UTF8(cf.Pool[idx].Index1)
}

// NameAndType returns the name and descriptor referenced by the constant
// pool entry at the supplied index.
func (cf *ClassFile) NameAndType(idx uint16) (string, string) {
	if int(idx) >= len(cf.Pool) {
		return "", ""
	}
	c := cf.Pool[idx]
	return cf.UTF8(c.Index1), cf.UTF8(c.Index2)
}

// Ref resolves a field/method/interface-method reference into its class
// name, member name and descriptor.
func (cf *ClassFile) Ref(idx uint16) (string, string, string) {
	if int(idx) >= len(cf.Pool) {
		return "", "", ""
	}
	c := cf.Pool[idx]
	class := cf.ClassName(c.Index1)
	name, desc := cf.NameAndType(c.Index2)
	return class, name, desc
}
