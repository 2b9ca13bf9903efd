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

package jvm

import (
	"github.com/wipi-emu/wipiemu/jvm/classfile"
)

// MethodFlags qualify a method prototype.
type MethodFlags int

// List of valid MethodFlags values. The values match the class file
// access flags.
const (
	FlagNone   MethodFlags = 0x0
	FlagStatic MethodFlags = 0x8
	FlagNative MethodFlags = 0x100
)

// HostMethod is a method body implemented by the emulator rather than by
// bytecode. The this argument is the null reference for static methods.
// Any call the body makes back into the dispatcher is a potential
// suspension point.
type HostMethod func(vm *JVM, this Ref, args []Value) (Value, error)

// Method is a resolved method. The body is either bytecode (Code) or
// host implemented (Host), never both.
type Method struct {
	Name       string
	Descriptor string
	Flags      MethodFlags

	Host HostMethod
	Code *classfile.Method

	// the class the method was declared in
	class *Class
}

// IsStatic returns true for static methods.
func (m *Method) IsStatic() bool {
	return m.Flags&FlagStatic == FlagStatic
}

// fieldKey is the identity of a field: the descriptor disambiguates
// shadowed names.
type fieldKey struct {
	name string
	desc string
}

// FieldProto is a declared field.
type FieldProto struct {
	Name       string
	Descriptor string
	Static     bool
}

// Class is a loaded class.
type Class struct {
	Name       string
	Super      *Class
	Interfaces []string
	Methods    []*Method
	Fields     []FieldProto

	statics map[fieldKey]Value

	// the class file the class was loaded from. nil for built-in
	// classes
	file *classfile.ClassFile
}

// File returns the class file the class was parsed from, or nil for a
// built-in class.
func (cl *Class) File() *classfile.ClassFile {
	return cl.file
}

// method looks up a declared method by name and descriptor in this class
// only.
func (cl *Class) method(name string, desc string) *Method {
	for _, m := range cl.Methods {
		if m.Name == name && m.Descriptor == desc {
			return m
		}
	}
	return nil
}

// fieldDeclared checks whether the class chain declares the field.
func (cl *Class) fieldDeclared(name string, desc string) bool {
	for c := cl; c != nil; c = c.Super {
		for _, f := range c.Fields {
			if f.Name == name && f.Descriptor == desc && !f.Static {
				return true
			}
		}
	}
	return false
}

// IsSubclassOf walks the parent chain.
func (cl *Class) IsSubclassOf(name string) bool {
	for c := cl; c != nil; c = c.Super {
		if c.Name == name {
			return true
		}
		for _, i := range c.Interfaces {
			if i == name {
				return true
			}
		}
	}
	return false
}

// MethodProto is a method in a built-in class prototype.
type MethodProto struct {
	Name       string
	Descriptor string
	Flags      MethodFlags
	Body       HostMethod
}

// ClassProto is a built-in class prototype, supplied by the facade class
// table. It is instantiated into a Class on first load.
type ClassProto struct {
	Parent     string
	Interfaces []string
	Methods    []MethodProto
	Fields     []FieldProto
}
