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

import "fmt"

// Kind tags a Value.
type Kind int

// List of valid Kind values.
const (
	KindInt Kind = iota
	KindLong
	KindChar
	KindByte
	KindShort
	KindBool
	KindFloat
	KindDouble
	KindRef
)

// Ref is a handle into the Java heap. The zero Ref is the null
// reference. Handles are stable for the lifetime of the program.
type Ref int32

// Value is the tagged union passed between the dispatcher, bytecode
// methods and host methods.
type Value struct {
	Kind Kind

	// integral kinds (int, long, char, byte, short, bool)
	I int64

	// float and double kinds
	F float64

	// object reference kind
	Ref Ref
}

func (v Value) String() string {
	switch v.Kind {
	case KindFloat, KindDouble:
		return fmt.Sprintf("%f", v.F)
	case KindRef:
		return fmt.Sprintf("@%d", v.Ref)
	}
	return fmt.Sprintf("%d", v.I)
}

// IntValue boxes an int.
func IntValue(v int32) Value {
	return Value{Kind: KindInt, I: int64(v)}
}

// LongValue boxes a long.
func LongValue(v int64) Value {
	return Value{Kind: KindLong, I: v}
}

// CharValue boxes a char (an unsigned UTF-16 code unit).
func CharValue(v uint16) Value {
	return Value{Kind: KindChar, I: int64(v)}
}

// ByteValue boxes a byte.
func ByteValue(v int8) Value {
	return Value{Kind: KindByte, I: int64(v)}
}

// BoolValue boxes a boolean.
func BoolValue(v bool) Value {
	if v {
		return Value{Kind: KindBool, I: 1}
	}
	return Value{Kind: KindBool}
}

// FloatValue boxes a float.
func FloatValue(v float32) Value {
	return Value{Kind: KindFloat, F: float64(v)}
}

// DoubleValue boxes a double.
func DoubleValue(v float64) Value {
	return Value{Kind: KindDouble, F: v}
}

// RefValue boxes an object reference.
func RefValue(r Ref) Value {
	return Value{Kind: KindRef, Ref: r}
}

// NullValue is the null object reference.
func NullValue() Value {
	return Value{Kind: KindRef}
}

// VoidValue is the result of a method with a void return type.
func VoidValue() Value {
	return Value{Kind: KindInt}
}

// Int unboxes any integral kind to an int32.
func (v Value) Int() int32 {
	return int32(v.I)
}

// Long unboxes a long.
func (v Value) Long() int64 {
	return v.I
}

// Char unboxes a char.
func (v Value) Char() uint16 {
	return uint16(v.I)
}

// Byte unboxes a byte.
func (v Value) Byte() int8 {
	return int8(v.I)
}

// Bool unboxes a boolean.
func (v Value) Bool() bool {
	return v.I != 0
}

// IsNull is true for a null object reference.
func (v Value) IsNull() bool {
	return v.Kind == KindRef && v.Ref == 0
}

// Wide is true for kinds that occupy two slots on the operand stack.
func (v Value) Wide() bool {
	return v.Kind == KindLong || v.Kind == KindDouble
}

// defaultValue returns the zero value for a field descriptor.
func defaultValue(desc string) Value {
	switch desc[0] {
	case 'J':
		return LongValue(0)
	case 'C':
		return CharValue(0)
	case 'B':
		return ByteValue(0)
	case 'S':
		return Value{Kind: KindShort}
	case 'Z':
		return BoolValue(false)
	case 'F':
		return FloatValue(0)
	case 'D':
		return DoubleValue(0)
	case 'L', '[':
		return NullValue()
	}
	return IntValue(0)
}

// argumentDescriptors splits a method descriptor into the descriptors of
// its arguments. For example "(I[BLjava/lang/String;)V" yields
// ["I", "[B", "Ljava/lang/String;"].
func argumentDescriptors(desc string) []string {
	var args []string

	i := 1 // skip the opening parenthesis
	for i < len(desc) && desc[i] != ')' {
		start := i
		for desc[i] == '[' {
			i++
		}
		if desc[i] == 'L' {
			for desc[i] != ';' {
				i++
			}
		}
		i++
		args = append(args, desc[start:i])
	}

	return args
}

// returnDescriptor returns the descriptor of a method's return type.
func returnDescriptor(desc string) string {
	for i := 0; i < len(desc); i++ {
		if desc[i] == ')' {
			return desc[i+1:]
		}
	}
	return "V"
}
