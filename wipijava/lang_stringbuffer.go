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

package wipijava

import (
	"strconv"

	"github.com/wipi-emu/wipiemu/jvm"
)

// class java.lang.StringBuffer
//
// the buffer owns a char[] value and an int count. the backing array
// grows by doubling. a buffer made with the no-argument constructor
// starts at 16, so its length is always a power of two no smaller than
// count; a buffer made from a String starts with that string's own array
// and doubles from its length.
func stringBufferProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "value", Descriptor: "[C"},
			{Name: "count", Descriptor: "I"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: stringBufferInit},
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Body: stringBufferInitString},
			{Name: "append", Descriptor: "(Ljava/lang/String;)Ljava/lang/StringBuffer;", Body: stringBufferAppendString},
			{Name: "append", Descriptor: "(I)Ljava/lang/StringBuffer;", Body: stringBufferAppendInt},
			{Name: "append", Descriptor: "(J)Ljava/lang/StringBuffer;", Body: stringBufferAppendLong},
			{Name: "append", Descriptor: "(C)Ljava/lang/StringBuffer;", Body: stringBufferAppendChar},
			{Name: "length", Descriptor: "()I", Body: stringBufferLength},
			{Name: "toString", Descriptor: "()Ljava/lang/String;", Body: stringBufferToString},
		},
	}
}

const stringBufferInitialCapacity = 16

func stringBufferInit(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	array, err := vm.InstantiateArray("C", stringBufferInitialCapacity)
	if err != nil {
		return jvm.VoidValue(), err
	}

	if err := vm.PutField(this, "value", "[C", jvm.RefValue(array)); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.VoidValue(), vm.PutField(this, "count", "I", jvm.IntValue(0))
}

// stringBufferInitString adopts the argument string's backing array
// reference rather than copying the characters. This matches observed
// vendor behaviour; see the note accompanying the tests.
func stringBufferInitString(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	value, err := vm.GetField(args[0].Ref, "value", "[C")
	if err != nil {
		return jvm.VoidValue(), err
	}

	length, err := vm.ArrayLength(value.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	if err := vm.PutField(this, "value", "[C", value); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.VoidValue(), vm.PutField(this, "count", "I", jvm.IntValue(int32(length)))
}

func stringBufferAppendString(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	s := ""
	if !args[0].IsNull() {
		var err error
		s, err = vm.StringOf(args[0].Ref)
		if err != nil {
			return jvm.VoidValue(), err
		}
	} else {
		s = "null"
	}

	if err := stringBufferAppend(vm, this, s); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(this), nil
}

func stringBufferAppendInt(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := stringBufferAppend(vm, this, strconv.Itoa(int(args[0].Int()))); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(this), nil
}

func stringBufferAppendLong(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := stringBufferAppend(vm, this, strconv.FormatInt(args[0].Long(), 10)); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(this), nil
}

func stringBufferAppendChar(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := stringBufferAppend(vm, this, string(rune(args[0].Char()))); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(this), nil
}

func stringBufferLength(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "count", "I")
}

func stringBufferToString(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	value, err := vm.GetField(this, "value", "[C")
	if err != nil {
		return jvm.VoidValue(), err
	}
	count, err := vm.GetField(this, "count", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	ref, err := vm.New("java/lang/String", "([CII)V", value, jvm.IntValue(0), count)
	if err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.RefValue(ref), nil
}

// stringBufferEnsureCapacity grows the backing array by doubling until
// it can hold the required count.
func stringBufferEnsureCapacity(vm *jvm.JVM, this jvm.Ref, required int) error {
	value, err := vm.GetField(this, "value", "[C")
	if err != nil {
		return err
	}

	capacity, err := vm.ArrayLength(value.Ref)
	if err != nil {
		return err
	}

	if capacity >= required {
		return nil
	}

	newCapacity := capacity
	if newCapacity == 0 {
		newCapacity = stringBufferInitialCapacity
	}
	for newCapacity < required {
		newCapacity *= 2
	}

	old, err := vm.LoadArray(value.Ref, 0, capacity)
	if err != nil {
		return err
	}

	array, err := vm.InstantiateArray("C", newCapacity)
	if err != nil {
		return err
	}
	if err := vm.StoreArray(array, 0, old); err != nil {
		return err
	}

	return vm.PutField(this, "value", "[C", jvm.RefValue(array))
}

func stringBufferAppend(vm *jvm.JVM, this jvm.Ref, s string) error {
	count, err := vm.GetField(this, "count", "I")
	if err != nil {
		return err
	}

	units := utf16Units(s)

	if err := stringBufferEnsureCapacity(vm, this, int(count.Int())+len(units)); err != nil {
		return err
	}

	value, err := vm.GetField(this, "value", "[C")
	if err != nil {
		return err
	}

	add := make([]jvm.Value, len(units))
	for i, u := range units {
		add[i] = jvm.CharValue(u)
	}

	if err := vm.StoreArray(value.Ref, int(count.Int()), add); err != nil {
		return err
	}

	return vm.PutField(this, "count", "I", jvm.IntValue(count.Int()+int32(len(units))))
}
