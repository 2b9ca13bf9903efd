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

// class java.lang.String
//
// a string owns a char[] value holding UTF-16 code units.
func stringProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "value", Descriptor: "[C"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: stringInitEmpty},
			{Name: "<init>", Descriptor: "([C)V", Body: stringInitChars},
			{Name: "<init>", Descriptor: "([CII)V", Body: stringInitCharsRange},
			{Name: "<init>", Descriptor: "([B)V", Body: stringInitBytes},
			{Name: "length", Descriptor: "()I", Body: stringLength},
			{Name: "charAt", Descriptor: "(I)C", Body: stringCharAt},
			{Name: "toString", Descriptor: "()Ljava/lang/String;", Body: stringToString},
			{Name: "equals", Descriptor: "(Ljava/lang/Object;)Z", Body: stringEquals},
			{Name: "getBytes", Descriptor: "()[B", Body: stringGetBytes},
			{Name: "valueOf", Descriptor: "(I)Ljava/lang/String;", Flags: jvm.FlagStatic, Body: stringValueOfInt},
		},
	}
}

func stringInitEmpty(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	array, err := vm.InstantiateArray("C", 0)
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.VoidValue(), vm.PutField(this, "value", "[C", jvm.RefValue(array))
}

// stringInitChars stores the supplied backing array without copying.
func stringInitChars(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "value", "[C", args[0])
}

func stringInitCharsRange(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	offset := int(args[1].Int())
	count := int(args[2].Int())

	src, err := vm.LoadArray(args[0].Ref, offset, count)
	if err != nil {
		return jvm.VoidValue(), err
	}

	array, err := vm.InstantiateArray("C", count)
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.StoreArray(array, 0, src); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.VoidValue(), vm.PutField(this, "value", "[C", jvm.RefValue(array))
}

func stringInitBytes(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	length, err := vm.ArrayLength(args[0].Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}
	data, err := vm.LoadByteArray(args[0].Ref, 0, length)
	if err != nil {
		return jvm.VoidValue(), err
	}

	ref, err := vm.NewString(string(data))
	if err != nil {
		return jvm.VoidValue(), err
	}
	v, err := vm.GetField(ref, "value", "[C")
	if err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.VoidValue(), vm.PutField(this, "value", "[C", v)
}

func stringLength(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	v, err := vm.GetField(this, "value", "[C")
	if err != nil {
		return jvm.VoidValue(), err
	}
	length, err := vm.ArrayLength(v.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.IntValue(int32(length)), nil
}

func stringCharAt(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	v, err := vm.GetField(this, "value", "[C")
	if err != nil {
		return jvm.VoidValue(), err
	}
	return vm.LoadArrayElement(v.Ref, int(args[0].Int()))
}

func stringToString(_ *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.RefValue(this), nil
}

func stringEquals(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if args[0].IsNull() {
		return jvm.BoolValue(false), nil
	}

	other, err := vm.ClassOf(args[0].Ref)
	if err != nil || !other.IsSubclassOf("java/lang/String") {
		return jvm.BoolValue(false), nil
	}

	a, err := vm.StringOf(this)
	if err != nil {
		return jvm.VoidValue(), err
	}
	b, err := vm.StringOf(args[0].Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.BoolValue(a == b), nil
}

func stringGetBytes(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	s, err := vm.StringOf(this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	data := []byte(s)
	array, err := vm.InstantiateArray("B", len(data))
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.StoreByteArray(array, 0, data); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.RefValue(array), nil
}

func stringValueOfInt(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	ref, err := vm.NewString(strconv.Itoa(int(args[0].Int())))
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(ref), nil
}
