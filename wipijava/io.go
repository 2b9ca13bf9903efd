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
	"github.com/wipi-emu/wipiemu/jvm"
	"github.com/wipi-emu/wipiemu/logger"
)

// class java.io.InputStream
func inputStreamProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "read", Descriptor: "()I"},
			{Name: "available", Descriptor: "()I"},
			{Name: "close", Descriptor: "()V", Body: objectInit},
		},
	}
}

// class java.io.ByteArrayInputStream
func byteArrayInputStreamProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/io/InputStream",
		Fields: []jvm.FieldProto{
			{Name: "buf", Descriptor: "[B"},
			{Name: "pos", Descriptor: "I"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "([B)V", Body: baisInit},
			{Name: "read", Descriptor: "()I", Body: baisRead},
			{Name: "read", Descriptor: "([BII)I", Body: baisReadBuffer},
			{Name: "available", Descriptor: "()I", Body: baisAvailable},
		},
	}
}

func baisInit(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := vm.PutField(this, "buf", "[B", args[0]); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.VoidValue(), vm.PutField(this, "pos", "I", jvm.IntValue(0))
}

func baisRead(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	buf, err := vm.GetField(this, "buf", "[B")
	if err != nil {
		return jvm.VoidValue(), err
	}
	pos, err := vm.GetField(this, "pos", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	length, err := vm.ArrayLength(buf.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	if int(pos.Int()) >= length {
		return jvm.IntValue(-1), nil
	}

	v, err := vm.LoadArrayElement(buf.Ref, int(pos.Int()))
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(this, "pos", "I", jvm.IntValue(pos.Int()+1)); err != nil {
		return jvm.VoidValue(), err
	}

	// an unsigned byte, or -1 at end of stream
	return jvm.IntValue(int32(uint8(v.Byte()))), nil
}

func baisReadBuffer(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	buf, err := vm.GetField(this, "buf", "[B")
	if err != nil {
		return jvm.VoidValue(), err
	}
	pos, err := vm.GetField(this, "pos", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	length, err := vm.ArrayLength(buf.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	remaining := length - int(pos.Int())
	if remaining <= 0 {
		return jvm.IntValue(-1), nil
	}

	n := int(args[2].Int())
	if n > remaining {
		n = remaining
	}

	values, err := vm.LoadArray(buf.Ref, int(pos.Int()), n)
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.StoreArray(args[0].Ref, int(args[1].Int()), values); err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(this, "pos", "I", jvm.IntValue(pos.Int()+int32(n))); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.IntValue(int32(n)), nil
}

func baisAvailable(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	buf, err := vm.GetField(this, "buf", "[B")
	if err != nil {
		return jvm.VoidValue(), err
	}
	pos, err := vm.GetField(this, "pos", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	length, err := vm.ArrayLength(buf.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.IntValue(int32(length) - pos.Int()), nil
}

// class java.io.IOException
func ioExceptionProto() *jvm.ClassProto {
	return derivedExceptionProto()
}

// class org.kwis.msp.handset.BackLight
func backLightProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "on", Descriptor: "(I)V", Flags: jvm.FlagStatic, Body: backLightOn},
			{Name: "off", Descriptor: "()V", Flags: jvm.FlagStatic, Body: backLightOff},
		},
	}
}

func backLightOn(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	logger.Logf("JVM", "stub org.kwis.msp.handset.BackLight::on(%d)", args[0].Int())
	return jvm.VoidValue(), nil
}

func backLightOff(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "stub org.kwis.msp.handset.BackLight::off()")
	return jvm.VoidValue(), nil
}

// class org.kwis.msp.handset.HandsetProperty
func handsetPropertyProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "getSystemProperty", Descriptor: "(Ljava/lang/String;)Ljava/lang/String;", Flags: jvm.FlagStatic, Body: handsetGetSystemProperty},
		},
	}
}

func handsetGetSystemProperty(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	name := ""
	if !args[0].IsNull() {
		name, _ = vm.StringOf(args[0].Ref)
	}
	logger.Logf("JVM", "stub org.kwis.msp.handset.HandsetProperty::getSystemProperty(%s)", name)
	return jvm.NullValue(), nil
}
