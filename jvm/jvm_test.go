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

package jvm_test

import (
	"encoding/binary"
	"testing"

	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/jvm"
	"github.com/wipi-emu/wipiemu/recorddb"
	"github.com/wipi-emu/wipiemu/scheduler"
	"github.com/wipi-emu/wipiemu/test"
	"github.com/wipi-emu/wipiemu/wipijava"
)

func prepareJVM() *jvm.JVM {
	sch := scheduler.NewScheduler()
	bck := backend.NewHeadless(nil, recorddb.NewRepository(""))
	bck.Now = sch.Now
	return jvm.NewJVM(wipijava.Protos, bck, sch)
}

func TestFieldIdempotence(t *testing.T) {
	vm := prepareJVM()

	ref, err := vm.New("java/lang/StringBuffer", "()V")
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, vm.PutField(ref, "count", "I", jvm.IntValue(42)))
	v, err := vm.GetField(ref, "count", "I")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Int(), int32(42))

	// a write with a descriptor the class does not declare fails
	test.ExpectFailure(t, vm.PutField(ref, "count", "J", jvm.LongValue(42)))
}

func TestFieldDefaults(t *testing.T) {
	vm := prepareJVM()

	ref, err := vm.Instantiate("java/lang/StringBuffer")
	test.ExpectSuccess(t, err)

	// no constructor has run. fields hold their type default zero
	// values
	v, err := vm.GetField(ref, "count", "I")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Int(), int32(0))

	v, err = vm.GetField(ref, "value", "[C")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, v.IsNull())
}

func TestStringRoundTrip(t *testing.T) {
	vm := prepareJVM()

	ref, err := vm.NewString("감자 wipi")
	test.ExpectSuccess(t, err)

	s, err := vm.StringOf(ref)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "감자 wipi")

	length, err := vm.CallMethod(ref, "length", "()I")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, length.Int(), int32(7))
}

func TestStringBufferAppend(t *testing.T) {
	vm := prepareJVM()

	sb, err := vm.New("java/lang/StringBuffer", "()V")
	test.ExpectSuccess(t, err)

	ab, err := vm.NewString("ab")
	test.ExpectSuccess(t, err)

	// overloading is resolved by descriptor: append(String) and
	// append(I) are distinct entries
	r, err := vm.CallMethod(sb, "append", "(Ljava/lang/String;)Ljava/lang/StringBuffer;", jvm.RefValue(ab))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r.Ref, sb)

	r, err = vm.CallMethod(sb, "append", "(I)Ljava/lang/StringBuffer;", jvm.IntValue(42))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r.Ref, sb)

	str, err := vm.CallMethod(sb, "toString", "()Ljava/lang/String;")
	test.ExpectSuccess(t, err)

	s, err := vm.StringOf(str.Ref)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "ab42")

	// the backing array has not needed to grow
	value, err := vm.GetField(sb, "value", "[C")
	test.ExpectSuccess(t, err)
	capacity, err := vm.ArrayLength(value.Ref)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, capacity, 16)
}

func TestStringBufferGrowth(t *testing.T) {
	vm := prepareJVM()

	sb, err := vm.New("java/lang/StringBuffer", "()V")
	test.ExpectSuccess(t, err)

	expected := ""
	for i := 0; i < 10; i++ {
		s, err := vm.NewString("chunk!")
		test.ExpectSuccess(t, err)
		_, err = vm.CallMethod(sb, "append", "(Ljava/lang/String;)Ljava/lang/StringBuffer;", jvm.RefValue(s))
		test.ExpectSuccess(t, err)
		expected += "chunk!"

		// the backing array length is always a power of two >= count
		value, err := vm.GetField(sb, "value", "[C")
		test.ExpectSuccess(t, err)
		capacity, err := vm.ArrayLength(value.Ref)
		test.ExpectSuccess(t, err)
		count, err := vm.GetField(sb, "count", "I")
		test.ExpectSuccess(t, err)

		test.ExpectSuccess(t, capacity >= int(count.Int()))
		test.ExpectEquality(t, capacity&(capacity-1), 0)
	}

	str, err := vm.CallMethod(sb, "toString", "()Ljava/lang/String;")
	test.ExpectSuccess(t, err)
	s, err := vm.StringOf(str.Ref)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, expected)
}

func TestStringBufferAliasesSourceString(t *testing.T) {
	vm := prepareJVM()

	src, err := vm.NewString("alias")
	test.ExpectSuccess(t, err)

	sb, err := vm.New("java/lang/StringBuffer", "(Ljava/lang/String;)V", jvm.RefValue(src))
	test.ExpectSuccess(t, err)

	// the constructor adopts the string's backing array reference
	// rather than copying. this is observed vendor behaviour
	sbValue, err := vm.GetField(sb, "value", "[C")
	test.ExpectSuccess(t, err)
	srcValue, err := vm.GetField(src, "value", "[C")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sbValue.Ref, srcValue.Ref)
}

func TestMethodResolutionParentChain(t *testing.T) {
	vm := prepareJVM()

	sb, err := vm.New("java/lang/StringBuffer", "()V")
	test.ExpectSuccess(t, err)

	// hashCode is not declared by StringBuffer. resolution walks the
	// parent chain to java/lang/Object
	v, err := vm.CallMethod(sb, "hashCode", "()I")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Int(), int32(sb))

	// a descriptor with no match anywhere in the chain is an error
	_, err = vm.CallMethod(sb, "append", "(F)Ljava/lang/StringBuffer;")
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, jvm.NoSuchMethod))
}

func TestRuntimeSingleton(t *testing.T) {
	vm := prepareJVM()

	a, err := vm.CallStaticMethod("java/lang/Runtime", "getRuntime", "()Ljava/lang/Runtime;")
	test.ExpectSuccess(t, err)
	b, err := vm.CallStaticMethod("java/lang/Runtime", "getRuntime", "()Ljava/lang/Runtime;")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a.Ref, b.Ref)

	total, err := vm.CallMethod(a.Ref, "totalMemory", "()J")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, total.Long(), int64(0x100000))
}

func TestDataBase(t *testing.T) {
	vm := prepareJVM()

	name, err := vm.NewString("X")
	test.ExpectSuccess(t, err)

	db, err := vm.CallStaticMethod("org/kwis/msp/db/DataBase",
		"openDataBase", "(Ljava/lang/String;IZ)Lorg/kwis/msp/db/DataBase;",
		jvm.RefValue(name), jvm.IntValue(0), jvm.BoolValue(true))
	test.ExpectSuccess(t, err)

	// the dbName field stores the name
	dbName, err := vm.GetField(db.Ref, "dbName", "Ljava/lang/String;")
	test.ExpectSuccess(t, err)
	s, err := vm.StringOf(dbName.Ref)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "X")

	record, err := vm.InstantiateArray("B", 3)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, vm.StoreByteArray(record, 0, []byte{1, 2, 3}))

	id, err := vm.CallMethod(db.Ref, "insertRecord", "([BII)I",
		jvm.RefValue(record), jvm.IntValue(0), jvm.IntValue(3))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, id.Int(), int32(1))

	selected, err := vm.CallMethod(db.Ref, "selectRecord", "(I)[B", id)
	test.ExpectSuccess(t, err)
	data, err := vm.LoadByteArray(selected.Ref, 0, 3)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, data[0], uint8(1))
	test.ExpectEquality(t, data[1], uint8(2))
	test.ExpectEquality(t, data[2], uint8(3))

	n, err := vm.CallMethod(db.Ref, "getNumberOfRecords", "()I")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n.Int(), int32(1))
}

func TestClassNotFound(t *testing.T) {
	vm := prepareJVM()

	_, err := vm.Instantiate("com/vendor/Missing")
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, jvm.ClassNotFound))
}

// buildAdderClass assembles a minimal class file by hand:
//
//	class Adder { static int add(int a, int b) { return a + b; } }
func buildAdderClass() []byte {
	var b []byte

	u2 := func(v uint16) {
		b = binary.BigEndian.AppendUint16(b, v)
	}
	u4 := func(v uint32) {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	utf8 := func(s string) {
		b = append(b, 1) // CONSTANT_Utf8
		u2(uint16(len(s)))
		b = append(b, s...)
	}

	u4(0xcafebabe)
	u2(0) // minor
	u2(47) // major

	u2(8) // constant pool count
	utf8("Adder")            // 1
	b = append(b, 7)         // 2: CONSTANT_Class
	u2(1)
	utf8("java/lang/Object") // 3
	b = append(b, 7)         // 4: CONSTANT_Class
	u2(3)
	utf8("add")              // 5
	utf8("(II)I")            // 6
	utf8("Code")             // 7

	u2(0x0021) // access flags
	u2(2)      // this class
	u2(4)      // super class
	u2(0)      // interfaces
	u2(0)      // fields

	u2(1) // methods
	u2(0x0008) // static
	u2(5)      // name
	u2(6)      // descriptor
	u2(1)      // attributes
	u2(7)      // Code
	u4(16)     // attribute length
	u2(2)      // max stack
	u2(2)      // max locals
	u4(4)      // code length
	b = append(b, 0x1a, 0x1b, 0x60, 0xac) // iload_0 iload_1 iadd ireturn
	u2(0) // exception table
	u2(0) // code attributes

	u2(0) // class attributes

	return b
}

func TestBytecodeMethod(t *testing.T) {
	vm := prepareJVM()

	cl, err := vm.LoadClassData(buildAdderClass())
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, cl.Name, "Adder")

	// bytecode methods are invoked through the same dispatcher surface
	// as host implemented methods
	v, err := vm.CallStaticMethod("Adder", "add", "(II)I", jvm.IntValue(3), jvm.IntValue(4))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.Int(), int32(7))
}
