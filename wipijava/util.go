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

// class java.util.Vector
//
// backed by an object array that grows by doubling, and an int count.
func vectorProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "elems", Descriptor: "[Ljava/lang/Object;"},
			{Name: "count", Descriptor: "I"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: vectorInit},
			{Name: "<init>", Descriptor: "(I)V", Body: vectorInitCapacity},
			{Name: "addElement", Descriptor: "(Ljava/lang/Object;)V", Body: vectorAddElement},
			{Name: "elementAt", Descriptor: "(I)Ljava/lang/Object;", Body: vectorElementAt},
			{Name: "size", Descriptor: "()I", Body: vectorSize},
			{Name: "removeAllElements", Descriptor: "()V", Body: vectorRemoveAllElements},
		},
	}
}

func vectorInit(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vectorInitCapacity(vm, this, []jvm.Value{jvm.IntValue(10)})
}

func vectorInitCapacity(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	capacity := int(args[0].Int())
	if capacity < 1 {
		capacity = 1
	}

	array, err := vm.InstantiateArray("Ljava/lang/Object;", capacity)
	if err != nil {
		return jvm.VoidValue(), err
	}

	if err := vm.PutField(this, "elems", "[Ljava/lang/Object;", jvm.RefValue(array)); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.VoidValue(), vm.PutField(this, "count", "I", jvm.IntValue(0))
}

func vectorAddElement(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	elems, err := vm.GetField(this, "elems", "[Ljava/lang/Object;")
	if err != nil {
		return jvm.VoidValue(), err
	}
	count, err := vm.GetField(this, "count", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	capacity, err := vm.ArrayLength(elems.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	if int(count.Int()) >= capacity {
		old, err := vm.LoadArray(elems.Ref, 0, capacity)
		if err != nil {
			return jvm.VoidValue(), err
		}
		array, err := vm.InstantiateArray("Ljava/lang/Object;", capacity*2)
		if err != nil {
			return jvm.VoidValue(), err
		}
		if err := vm.StoreArray(array, 0, old); err != nil {
			return jvm.VoidValue(), err
		}
		elems = jvm.RefValue(array)
		if err := vm.PutField(this, "elems", "[Ljava/lang/Object;", elems); err != nil {
			return jvm.VoidValue(), err
		}
	}

	if err := vm.StoreArrayElement(elems.Ref, int(count.Int()), args[0]); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.VoidValue(), vm.PutField(this, "count", "I", jvm.IntValue(count.Int()+1))
}

func vectorElementAt(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	elems, err := vm.GetField(this, "elems", "[Ljava/lang/Object;")
	if err != nil {
		return jvm.VoidValue(), err
	}
	return vm.LoadArrayElement(elems.Ref, int(args[0].Int()))
}

func vectorSize(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "count", "I")
}

func vectorRemoveAllElements(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "count", "I", jvm.IntValue(0))
}

// class java.util.Hashtable
//
// parallel key and value arrays with linear lookup. string keys compare
// by content, everything else by handle.
func hashtableProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "keys", Descriptor: "Ljava/util/Vector;"},
			{Name: "vals", Descriptor: "Ljava/util/Vector;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: hashtableInit},
			{Name: "put", Descriptor: "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;", Body: hashtablePut},
			{Name: "get", Descriptor: "(Ljava/lang/Object;)Ljava/lang/Object;", Body: hashtableGet},
			{Name: "size", Descriptor: "()I", Body: hashtableSize},
		},
	}
}

func hashtableInit(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	keys, err := vm.New("java/util/Vector", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}
	vals, err := vm.New("java/util/Vector", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}

	if err := vm.PutField(this, "keys", "Ljava/util/Vector;", jvm.RefValue(keys)); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.VoidValue(), vm.PutField(this, "vals", "Ljava/util/Vector;", jvm.RefValue(vals))
}

func hashtableKeysEqual(vm *jvm.JVM, a jvm.Value, b jvm.Value) bool {
	if a.Ref == b.Ref {
		return true
	}
	if a.IsNull() || b.IsNull() {
		return false
	}

	acl, err := vm.ClassOf(a.Ref)
	if err != nil || !acl.IsSubclassOf("java/lang/String") {
		return false
	}
	bcl, err := vm.ClassOf(b.Ref)
	if err != nil || !bcl.IsSubclassOf("java/lang/String") {
		return false
	}

	as, _ := vm.StringOf(a.Ref)
	bs, _ := vm.StringOf(b.Ref)
	return as == bs
}

func hashtableIndexOf(vm *jvm.JVM, this jvm.Ref, key jvm.Value) (jvm.Ref, jvm.Ref, int, error) {
	keys, err := vm.GetField(this, "keys", "Ljava/util/Vector;")
	if err != nil {
		return 0, 0, -1, err
	}
	vals, err := vm.GetField(this, "vals", "Ljava/util/Vector;")
	if err != nil {
		return 0, 0, -1, err
	}

	size, err := vm.CallMethod(keys.Ref, "size", "()I")
	if err != nil {
		return 0, 0, -1, err
	}

	for i := 0; i < int(size.Int()); i++ {
		k, err := vm.CallMethod(keys.Ref, "elementAt", "(I)Ljava/lang/Object;", jvm.IntValue(int32(i)))
		if err != nil {
			return 0, 0, -1, err
		}
		if hashtableKeysEqual(vm, k, key) {
			return keys.Ref, vals.Ref, i, nil
		}
	}

	return keys.Ref, vals.Ref, -1, nil
}

func hashtablePut(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	keys, vals, idx, err := hashtableIndexOf(vm, this, args[0])
	if err != nil {
		return jvm.VoidValue(), err
	}

	if idx >= 0 {
		elems, err := vm.GetField(vals, "elems", "[Ljava/lang/Object;")
		if err != nil {
			return jvm.VoidValue(), err
		}
		prev, err := vm.LoadArrayElement(elems.Ref, idx)
		if err != nil {
			return jvm.VoidValue(), err
		}
		if err := vm.StoreArrayElement(elems.Ref, idx, args[1]); err != nil {
			return jvm.VoidValue(), err
		}
		return prev, nil
	}

	if _, err := vm.CallMethod(keys, "addElement", "(Ljava/lang/Object;)V", args[0]); err != nil {
		return jvm.VoidValue(), err
	}
	if _, err := vm.CallMethod(vals, "addElement", "(Ljava/lang/Object;)V", args[1]); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.NullValue(), nil
}

func hashtableGet(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	_, vals, idx, err := hashtableIndexOf(vm, this, args[0])
	if err != nil {
		return jvm.VoidValue(), err
	}
	if idx < 0 {
		return jvm.NullValue(), nil
	}

	return vm.CallMethod(vals, "elementAt", "(I)Ljava/lang/Object;", jvm.IntValue(int32(idx)))
}

func hashtableSize(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	keys, err := vm.GetField(this, "keys", "Ljava/util/Vector;")
	if err != nil {
		return jvm.VoidValue(), err
	}
	return vm.CallMethod(keys.Ref, "size", "()I")
}

// class java.util.Random
//
// the standard 48-bit linear congruential generator.
func randomProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "seed", Descriptor: "J"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: randomInit},
			{Name: "<init>", Descriptor: "(J)V", Body: randomInitSeed},
			{Name: "setSeed", Descriptor: "(J)V", Body: randomSetSeed},
			{Name: "nextInt", Descriptor: "()I", Body: randomNextInt},
			{Name: "nextInt", Descriptor: "(I)I", Body: randomNextIntBound},
			{Name: "nextLong", Descriptor: "()J", Body: randomNextLong},
		},
	}
}

const randomMultiplier = 0x5deece66d
const randomIncrement = 0xb

func randomScramble(seed int64) int64 {
	return (seed ^ randomMultiplier) & ((1 << 48) - 1)
}

func randomInit(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return randomInitSeed(vm, this, []jvm.Value{jvm.LongValue(int64(vm.Now()) + int64(this))})
}

func randomInitSeed(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "seed", "J", jvm.LongValue(randomScramble(args[0].Long())))
}

func randomSetSeed(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return randomInitSeed(vm, this, args)
}

func randomNext(vm *jvm.JVM, this jvm.Ref, bits uint) (int32, error) {
	v, err := vm.GetField(this, "seed", "J")
	if err != nil {
		return 0, err
	}

	seed := (v.Long()*randomMultiplier + randomIncrement) & ((1 << 48) - 1)
	if err := vm.PutField(this, "seed", "J", jvm.LongValue(seed)); err != nil {
		return 0, err
	}

	return int32(seed >> (48 - bits)), nil
}

func randomNextInt(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	v, err := randomNext(vm, this, 32)
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.IntValue(v), nil
}

func randomNextIntBound(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	bound := args[0].Int()
	if bound <= 0 {
		logger.Logf("JVM", "java.util.Random::nextInt with bound %d", bound)
		return jvm.IntValue(0), nil
	}

	v, err := randomNext(vm, this, 31)
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.IntValue(v % bound), nil
}

func randomNextLong(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	hi, err := randomNext(vm, this, 32)
	if err != nil {
		return jvm.VoidValue(), err
	}
	lo, err := randomNext(vm, this, 32)
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.LongValue(int64(hi)<<32 + int64(lo)), nil
}
