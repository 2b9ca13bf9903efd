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
	"encoding/binary"

	"github.com/wipi-emu/wipiemu/curated"
)

// sentinel error patterns for the bytecode interpreter.
const (
	BadOpcode         = "JVM: unsupported opcode %02x in %s.%s"
	UncaughtException = "JVM: uncaught exception: %s"
)

// frame is the execution state of one bytecode method invocation.
type frame struct {
	vm     *JVM
	m      *Method
	locals []Value
	stack  []Value
	pc     int
}

func (f *frame) push(v Value) {
	f.stack = append(f.stack, v)
}

func (f *frame) pop() Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

func (f *frame) peek() Value {
	return f.stack[len(f.stack)-1]
}

func (f *frame) u1() uint8 {
	v := f.m.Code.Code[f.pc]
	f.pc++
	return v
}

func (f *frame) u2() uint16 {
	v := binary.BigEndian.Uint16(f.m.Code.Code[f.pc:])
	f.pc += 2
	return v
}

func (f *frame) s2() int16 {
	return int16(f.u2())
}

func (f *frame) s4() int32 {
	v := binary.BigEndian.Uint32(f.m.Code.Code[f.pc:])
	f.pc += 4
	return int32(v)
}

// setLocal stores a value in a local variable slot. a wide value is
// stored whole in the addressed slot; the slot after it, which a wide
// value also takes up in the local variable numbering, is not written.
func (f *frame) setLocal(idx int, v Value) {
	f.locals[idx] = v
}

// interpret runs a bytecode method to completion.
func (vm *JVM) interpret(m *Method, this Ref, args []Value) (Value, error) {
	f := &frame{
		vm:     vm,
		m:      m,
		locals: make([]Value, m.Code.MaxLocals+2),
	}

	// load arguments into the local variable slots. wide arguments
	// occupy two slots
	idx := 0
	if !m.IsStatic() {
		f.setLocal(idx, RefValue(this))
		idx++
	}
	for _, a := range args {
		f.setLocal(idx, a)
		idx++
		if a.Wide() {
			idx++
		}
	}

	return f.run()
}

func (f *frame) run() (Value, error) {
	cf := f.m.class.file

	for {
		opcodePC := f.pc
		op := f.u1()

		switch op {
		case 0x00: // nop

		case 0x01: // aconst_null
			f.push(NullValue())
		case 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08: // iconst_m1 .. iconst_5
			f.push(IntValue(int32(op) - 3))
		case 0x09, 0x0a: // lconst_0, lconst_1
			f.push(LongValue(int64(op) - 9))
		case 0x0b, 0x0c, 0x0d: // fconst_0, fconst_1, fconst_2
			f.push(FloatValue(float32(op) - 0x0b))
		case 0x0e, 0x0f: // dconst_0, dconst_1
			f.push(DoubleValue(float64(op) - 0x0e))

		case 0x10: // bipush
			f.push(IntValue(int32(int8(f.u1()))))
		case 0x11: // sipush
			f.push(IntValue(int32(f.s2())))

		case 0x12: // ldc
			if err := f.ldc(uint16(f.u1())); err != nil {
				return VoidValue(), err
			}
		case 0x13, 0x14: // ldc_w, ldc2_w
			if err := f.ldc(f.u2()); err != nil {
				return VoidValue(), err
			}

		case 0x15, 0x16, 0x17, 0x18, 0x19: // iload, lload, fload, dload, aload
			f.push(f.locals[f.u1()])
		case 0x1a, 0x1b, 0x1c, 0x1d: // iload_0 .. iload_3
			f.push(f.locals[op-0x1a])
		case 0x1e, 0x1f, 0x20, 0x21: // lload_0 .. lload_3
			f.push(f.locals[op-0x1e])
		case 0x22, 0x23, 0x24, 0x25: // fload_0 .. fload_3
			f.push(f.locals[op-0x22])
		case 0x26, 0x27, 0x28, 0x29: // dload_0 .. dload_3
			f.push(f.locals[op-0x26])
		case 0x2a, 0x2b, 0x2c, 0x2d: // aload_0 .. aload_3
			f.push(f.locals[op-0x2a])

		case 0x2e, 0x2f, 0x30, 0x31, 0x32, 0x33, 0x34, 0x35: // iaload .. saload
			idx := f.pop().Int()
			array := f.pop()
			if array.IsNull() {
				return VoidValue(), curated.Errorf(NullPointer)
			}
			v, err := f.vm.LoadArrayElement(array.Ref, int(idx))
			if err != nil {
				return VoidValue(), err
			}
			f.push(v)

		case 0x36, 0x37, 0x38, 0x39, 0x3a: // istore, lstore, fstore, dstore, astore
			f.setLocal(int(f.u1()), f.pop())
		case 0x3b, 0x3c, 0x3d, 0x3e: // istore_0 .. istore_3
			f.setLocal(int(op-0x3b), f.pop())
		case 0x3f, 0x40, 0x41, 0x42: // lstore_0 .. lstore_3
			f.setLocal(int(op-0x3f), f.pop())
		case 0x43, 0x44, 0x45, 0x46: // fstore_0 .. fstore_3
			f.setLocal(int(op-0x43), f.pop())
		case 0x47, 0x48, 0x49, 0x4a: // dstore_0 .. dstore_3
			f.setLocal(int(op-0x47), f.pop())
		case 0x4b, 0x4c, 0x4d, 0x4e: // astore_0 .. astore_3
			f.setLocal(int(op-0x4b), f.pop())

		case 0x4f, 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56: // iastore .. sastore
			v := f.pop()
			idx := f.pop().Int()
			array := f.pop()
			if array.IsNull() {
				return VoidValue(), curated.Errorf(NullPointer)
			}
			if err := f.vm.StoreArrayElement(array.Ref, int(idx), v); err != nil {
				return VoidValue(), err
			}

		case 0x57: // pop
			f.pop()
		case 0x58: // pop2
			if !f.pop().Wide() {
				f.pop()
			}
		case 0x59: // dup
			f.push(f.peek())
		case 0x5a: // dup_x1
			a := f.pop()
			b := f.pop()
			f.push(a)
			f.push(b)
			f.push(a)
		case 0x5b: // dup_x2
			a := f.pop()
			b := f.pop()
			if b.Wide() {
				f.push(a)
				f.push(b)
				f.push(a)
			} else {
				c := f.pop()
				f.push(a)
				f.push(c)
				f.push(b)
				f.push(a)
			}
		case 0x5c: // dup2
			a := f.pop()
			if a.Wide() {
				f.push(a)
				f.push(a)
			} else {
				b := f.pop()
				f.push(b)
				f.push(a)
				f.push(b)
				f.push(a)
			}
		case 0x5f: // swap
			a := f.pop()
			b := f.pop()
			f.push(a)
			f.push(b)

		case 0x60: // iadd
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a + b))
		case 0x61: // ladd
			b, a := f.pop().Long(), f.pop().Long()
			f.push(LongValue(a + b))
		case 0x64: // isub
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a - b))
		case 0x65: // lsub
			b, a := f.pop().Long(), f.pop().Long()
			f.push(LongValue(a - b))
		case 0x68: // imul
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a * b))
		case 0x69: // lmul
			b, a := f.pop().Long(), f.pop().Long()
			f.push(LongValue(a * b))
		case 0x6c: // idiv
			b, a := f.pop().Int(), f.pop().Int()
			if b == 0 {
				return VoidValue(), curated.Errorf(UncaughtException, "java/lang/ArithmeticException")
			}
			f.push(IntValue(a / b))
		case 0x6d: // ldiv
			b, a := f.pop().Long(), f.pop().Long()
			if b == 0 {
				return VoidValue(), curated.Errorf(UncaughtException, "java/lang/ArithmeticException")
			}
			f.push(LongValue(a / b))
		case 0x70: // irem
			b, a := f.pop().Int(), f.pop().Int()
			if b == 0 {
				return VoidValue(), curated.Errorf(UncaughtException, "java/lang/ArithmeticException")
			}
			f.push(IntValue(a % b))
		case 0x74: // ineg
			f.push(IntValue(-f.pop().Int()))
		case 0x78: // ishl
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a << (uint32(b) & 0x1f)))
		case 0x7a: // ishr
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a >> (uint32(b) & 0x1f)))
		case 0x7c: // iushr
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(int32(uint32(a) >> (uint32(b) & 0x1f))))
		case 0x7e: // iand
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a & b))
		case 0x80: // ior
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a | b))
		case 0x82: // ixor
			b, a := f.pop().Int(), f.pop().Int()
			f.push(IntValue(a ^ b))

		case 0x84: // iinc
			idx := int(f.u1())
			inc := int32(int8(f.u1()))
			f.locals[idx] = IntValue(f.locals[idx].Int() + inc)

		case 0x85: // i2l
			f.push(LongValue(int64(f.pop().Int())))
		case 0x88: // l2i
			f.push(IntValue(int32(f.pop().Long())))
		case 0x91: // i2b
			f.push(IntValue(int32(int8(f.pop().Int()))))
		case 0x92: // i2c
			f.push(IntValue(int32(uint16(f.pop().Int()))))
		case 0x93: // i2s
			f.push(IntValue(int32(int16(f.pop().Int()))))

		case 0x94: // lcmp
			b, a := f.pop().Long(), f.pop().Long()
			switch {
			case a < b:
				f.push(IntValue(-1))
			case a > b:
				f.push(IntValue(1))
			default:
				f.push(IntValue(0))
			}

		case 0x99, 0x9a, 0x9b, 0x9c, 0x9d, 0x9e: // ifeq .. ifle
			target := opcodePC + int(f.s2())
			v := f.pop().Int()
			jump := false
			switch op {
			case 0x99:
				jump = v == 0
			case 0x9a:
				jump = v != 0
			case 0x9b:
				jump = v < 0
			case 0x9c:
				jump = v >= 0
			case 0x9d:
				jump = v > 0
			case 0x9e:
				jump = v <= 0
			}
			if jump {
				f.pc = target
			}

		case 0x9f, 0xa0, 0xa1, 0xa2, 0xa3, 0xa4: // if_icmpeq .. if_icmple
			target := opcodePC + int(f.s2())
			b, a := f.pop().Int(), f.pop().Int()
			jump := false
			switch op {
			case 0x9f:
				jump = a == b
			case 0xa0:
				jump = a != b
			case 0xa1:
				jump = a < b
			case 0xa2:
				jump = a >= b
			case 0xa3:
				jump = a > b
			case 0xa4:
				jump = a <= b
			}
			if jump {
				f.pc = target
			}

		case 0xa5, 0xa6: // if_acmpeq, if_acmpne
			target := opcodePC + int(f.s2())
			b, a := f.pop().Ref, f.pop().Ref
			if (op == 0xa5) == (a == b) {
				f.pc = target
			}

		case 0xa7: // goto
			f.pc = opcodePC + int(f.s2())

		case 0xaa: // tableswitch
			f.pc = (f.pc + 3) &^ 0x03
			def := int(f.s4())
			low := f.s4()
			high := f.s4()
			v := f.pop().Int()
			if v < low || v > high {
				f.pc = opcodePC + def
			} else {
				f.pc += int(v-low) * 4
				f.pc = opcodePC + int(f.s4())
			}

		case 0xab: // lookupswitch
			f.pc = (f.pc + 3) &^ 0x03
			def := int(f.s4())
			npairs := int(f.s4())
			v := f.pop().Int()
			target := def
			for i := 0; i < npairs; i++ {
				match := f.s4()
				offset := int(f.s4())
				if match == v {
					target = offset
					break
				}
			}
			f.pc = opcodePC + target

		case 0xac, 0xad, 0xae, 0xaf, 0xb0: // ireturn, lreturn, freturn, dreturn, areturn
			return f.pop(), nil
		case 0xb1: // return
			return VoidValue(), nil

		case 0xb2: // getstatic
			class, name, desc := cf.Ref(f.u2())
			v, err := f.vm.GetStaticField(class, name, desc)
			if err != nil {
				return VoidValue(), err
			}
			f.push(v)
		case 0xb3: // putstatic
			class, name, desc := cf.Ref(f.u2())
			if err := f.vm.PutStaticField(class, name, desc, f.pop()); err != nil {
				return VoidValue(), err
			}
		case 0xb4: // getfield
			_, name, desc := cf.Ref(f.u2())
			this := f.pop()
			if this.IsNull() {
				return VoidValue(), curated.Errorf(NullPointer)
			}
			v, err := f.vm.GetField(this.Ref, name, desc)
			if err != nil {
				return VoidValue(), err
			}
			f.push(v)
		case 0xb5: // putfield
			_, name, desc := cf.Ref(f.u2())
			v := f.pop()
			this := f.pop()
			if this.IsNull() {
				return VoidValue(), curated.Errorf(NullPointer)
			}
			if err := f.vm.PutField(this.Ref, name, desc, v); err != nil {
				return VoidValue(), err
			}

		case 0xb6, 0xb7, 0xb8, 0xb9: // invokevirtual, invokespecial, invokestatic, invokeinterface
			class, name, desc := cf.Ref(f.u2())
			if op == 0xb9 {
				f.u2() // count and reserved byte
			}

			nargs := len(argumentDescriptors(desc))
			args := make([]Value, nargs)
			for i := nargs - 1; i >= 0; i-- {
				args[i] = f.pop()
			}

			var result Value
			var err error

			switch op {
			case 0xb8:
				result, err = f.vm.CallStaticMethod(class, name, desc, args...)
			case 0xb7:
				this := f.pop()
				if this.IsNull() {
					return VoidValue(), curated.Errorf(NullPointer)
				}
				result, err = f.vm.CallSpecial(this.Ref, class, name, desc, args...)
			default:
				this := f.pop()
				if this.IsNull() {
					return VoidValue(), curated.Errorf(NullPointer)
				}
				result, err = f.vm.CallMethod(this.Ref, name, desc, args...)
			}
			if err != nil {
				return VoidValue(), err
			}

			if returnDescriptor(desc) != "V" {
				f.push(result)
			}

		case 0xbb: // new
			name := cf.ClassName(f.u2())
			ref, err := f.vm.Instantiate(name)
			if err != nil {
				return VoidValue(), err
			}
			f.push(RefValue(ref))

		case 0xbc: // newarray
			atype := f.u1()
			count := f.pop().Int()
			descs := map[uint8]string{
				4: "Z", 5: "C", 6: "F", 7: "D", 8: "B", 9: "S", 10: "I", 11: "J",
			}
			ref, err := f.vm.InstantiateArray(descs[atype], int(count))
			if err != nil {
				return VoidValue(), err
			}
			f.push(RefValue(ref))

		case 0xbd: // anewarray
			name := cf.ClassName(f.u2())
			count := f.pop().Int()
			ref, err := f.vm.InstantiateArray("L"+name+";", int(count))
			if err != nil {
				return VoidValue(), err
			}
			f.push(RefValue(ref))

		case 0xbe: // arraylength
			array := f.pop()
			if array.IsNull() {
				return VoidValue(), curated.Errorf(NullPointer)
			}
			length, err := f.vm.ArrayLength(array.Ref)
			if err != nil {
				return VoidValue(), err
			}
			f.push(IntValue(int32(length)))

		case 0xbf: // athrow
			ex := f.pop()
			name := "java/lang/Throwable"
			if !ex.IsNull() {
				if cl, err := f.vm.ClassOf(ex.Ref); err == nil {
					name = cl.Name
				}
			}
			// exception handling is not implemented. an uncaught
			// exception fails the current task
			return VoidValue(), curated.Errorf(UncaughtException, name)

		case 0xc0: // checkcast
			f.u2()
		case 0xc1: // instanceof
			name := cf.ClassName(f.u2())
			v := f.pop()
			r := false
			if !v.IsNull() {
				if cl, err := f.vm.ClassOf(v.Ref); err == nil {
					r = cl.IsSubclassOf(name)
				} else if f.vm.IsArray(v.Ref) {
					r = name == "java/lang/Object"
				}
			}
			f.push(BoolValue(r))

		case 0xc2, 0xc3: // monitorenter, monitorexit
			// there is only one thread of execution
			f.pop()

		case 0xc6: // ifnull
			target := opcodePC + int(f.s2())
			if f.pop().IsNull() {
				f.pc = target
			}
		case 0xc7: // ifnonnull
			target := opcodePC + int(f.s2())
			if !f.pop().IsNull() {
				f.pc = target
			}

		case 0xc8: // goto_w
			f.pc = opcodePC + int(f.s4())

		default:
			return VoidValue(), curated.Errorf(BadOpcode, op, f.m.class.Name, f.m.Name)
		}
	}
}

// ldc pushes a constant pool entry onto the operand stack.
func (f *frame) ldc(idx uint16) error {
	cf := f.m.class.file
	c := cf.Pool[idx]

	switch c.Tag {
	case 3: // integer
		f.push(IntValue(int32(c.Value)))
	case 4: // float
		f.push(FloatValue(c.Float()))
	case 5: // long
		f.push(LongValue(c.Value))
	case 6: // double
		f.push(DoubleValue(c.Double()))
	case 8: // string
		ref, err := f.vm.NewString(cf.UTF8(c.Index1))
		if err != nil {
			return err
		}
		f.push(RefValue(ref))
	default:
		return curated.Errorf(BadOpcode, 0x12, f.m.class.Name, f.m.Name)
	}

	return nil
}
