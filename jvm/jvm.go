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
	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/jvm/classfile"
	"github.com/wipi-emu/wipiemu/logger"
	"github.com/wipi-emu/wipiemu/scheduler"
)

// sentinel error patterns for the jvm package.
const (
	ClassNotFound  = "JVM: class not found: %s"
	NoSuchMethod   = "JVM: no such method: %s.%s%s"
	NoSuchField    = "JVM: no such field: %s.%s %s"
	BadDescriptor  = "JVM: field descriptor mismatch: %s.%s %s"
	NullPointer    = "JVM: null reference"
	NotAnArray     = "JVM: not an array reference"
	ArrayBounds    = "JVM: array index out of bounds: %d (length %d)"
	NotImplemented = "JVM: not implemented: %s"
)

// Array is the storage of an array instance.
type Array struct {
	ElemDesc string
	Elems    []Value
}

// heapSlot is one instance on the Java heap: either a class instance or
// an array.
type heapSlot struct {
	class  *Class
	fields map[fieldKey]Value
	array  *Array
}

// ProtoTable resolves a fully qualified class name to a built-in class
// prototype. Supplied by the facade class package.
type ProtoTable func(name string) (*ClassProto, bool)

// JVM is the Java runtime: class loader, heap and dispatcher in one.
// Host methods receive it as their context argument and may call back
// into it freely.
type JVM struct {
	classes map[string]*Class
	heap    []heapSlot

	protos ProtoTable
	bck    *backend.Backend
	sch    *scheduler.Scheduler

	// the task currently executing Java code
	task *scheduler.Task
}

// NewJVM is the preferred method of initialisation for the JVM type.
func NewJVM(protos ProtoTable, bck *backend.Backend, sch *scheduler.Scheduler) *JVM {
	return &JVM{
		classes: make(map[string]*Class),
		heap:    make([]heapSlot, 1), // index 0 is the null reference
		protos:  protos,
		bck:     bck,
		sch:     sch,
	}
}

// Backend returns the platform backend.
func (vm *JVM) Backend() *backend.Backend {
	return vm.bck
}

// SetTask declares the task currently executing Java code.
func (vm *JVM) SetTask(t *scheduler.Task) {
	vm.task = t
}

// Spawn queues a new cooperative task that invokes the supplied function.
func (vm *JVM) Spawn(name string, fn func(vm *JVM) error) *scheduler.Task {
	return vm.sch.Spawn(name, func(t *scheduler.Task) error {
		prev := vm.task
		vm.task = t
		defer func() { vm.task = prev }()
		return fn(vm)
	})
}

// Sleep suspends the current task for the supplied number of ticks.
func (vm *JVM) Sleep(ticks uint64) error {
	if vm.task == nil {
		return nil
	}
	return vm.task.SleepFor(ticks)
}

// Now returns the emulation clock.
func (vm *JVM) Now() uint64 {
	return vm.sch.Now()
}

// LoadClass resolves a fully qualified class name ("java/lang/Object").
// Resolution is two-tier: built-in prototypes first, then class files
// from the application archive.
func (vm *JVM) LoadClass(name string) (*Class, error) {
	if cl, ok := vm.classes[name]; ok {
		return cl, nil
	}

	if proto, ok := vm.protos(name); ok {
		cl, err := vm.classFromProto(name, proto)
		if err != nil {
			return nil, err
		}
		vm.classes[name] = cl
		return cl, nil
	}

	if vm.bck != nil && vm.bck.Resources != nil {
		if data, err := vm.bck.Resources.Data(name + ".class"); err == nil {
			cf, err := classfile.Parse(data)
			if err != nil {
				return nil, err
			}
			cl, err := vm.classFromFile(cf)
			if err != nil {
				return nil, err
			}
			vm.classes[name] = cl
			return cl, nil
		}
	}

	return nil, curated.Errorf(ClassNotFound, name)
}

// LoadClassData parses a class file and registers the class under the
// name it declares.
func (vm *JVM) LoadClassData(data []byte) (*Class, error) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, err
	}

	cl, err := vm.classFromFile(cf)
	if err != nil {
		return nil, err
	}

	vm.classes[cl.Name] = cl
	return cl, nil
}

func (vm *JVM) classFromProto(name string, proto *ClassProto) (*Class, error) {
	cl := &Class{
		Name:       name,
		Interfaces: proto.Interfaces,
		Fields:     proto.Fields,
		statics:    make(map[fieldKey]Value),
	}

	if proto.Parent != "" {
		super, err := vm.LoadClass(proto.Parent)
		if err != nil {
			return nil, err
		}
		cl.Super = super
	}

	for _, mp := range proto.Methods {
		cl.Methods = append(cl.Methods, &Method{
			Name:       mp.Name,
			Descriptor: mp.Descriptor,
			Flags:      mp.Flags,
			Host:       mp.Body,
			class:      cl,
		})
	}

	for _, f := range proto.Fields {
		if f.Static {
			cl.statics[fieldKey{name: f.Name, desc: f.Descriptor}] = defaultValue(f.Descriptor)
		}
	}

	return cl, nil
}

func (vm *JVM) classFromFile(cf *classfile.ClassFile) (*Class, error) {
	cl := &Class{
		Name:       cf.Name,
		Interfaces: cf.Interfaces,
		statics:    make(map[fieldKey]Value),
		file:       cf,
	}

	if cf.SuperName != "" {
		super, err := vm.LoadClass(cf.SuperName)
		if err != nil {
			return nil, err
		}
		cl.Super = super
	}

	for i := range cf.Methods {
		m := &cf.Methods[i]
		cl.Methods = append(cl.Methods, &Method{
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Flags:      MethodFlags(m.AccessFlags) & (FlagStatic | FlagNative),
			Code:       m,
			class:      cl,
		})
	}

	for _, f := range cf.Fields {
		static := f.AccessFlags&classfile.AccStatic == classfile.AccStatic
		cl.Fields = append(cl.Fields, FieldProto{
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Static:     static,
		})
		if static {
			cl.statics[fieldKey{name: f.Name, desc: f.Descriptor}] = defaultValue(f.Descriptor)
		}
	}

	return cl, nil
}

// Instantiate allocates an instance of the named class with fields set
// to their type default values. No constructor is run; see New().
func (vm *JVM) Instantiate(name string) (Ref, error) {
	cl, err := vm.LoadClass(name)
	if err != nil {
		return 0, err
	}

	ref := Ref(len(vm.heap))
	vm.heap = append(vm.heap, heapSlot{
		class:  cl,
		fields: make(map[fieldKey]Value),
	})

	for c := cl; c != nil; c = c.Super {
		for _, f := range c.Fields {
			if !f.Static {
				vm.heap[ref].fields[fieldKey{name: f.Name, desc: f.Descriptor}] = defaultValue(f.Descriptor)
			}
		}
	}

	return ref, nil
}

// New allocates an instance and runs the constructor selected by the
// supplied descriptor.
func (vm *JVM) New(name string, desc string, args ...Value) (Ref, error) {
	ref, err := vm.Instantiate(name)
	if err != nil {
		return 0, err
	}

	if _, err := vm.CallMethod(ref, "<init>", desc, args...); err != nil {
		return 0, err
	}

	return ref, nil
}

// InstantiateArray allocates an array with zero-initialised element
// storage.
func (vm *JVM) InstantiateArray(elemDesc string, count int) (Ref, error) {
	elems := make([]Value, count)
	for i := range elems {
		elems[i] = defaultValue(elemDesc)
	}

	ref := Ref(len(vm.heap))
	vm.heap = append(vm.heap, heapSlot{
		array: &Array{ElemDesc: elemDesc, Elems: elems},
	})

	return ref, nil
}

// ClassOf returns the class of an instance.
func (vm *JVM) ClassOf(ref Ref) (*Class, error) {
	slot, err := vm.slot(ref)
	if err != nil {
		return nil, err
	}
	if slot.class == nil {
		return nil, curated.Errorf(NotAnArray)
	}
	return slot.class, nil
}

// IsArray returns true if the reference is an array instance.
func (vm *JVM) IsArray(ref Ref) bool {
	slot, err := vm.slot(ref)
	return err == nil && slot.array != nil
}

func (vm *JVM) slot(ref Ref) (*heapSlot, error) {
	if ref <= 0 || int(ref) >= len(vm.heap) {
		return nil, curated.Errorf(NullPointer)
	}
	return &vm.heap[ref], nil
}

// resolveMethod searches the class and then the parent chain for a
// method matching both name and descriptor.
func (vm *JVM) resolveMethod(cl *Class, name string, desc string) (*Method, error) {
	for c := cl; c != nil; c = c.Super {
		if m := c.method(name, desc); m != nil {
			return m, nil
		}
	}
	return nil, curated.Errorf(NoSuchMethod, cl.Name, name, desc)
}

// CallMethod invokes a method on an instance. Overloading is resolved by
// descriptor, not name alone.
func (vm *JVM) CallMethod(ref Ref, name string, desc string, args ...Value) (Value, error) {
	cl, err := vm.ClassOf(ref)
	if err != nil {
		return VoidValue(), err
	}

	m, err := vm.resolveMethod(cl, name, desc)
	if err != nil {
		return VoidValue(), err
	}

	return vm.invoke(m, ref, args)
}

// CallSpecial invokes a method resolved against a named class rather
// than the instance's own class. Used for constructor chaining and
// super calls.
func (vm *JVM) CallSpecial(ref Ref, className string, name string, desc string, args ...Value) (Value, error) {
	cl, err := vm.LoadClass(className)
	if err != nil {
		return VoidValue(), err
	}

	m, err := vm.resolveMethod(cl, name, desc)
	if err != nil {
		return VoidValue(), err
	}

	return vm.invoke(m, ref, args)
}

// CallStaticMethod invokes a static method on the named class.
func (vm *JVM) CallStaticMethod(className string, name string, desc string, args ...Value) (Value, error) {
	cl, err := vm.LoadClass(className)
	if err != nil {
		return VoidValue(), err
	}

	m, err := vm.resolveMethod(cl, name, desc)
	if err != nil {
		return VoidValue(), err
	}

	return vm.invoke(m, 0, args)
}

func (vm *JVM) invoke(m *Method, this Ref, args []Value) (Value, error) {
	if m.Host != nil {
		return m.Host(vm, this, args)
	}
	if m.Code != nil && m.Code.Code != nil {
		return vm.interpret(m, this, args)
	}

	// a prototype method with no body. log and return the type default,
	// mirroring how unimplemented WIPI-C slots behave
	logger.Logf("JVM", "unimplemented method: %s.%s%s", m.class.Name, m.Name, m.Descriptor)
	return defaultValue(returnDescriptor(m.Descriptor)), nil
}

// GetField reads an instance field. Field identity is (name,
// descriptor).
func (vm *JVM) GetField(ref Ref, name string, desc string) (Value, error) {
	slot, err := vm.slot(ref)
	if err != nil {
		return VoidValue(), err
	}
	if slot.class == nil {
		return VoidValue(), curated.Errorf(NotAnArray)
	}

	v, ok := slot.fields[fieldKey{name: name, desc: desc}]
	if !ok {
		return VoidValue(), curated.Errorf(NoSuchField, slot.class.Name, name, desc)
	}
	return v, nil
}

// PutField writes an instance field. A write with a descriptor the class
// does not declare is an error.
func (vm *JVM) PutField(ref Ref, name string, desc string, v Value) error {
	slot, err := vm.slot(ref)
	if err != nil {
		return err
	}
	if slot.class == nil {
		return curated.Errorf(NotAnArray)
	}

	if !slot.class.fieldDeclared(name, desc) {
		return curated.Errorf(BadDescriptor, slot.class.Name, name, desc)
	}

	slot.fields[fieldKey{name: name, desc: desc}] = v
	return nil
}

// GetStaticField reads a static field of the named class.
func (vm *JVM) GetStaticField(className string, name string, desc string) (Value, error) {
	cl, err := vm.LoadClass(className)
	if err != nil {
		return VoidValue(), err
	}

	for c := cl; c != nil; c = c.Super {
		if v, ok := c.statics[fieldKey{name: name, desc: desc}]; ok {
			return v, nil
		}
	}

	return VoidValue(), curated.Errorf(NoSuchField, className, name, desc)
}

// PutStaticField writes a static field of the named class.
func (vm *JVM) PutStaticField(className string, name string, desc string, v Value) error {
	cl, err := vm.LoadClass(className)
	if err != nil {
		return err
	}

	for c := cl; c != nil; c = c.Super {
		if _, ok := c.statics[fieldKey{name: name, desc: desc}]; ok {
			c.statics[fieldKey{name: name, desc: desc}] = v
			return nil
		}
	}

	return curated.Errorf(NoSuchField, className, name, desc)
}

// ArrayLength returns the element count of an array instance.
func (vm *JVM) ArrayLength(ref Ref) (int, error) {
	slot, err := vm.slot(ref)
	if err != nil {
		return 0, err
	}
	if slot.array == nil {
		return 0, curated.Errorf(NotAnArray)
	}
	return len(slot.array.Elems), nil
}

// LoadArray reads count elements starting at offset.
func (vm *JVM) LoadArray(ref Ref, offset int, count int) ([]Value, error) {
	slot, err := vm.slot(ref)
	if err != nil {
		return nil, err
	}
	if slot.array == nil {
		return nil, curated.Errorf(NotAnArray)
	}
	if offset < 0 || offset+count > len(slot.array.Elems) {
		return nil, curated.Errorf(ArrayBounds, offset+count, len(slot.array.Elems))
	}

	out := make([]Value, count)
	copy(out, slot.array.Elems[offset:])
	return out, nil
}

// StoreArray writes elements starting at offset.
func (vm *JVM) StoreArray(ref Ref, offset int, values []Value) error {
	slot, err := vm.slot(ref)
	if err != nil {
		return err
	}
	if slot.array == nil {
		return curated.Errorf(NotAnArray)
	}
	if offset < 0 || offset+len(values) > len(slot.array.Elems) {
		return curated.Errorf(ArrayBounds, offset+len(values), len(slot.array.Elems))
	}

	copy(slot.array.Elems[offset:], values)
	return nil
}

// LoadArrayElement reads one element.
func (vm *JVM) LoadArrayElement(ref Ref, idx int) (Value, error) {
	v, err := vm.LoadArray(ref, idx, 1)
	if err != nil {
		return VoidValue(), err
	}
	return v[0], nil
}

// StoreArrayElement writes one element.
func (vm *JVM) StoreArrayElement(ref Ref, idx int, v Value) error {
	return vm.StoreArray(ref, idx, []Value{v})
}

// LoadByteArray is a convenience over LoadArray for byte arrays.
func (vm *JVM) LoadByteArray(ref Ref, offset int, count int) ([]byte, error) {
	values, err := vm.LoadArray(ref, offset, count)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(values))
	for i, v := range values {
		b[i] = byte(v.I)
	}
	return b, nil
}

// StoreByteArray is a convenience over StoreArray for byte arrays.
func (vm *JVM) StoreByteArray(ref Ref, offset int, data []byte) error {
	values := make([]Value, len(data))
	for i, b := range data {
		values[i] = ByteValue(int8(b))
	}
	return vm.StoreArray(ref, offset, values)
}

// NewString creates a java/lang/String instance with the supplied
// content.
func (vm *JVM) NewString(s string) (Ref, error) {
	units := utf16Encode(s)

	array, err := vm.InstantiateArray("C", len(units))
	if err != nil {
		return 0, err
	}
	for i, u := range units {
		if err := vm.StoreArrayElement(array, i, CharValue(u)); err != nil {
			return 0, err
		}
	}

	return vm.New("java/lang/String", "([C)V", RefValue(array))
}

// StringOf extracts the content of a java/lang/String instance.
func (vm *JVM) StringOf(ref Ref) (string, error) {
	v, err := vm.GetField(ref, "value", "[C")
	if err != nil {
		return "", err
	}
	if v.IsNull() {
		return "", nil
	}

	length, err := vm.ArrayLength(v.Ref)
	if err != nil {
		return "", err
	}

	values, err := vm.LoadArray(v.Ref, 0, length)
	if err != nil {
		return "", err
	}

	units := make([]uint16, len(values))
	for i, u := range values {
		units[i] = u.Char()
	}

	return utf16Decode(units), nil
}
