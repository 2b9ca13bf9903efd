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

// class java.lang.Object
func objectProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getClass", Descriptor: "()Ljava/lang/Class;", Body: objectGetClass},
			{Name: "hashCode", Descriptor: "()I", Body: objectHashCode},
			{Name: "equals", Descriptor: "(Ljava/lang/Object;)Z", Body: objectEquals},
		},
	}
}

func objectInit(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), nil
}

func objectGetClass(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	cl, err := vm.ClassOf(this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	ref, err := vm.New("java/lang/Class", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}

	name, err := vm.NewString(cl.Name)
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(ref, "name", "Ljava/lang/String;", jvm.RefValue(name)); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.RefValue(ref), nil
}

func objectHashCode(_ *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	// handles are stable for the lifetime of the program
	return jvm.IntValue(int32(this)), nil
}

func objectEquals(_ *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.BoolValue(args[0].Ref == this), nil
}

// class java.lang.Class
func classProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "name", Descriptor: "Ljava/lang/String;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getName", Descriptor: "()Ljava/lang/String;", Body: classGetName},
		},
	}
}

func classGetName(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "name", "Ljava/lang/String;")
}

// interface java.lang.Runnable
func runnableProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "run", Descriptor: "()V"},
		},
	}
}

// class java.lang.System
func systemProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "currentTimeMillis", Descriptor: "()J", Flags: jvm.FlagStatic, Body: systemCurrentTimeMillis},
			{Name: "gc", Descriptor: "()V", Flags: jvm.FlagStatic, Body: systemGC},
			{Name: "exit", Descriptor: "(I)V", Flags: jvm.FlagStatic, Body: systemExit},
			{Name: "arraycopy", Descriptor: "(Ljava/lang/Object;ILjava/lang/Object;II)V", Flags: jvm.FlagStatic, Body: systemArraycopy},
		},
	}
}

func systemCurrentTimeMillis(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.LongValue(int64(vm.Now())), nil
}

func systemGC(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	// allocations live for the whole run
	return jvm.VoidValue(), nil
}

func systemExit(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	logger.Logf("JVM", "stub java.lang.System::exit(%d)", args[0].Int())
	return jvm.VoidValue(), nil
}

func systemArraycopy(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	src := args[0].Ref
	srcPos := int(args[1].Int())
	dst := args[2].Ref
	dstPos := int(args[3].Int())
	length := int(args[4].Int())

	values, err := vm.LoadArray(src, srcPos, length)
	if err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.VoidValue(), vm.StoreArray(dst, dstPos, values)
}

// class java.lang.Thread
func threadProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "target", Descriptor: "Ljava/lang/Runnable;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "<init>", Descriptor: "(Ljava/lang/Runnable;)V", Body: threadInitRunnable},
			{Name: "start", Descriptor: "()V", Body: threadStart},
			{Name: "run", Descriptor: "()V", Body: threadRun},
			{Name: "sleep", Descriptor: "(J)V", Flags: jvm.FlagStatic, Body: threadSleep},
			{Name: "yield", Descriptor: "()V", Flags: jvm.FlagStatic, Body: threadYield},
			{Name: "setPriority", Descriptor: "(I)V", Body: threadSetPriority},
		},
	}
}

func threadInitRunnable(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "target", "Ljava/lang/Runnable;", args[0])
}

// threadStart spawns a cooperative task that invokes the thread's run
// method (or the target Runnable's). There is no preemption; the "thread"
// runs when the spawning task reaches a suspension point.
func threadStart(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	vm.Spawn("java-thread", func(vm *jvm.JVM) error {
		target, err := vm.GetField(this, "target", "Ljava/lang/Runnable;")
		if err == nil && !target.IsNull() {
			_, err = vm.CallMethod(target.Ref, "run", "()V")
			return err
		}

		_, err = vm.CallMethod(this, "run", "()V")
		return err
	})

	return jvm.VoidValue(), nil
}

func threadRun(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), nil
}

func threadSleep(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.Sleep(uint64(args[0].Long()))
}

func threadYield(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.Sleep(0)
}

func threadSetPriority(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	logger.Logf("JVM", "stub java.lang.Thread::setPriority(%d)", args[0].Int())
	return jvm.VoidValue(), nil
}

// class java.lang.Runtime
func runtimeProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "currentRuntime", Descriptor: "Ljava/lang/Runtime;", Static: true},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getRuntime", Descriptor: "()Ljava/lang/Runtime;", Flags: jvm.FlagStatic, Body: runtimeGetRuntime},
			{Name: "totalMemory", Descriptor: "()J", Body: runtimeTotalMemory},
			{Name: "freeMemory", Descriptor: "()J", Body: runtimeFreeMemory},
			{Name: "gc", Descriptor: "()V", Body: systemGC},
		},
	}
}

// runtimeGetRuntime returns the singleton instance, creating it on first
// use.
func runtimeGetRuntime(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	v, err := vm.GetStaticField("java/lang/Runtime", "currentRuntime", "Ljava/lang/Runtime;")
	if err != nil {
		return jvm.VoidValue(), err
	}
	if !v.IsNull() {
		return v, nil
	}

	ref, err := vm.New("java/lang/Runtime", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}

	v = jvm.RefValue(ref)
	if err := vm.PutStaticField("java/lang/Runtime", "currentRuntime", "Ljava/lang/Runtime;", v); err != nil {
		return jvm.VoidValue(), err
	}

	return v, nil
}

// the memory figures are fixed until real heap accounting is wired in.
// the value matches what vendor handsets report
const reportedMemory = 0x100000

func runtimeTotalMemory(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.LongValue(reportedMemory), nil
}

func runtimeFreeMemory(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.LongValue(reportedMemory), nil
}

// the exception classes carry a message and nothing else. the throw
// machinery itself is not implemented; an uncaught exception fails the
// task

func throwableProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "message", Descriptor: "Ljava/lang/String;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Body: throwableInitMessage},
			{Name: "getMessage", Descriptor: "()Ljava/lang/String;", Body: throwableGetMessage},
			{Name: "printStackTrace", Descriptor: "()V", Body: throwablePrintStackTrace},
		},
	}
}

func throwableInitMessage(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "message", "Ljava/lang/String;", args[0])
}

func throwableGetMessage(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "message", "Ljava/lang/String;")
}

func throwablePrintStackTrace(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	cl, err := vm.ClassOf(this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	msg := ""
	if v, err := vm.GetField(this, "message", "Ljava/lang/String;"); err == nil && !v.IsNull() {
		msg, _ = vm.StringOf(v.Ref)
	}

	logger.Logf("JVM", "%s: %s", cl.Name, msg)
	return jvm.VoidValue(), nil
}

func exceptionProto() *jvm.ClassProto {
	return derivedThrowableProto()
}

func illegalArgumentExceptionProto() *jvm.ClassProto {
	return derivedExceptionProto()
}

func interruptedExceptionProto() *jvm.ClassProto {
	return derivedExceptionProto()
}

func derivedThrowableProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Throwable",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Body: throwableInitMessage},
		},
	}
}

func derivedExceptionProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Exception",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Body: throwableInitMessage},
		},
	}
}
