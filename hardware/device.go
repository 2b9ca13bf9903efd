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

// Package hardware assembles one emulated device: the ARM core and its
// guest memory, the heap allocator, the WIPI-C bridge, the Java runtime
// and the cooperative scheduler, all connected to one platform backend.
//
// The package also owns the application start sequence for both
// application forms. An ARM form archive is loaded at the image base and
// entered through the WIPI runtime's published start thunk; a Java form
// archive is entered through the Jlet startApp convention.
package hardware

import (
	"github.com/wipi-emu/wipiemu/archive"
	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/hardware/arm"
	"github.com/wipi-emu/wipiemu/hardware/arm/allocator"
	"github.com/wipi-emu/wipiemu/jvm"
	"github.com/wipi-emu/wipiemu/logger"
	"github.com/wipi-emu/wipiemu/scheduler"
	"github.com/wipi-emu/wipiemu/wipic"
	"github.com/wipi-emu/wipiemu/wipijava"
)

// sentinel error patterns for the hardware package.
const (
	InitFailed = "device: wipi init failed with code %#x"
)

// ExeHeader is the structure returned by the WIPI runtime's start thunk.
// The published contract is two entries: the init function to call
// before anything else, and the application's name table.
type ExeHeader struct {
	FnInit uint32
	FnName uint32
}

// Device is one emulated handset running one application.
type Device struct {
	Scheduler *scheduler.Scheduler
	Backend   *backend.Backend

	Core   *arm.ARM
	Heap   *allocator.Allocator
	Bridge *wipic.Bridge
	VM     *jvm.JVM

	arc *archive.Archive

	// the name of the Jlet main class. defaults to the archive's guess
	MainClass string
}

// NewDevice is the preferred method of initialisation for the Device
// type.
func NewDevice(arc *archive.Archive, bck *backend.Backend) *Device {
	sch := scheduler.NewScheduler()
	bck.Now = sch.Now

	mem := arm.NewMemory()
	core := arm.NewARM(mem)
	heap := allocator.NewAllocator(arm.HeapBase, arm.HeapSize)

	dev := &Device{
		Scheduler: sch,
		Backend:   bck,
		Core:      core,
		Heap:      heap,
		Bridge:    wipic.NewBridge(core, heap, bck, sch),
		VM:        jvm.NewJVM(wipijava.Protos, bck, sch),
		arc:       arc,
		MainClass: arc.MainClass(),
	}

	return dev
}

// Start queues the application's start task. Run() drives it.
func (dev *Device) Start() error {
	switch dev.arc.Form() {
	case archive.FormARM:
		dev.Scheduler.Spawn("app", dev.startARM)
	case archive.FormJava:
		dev.Scheduler.Spawn("app", dev.startJava)
	}

	return nil
}

// Run drives the scheduler until no task is runnable. Returns the first
// fatal task error.
func (dev *Device) Run() error {
	return dev.Scheduler.Run()
}

// CrashDump returns a register and stack rendering for fault reports.
func (dev *Device) CrashDump() string {
	return dev.Core.DumpRegStack(arm.ImageBase)
}

// startARM is the ARM form entry sequence: load the binary, publish the
// kernel interface, call the start thunk for the wipi_exe header, call
// init and require a zero result, then enter the Jlet.
func (dev *Device) startARM(t *scheduler.Task) error {
	data, bss := dev.arc.Binary()

	if err := dev.Core.Load(data, arm.ImageBase, len(data)+bss); err != nil {
		return err
	}
	logger.Logf("device", "loaded at %#x, size %#x, bss %#x", arm.ImageBase, len(data), bss)

	// guest execution yields through the current task
	dev.bindTask(t)

	kernel, err := dev.Bridge.InstallKernelInterface()
	if err != nil {
		return err
	}

	// the start thunk at the image base receives the kernel interface
	// table and returns the wipi_exe pointer
	wipiExe, err := dev.Core.RunFunction(arm.ImageBase, kernel)
	if err != nil {
		return err
	}
	logger.Logf("device", "got wipi_exe %#x", wipiExe)

	hdr, err := arm.ReadGeneric[ExeHeader](dev.Core.Memory(), wipiExe)
	if err != nil {
		return err
	}
	logger.Logf("device", "call wipi init at %#x", hdr.FnInit)

	result, err := dev.Core.RunFunction(hdr.FnInit)
	if err != nil {
		return err
	}
	if result != 0 {
		return curated.Errorf(InitFailed, result)
	}

	// ARM form archives don't always ship class files. without a main
	// class the application is driven by its own runtime and timers
	if dev.MainClass == "" {
		logger.Log("device", "no Jlet main class in archive")
		return nil
	}

	return wipijava.StartJlet(dev.VM, dev.MainClass)
}

// startJava is the Java form entry sequence.
func (dev *Device) startJava(t *scheduler.Task) error {
	dev.bindTask(t)
	return wipijava.StartJlet(dev.VM, dev.MainClass)
}

// bindTask connects the supplied task to the components that need to
// suspend: the bridge (for timers and sleeps) and the ARM core's yield
// hook (so that long guest executions don't starve the queue).
//
// The yield hook asks the bridge for the task currently executing guest
// code rather than capturing this one: timer callbacks run guest code
// on their own tasks.
func (dev *Device) bindTask(t *scheduler.Task) {
	dev.Bridge.SetTask(t)
	dev.VM.SetTask(t)
	dev.Core.YieldHook = func() {
		if cur := dev.Bridge.Task(); cur != nil {
			// a cancelled task surfaces the error at the next
			// explicit suspension point
			_ = cur.Yield()
		}
	}
}
