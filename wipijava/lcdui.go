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
	"strings"

	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/jvm"
	"github.com/wipi-emu/wipiemu/logger"
)

// sentinel error patterns for the facade classes.
const (
	NoStartApp = "wipijava: %s has no startApp method"
)

// class org.kwis.msp.lcdui.Jlet
//
// the Jlet is the application's main entry class, analogous to a MIDlet.
func jletProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "activeJlet", Descriptor: "Lorg/kwis/msp/lcdui/Jlet;", Static: true},
			{Name: "eventQueue", Descriptor: "Lorg/kwis/msp/lcdui/EventQueue;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: jletInit},
			{Name: "getActiveJlet", Descriptor: "()Lorg/kwis/msp/lcdui/Jlet;", Flags: jvm.FlagStatic, Body: jletGetActiveJlet},
			{Name: "getEventQueue", Descriptor: "()Lorg/kwis/msp/lcdui/EventQueue;", Body: jletGetEventQueue},
			{Name: "notifyDestroyed", Descriptor: "()V", Body: jletNotifyDestroyed},
		},
	}
}

func jletInit(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	eq, err := vm.New("org/kwis/msp/lcdui/EventQueue", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(this, "eventQueue", "Lorg/kwis/msp/lcdui/EventQueue;", jvm.RefValue(eq)); err != nil {
		return jvm.VoidValue(), err
	}

	// the first Jlet constructed is the active one
	active, err := vm.GetStaticField("org/kwis/msp/lcdui/Jlet", "activeJlet", "Lorg/kwis/msp/lcdui/Jlet;")
	if err != nil {
		return jvm.VoidValue(), err
	}
	if active.IsNull() {
		if err := vm.PutStaticField("org/kwis/msp/lcdui/Jlet", "activeJlet", "Lorg/kwis/msp/lcdui/Jlet;", jvm.RefValue(this)); err != nil {
			return jvm.VoidValue(), err
		}
	}

	return jvm.VoidValue(), nil
}

func jletGetActiveJlet(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetStaticField("org/kwis/msp/lcdui/Jlet", "activeJlet", "Lorg/kwis/msp/lcdui/Jlet;")
}

func jletGetEventQueue(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "eventQueue", "Lorg/kwis/msp/lcdui/EventQueue;")
}

func jletNotifyDestroyed(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "Jlet notified destroyed")
	return jvm.VoidValue(), nil
}

// StartJlet instantiates the application's main class and invokes its
// startApp method: first startApp([Ljava/lang/String;)V and, if that
// descriptor is absent, startApp()V. Both exist in the wild.
func StartJlet(vm *jvm.JVM, mainClass string) error {
	// class names can arrive in dotted form
	mainClass = strings.ReplaceAll(mainClass, ".", "/")

	this, err := vm.New(mainClass, "()V")
	if err != nil {
		return err
	}

	_, err = vm.CallMethod(this, "startApp", "([Ljava/lang/String;)V", jvm.NullValue())
	if err == nil {
		return nil
	}
	if !curated.Has(err, jvm.NoSuchMethod) {
		return err
	}

	_, err = vm.CallMethod(this, "startApp", "()V")
	if err != nil && curated.Has(err, jvm.NoSuchMethod) {
		return curated.Errorf(NoStartApp, mainClass)
	}
	return err
}

// interface org.kwis.msp.lcdui.JletEventListener
func jletEventListenerProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "notifyEvent", Descriptor: "(IIII)V"},
		},
	}
}

// class org.kwis.msp.lcdui.Display
func displayProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "defaultDisplay", Descriptor: "Lorg/kwis/msp/lcdui/Display;", Static: true},
			{Name: "card", Descriptor: "Lorg/kwis/msp/lcdui/Card;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getDefaultDisplay", Descriptor: "()Lorg/kwis/msp/lcdui/Display;", Flags: jvm.FlagStatic, Body: displayGetDefaultDisplay},
			{Name: "getDisplay", Descriptor: "(Ljava/lang/String;)Lorg/kwis/msp/lcdui/Display;", Flags: jvm.FlagStatic, Body: displayGetDisplay},
			{Name: "getWidth", Descriptor: "()I", Body: displayGetWidth},
			{Name: "getHeight", Descriptor: "()I", Body: displayGetHeight},
			{Name: "pushCard", Descriptor: "(Lorg/kwis/msp/lcdui/Card;)V", Body: displayPushCard},
			{Name: "removeAllCards", Descriptor: "()V", Body: displayRemoveAllCards},
			{Name: "addJletEventListener", Descriptor: "(Lorg/kwis/msp/lcdui/JletEventListener;)V", Body: displayAddJletEventListener},
		},
	}
}

func displayGetDefaultDisplay(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	v, err := vm.GetStaticField("org/kwis/msp/lcdui/Display", "defaultDisplay", "Lorg/kwis/msp/lcdui/Display;")
	if err != nil {
		return jvm.VoidValue(), err
	}
	if !v.IsNull() {
		return v, nil
	}

	ref, err := vm.New("org/kwis/msp/lcdui/Display", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}

	v = jvm.RefValue(ref)
	return v, vm.PutStaticField("org/kwis/msp/lcdui/Display", "defaultDisplay", "Lorg/kwis/msp/lcdui/Display;", v)
}

func displayGetDisplay(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return displayGetDefaultDisplay(vm, this, nil)
}

func displayGetWidth(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.IntValue(int32(vm.Backend().Canvas.Width())), nil
}

func displayGetHeight(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.IntValue(int32(vm.Backend().Canvas.Height())), nil
}

func displayPushCard(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := vm.PutField(this, "card", "Lorg/kwis/msp/lcdui/Card;", args[0]); err != nil {
		return jvm.VoidValue(), err
	}
	vm.Backend().Canvas.RequestRedraw()
	return jvm.VoidValue(), nil
}

func displayRemoveAllCards(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "card", "Lorg/kwis/msp/lcdui/Card;", jvm.NullValue())
}

func displayAddJletEventListener(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "stub org.kwis.msp.lcdui.Display::addJletEventListener")
	return jvm.VoidValue(), nil
}

// class org.kwis.msp.lcdui.Card
//
// screen dimensions come from the backend's canvas; repaint requests are
// forwarded to the window surface.
func cardProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "display", Descriptor: "Lorg/kwis/msp/lcdui/Display;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "<init>", Descriptor: "(I)V", Body: cardInitInt},
			{Name: "getWidth", Descriptor: "()I", Body: displayGetWidth},
			{Name: "getHeight", Descriptor: "()I", Body: displayGetHeight},
			{Name: "repaint", Descriptor: "(IIII)V", Body: cardRepaintRect},
			{Name: "repaint", Descriptor: "()V", Body: cardRepaint},
			{Name: "serviceRepaints", Descriptor: "()V", Body: cardRepaint},
			{Name: "paint", Descriptor: "(Lorg/kwis/msp/lcdui/Graphics;)V", Body: cardPaint},
			{Name: "keyNotify", Descriptor: "(II)Z", Body: cardKeyNotify},
		},
	}
}

func cardInitInt(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	logger.Logf("JVM", "stub org.kwis.msp.lcdui.Card::<init>(%d)", args[0].Int())
	return jvm.VoidValue(), nil
}

func cardRepaintRect(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	vm.Backend().Canvas.RequestRedraw()
	return jvm.VoidValue(), nil
}

func cardRepaint(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	vm.Backend().Canvas.RequestRedraw()
	return jvm.VoidValue(), nil
}

func cardPaint(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	// overridden by the application's card subclass
	return jvm.VoidValue(), nil
}

func cardKeyNotify(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.BoolValue(false), nil
}

// class org.kwis.msp.lcdui.Graphics
func graphicsProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "rgb", Descriptor: "I"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getColorOfRGB", Descriptor: "(III)I", Body: graphicsGetColorOfRGB},
			{Name: "setColor", Descriptor: "(I)V", Body: graphicsSetColor},
			{Name: "fillRect", Descriptor: "(IIII)V", Body: graphicsFillRect},
			{Name: "drawRect", Descriptor: "(IIII)V", Body: graphicsDrawRect},
			{Name: "drawString", Descriptor: "(Ljava/lang/String;III)V", Body: graphicsDrawString},
			{Name: "drawImage", Descriptor: "(Lorg/kwis/msp/lcdui/Image;III)V", Body: graphicsDrawImage},
			{Name: "getClipWidth", Descriptor: "()I", Body: displayGetWidth},
			{Name: "getClipHeight", Descriptor: "()I", Body: displayGetHeight},
		},
	}
}

func graphicsGetColorOfRGB(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	r := uint32(args[0].Int()) & 0xff
	g := uint32(args[1].Int()) & 0xff
	b := uint32(args[2].Int()) & 0xff
	return jvm.IntValue(int32(r<<16 | g<<8 | b)), nil
}

func graphicsSetColor(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "rgb", "I", args[0])
}

func graphicsFillRect(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	rgb, err := vm.GetField(this, "rgb", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	vm.Backend().Canvas.Fill(int(args[0].Int()), int(args[1].Int()), int(args[2].Int()), int(args[3].Int()), uint32(rgb.Int()))
	return jvm.VoidValue(), nil
}

func graphicsDrawRect(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	rgb, err := vm.GetField(this, "rgb", "I")
	if err != nil {
		return jvm.VoidValue(), err
	}

	x := int(args[0].Int())
	y := int(args[1].Int())
	w := int(args[2].Int())
	h := int(args[3].Int())
	c := uint32(rgb.Int())

	canvas := vm.Backend().Canvas
	canvas.Fill(x, y, w, 1, c)
	canvas.Fill(x, y+h-1, w, 1, c)
	canvas.Fill(x, y, 1, h, c)
	canvas.Fill(x+w-1, y, 1, h, c)
	return jvm.VoidValue(), nil
}

func graphicsDrawString(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	s := ""
	if !args[0].IsNull() {
		s, _ = vm.StringOf(args[0].Ref)
	}
	logger.Logf("JVM", "stub org.kwis.msp.lcdui.Graphics::drawString(%s)", s)
	return jvm.VoidValue(), nil
}

func graphicsDrawImage(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "stub org.kwis.msp.lcdui.Graphics::drawImage")
	return jvm.VoidValue(), nil
}

// class org.kwis.msp.lcdui.Image
func imageProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "data", Descriptor: "[B"},
			{Name: "w", Descriptor: "I"},
			{Name: "h", Descriptor: "I"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "createImage", Descriptor: "(II)Lorg/kwis/msp/lcdui/Image;", Flags: jvm.FlagStatic, Body: imageCreate},
			{Name: "createImage", Descriptor: "([BII)Lorg/kwis/msp/lcdui/Image;", Flags: jvm.FlagStatic, Body: imageCreateFromBytes},
			{Name: "getWidth", Descriptor: "()I", Body: imageGetWidth},
			{Name: "getHeight", Descriptor: "()I", Body: imageGetHeight},
		},
	}
}

func imageCreate(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	ref, err := vm.New("org/kwis/msp/lcdui/Image", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(ref, "w", "I", args[0]); err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(ref, "h", "I", args[1]); err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(ref), nil
}

func imageCreateFromBytes(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	ref, err := vm.New("org/kwis/msp/lcdui/Image", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.PutField(ref, "data", "[B", args[0]); err != nil {
		return jvm.VoidValue(), err
	}
	logger.Log("JVM", "stub org.kwis.msp.lcdui.Image::createImage: image decoding not wired")
	return jvm.RefValue(ref), nil
}

func imageGetWidth(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "w", "I")
}

func imageGetHeight(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return vm.GetField(this, "h", "I")
}

// class org.kwis.msp.lcdui.Font
func fontProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getDefaultFont", Descriptor: "()Lorg/kwis/msp/lcdui/Font;", Flags: jvm.FlagStatic, Body: fontGetDefaultFont},
			{Name: "getHeight", Descriptor: "()I", Body: fontGetHeight},
		},
	}
}

func fontGetDefaultFont(vm *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	ref, err := vm.New("org/kwis/msp/lcdui/Font", "()V")
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(ref), nil
}

func fontGetHeight(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.IntValue(12), nil
}

// class org.kwis.msp.lcdui.EventQueue
func eventQueueProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: objectInit},
			{Name: "getNextEvent", Descriptor: "([I)V", Body: eventQueueGetNextEvent},
			{Name: "dispatchEvent", Descriptor: "([I)V", Body: eventQueueDispatchEvent},
		},
	}
}

// eventQueueGetNextEvent blocks, cooperatively, until a key event
// arrives from the backend. The four element argument array receives the
// event: type, param1 (the key), param2, param3.
func eventQueueGetNextEvent(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	for {
		if ev, ok := vm.Backend().Input.Poll(); ok {
			eventType := int32(2) // key released
			if ev.Pressed {
				eventType = 1 // key pressed
			}

			if err := vm.StoreArray(args[0].Ref, 0, []jvm.Value{
				jvm.IntValue(eventType),
				jvm.IntValue(int32(ev.Key)),
				jvm.IntValue(0),
				jvm.IntValue(0),
			}); err != nil {
				return jvm.VoidValue(), err
			}
			return jvm.VoidValue(), nil
		}

		// no event pending. suspend before polling again
		if err := vm.Sleep(10); err != nil {
			return jvm.VoidValue(), err
		}
	}
}

func eventQueueDispatchEvent(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "stub org.kwis.msp.lcdui.EventQueue::dispatchEvent")
	return jvm.VoidValue(), nil
}

// class org.kwis.msp.lcdui.Main
func mainProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "org/kwis/msp/lcdui/Jlet",
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "()V", Body: jletInit},
		},
	}
}
