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
	"github.com/wipi-emu/wipiemu/backend/sound"
	"github.com/wipi-emu/wipiemu/jvm"
	"github.com/wipi-emu/wipiemu/logger"
)

// class org.kwis.msp.media.Clip
//
// a clip carries encoded audio data. play decodes it and queues the PCM
// on the backend's audio sink.
func clipProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "type", Descriptor: "Ljava/lang/String;"},
			{Name: "data", Descriptor: "[B"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Body: clipInitType},
			{Name: "<init>", Descriptor: "(Ljava/lang/String;Ljava/lang/String;)V", Body: clipInitTypeResource},
			{Name: "putData", Descriptor: "([B)I", Body: clipPutData},
			{Name: "getVolume", Descriptor: "()I", Body: clipGetVolume},
			{Name: "setVolume", Descriptor: "(I)Z", Body: clipSetVolume},
		},
	}
}

func clipInitType(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "type", "Ljava/lang/String;", args[0])
}

// clipInitTypeResource loads the clip data from the named archive
// resource.
func clipInitTypeResource(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := vm.PutField(this, "type", "Ljava/lang/String;", args[0]); err != nil {
		return jvm.VoidValue(), err
	}

	if args[1].IsNull() {
		return jvm.VoidValue(), nil
	}

	name, err := vm.StringOf(args[1].Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}

	data, err := vm.Backend().Resources.Data(name)
	if err != nil {
		// a missing resource surfaces when play is attempted
		logger.Log("JVM", err)
		return jvm.VoidValue(), nil
	}

	array, err := vm.InstantiateArray("B", len(data))
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.StoreByteArray(array, 0, data); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.VoidValue(), vm.PutField(this, "data", "[B", jvm.RefValue(array))
}

func clipPutData(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if err := vm.PutField(this, "data", "[B", args[0]); err != nil {
		return jvm.VoidValue(), err
	}

	length, err := vm.ArrayLength(args[0].Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.IntValue(int32(length)), nil
}

func clipGetVolume(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.IntValue(100), nil
}

func clipSetVolume(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	logger.Logf("JVM", "stub org.kwis.msp.media.Clip::setVolume(%d)", args[0].Int())
	return jvm.BoolValue(true), nil
}

// class org.kwis.msp.media.Player
func playerProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "play", Descriptor: "(Lorg/kwis/msp/media/Clip;Z)Z", Flags: jvm.FlagStatic, Body: playerPlay},
			{Name: "stop", Descriptor: "(Lorg/kwis/msp/media/Clip;)Z", Flags: jvm.FlagStatic, Body: playerStop},
		},
	}
}

func playerPlay(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	if args[0].IsNull() {
		return jvm.BoolValue(false), nil
	}

	data, err := vm.GetField(args[0].Ref, "data", "[B")
	if err != nil || data.IsNull() {
		return jvm.BoolValue(false), nil
	}

	length, err := vm.ArrayLength(data.Ref)
	if err != nil {
		return jvm.VoidValue(), err
	}
	raw, err := vm.LoadByteArray(data.Ref, 0, length)
	if err != nil {
		return jvm.VoidValue(), err
	}

	pcm, rate, err := sound.Decode(raw)
	if err != nil {
		logger.Log("JVM", err)
		return jvm.BoolValue(false), nil
	}

	if err := vm.Backend().Sound.Queue(pcm, rate); err != nil {
		logger.Log("JVM", err)
		return jvm.BoolValue(false), nil
	}

	return jvm.BoolValue(true), nil
}

func playerStop(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "stub org.kwis.msp.media.Player::stop")
	return jvm.BoolValue(true), nil
}

// interface org.kwis.msp.media.PlayListener
func playListenerProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "playNotify", Descriptor: "(ILjava/lang/String;)V"},
		},
	}
}

// class org.kwis.msp.media.Vibrator
func vibratorProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Methods: []jvm.MethodProto{
			{Name: "on", Descriptor: "(II)V", Flags: jvm.FlagStatic, Body: vibratorOn},
			{Name: "off", Descriptor: "()V", Flags: jvm.FlagStatic, Body: vibratorOff},
		},
	}
}

func vibratorOn(_ *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	logger.Logf("JVM", "stub org.kwis.msp.media.Vibrator::on(%d, %d)", args[0].Int(), args[1].Int())
	return jvm.VoidValue(), nil
}

func vibratorOff(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	logger.Log("JVM", "stub org.kwis.msp.media.Vibrator::off()")
	return jvm.VoidValue(), nil
}
