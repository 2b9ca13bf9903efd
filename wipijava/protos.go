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

// Package wipijava contains the built-in class prototypes of the Java
// runtime facade: the java.lang.* subset that the WIPI profile exposes
// and the org.kwis.msp.* vendor namespace.
//
// Each class is declared as a jvm.ClassProto whose method bodies are host
// implemented. Most vendor classes are logging stubs that return zero
// values. The classes with real behaviour (StringBuffer, DataBase, Card,
// and so on) are implemented on the JVM heap; those that touch the
// platform, such as DataBase and Card, reach the backend through the
// dispatcher context.
package wipijava

import (
	"github.com/wipi-emu/wipiemu/jvm"
)

// Protos resolves a fully qualified class name to its built-in
// prototype. It is the first tier of the JVM's class resolution.
func Protos(name string) (*jvm.ClassProto, bool) {
	switch name {
	case "java/io/ByteArrayInputStream":
		return byteArrayInputStreamProto(), true
	case "java/io/IOException":
		return ioExceptionProto(), true
	case "java/io/InputStream":
		return inputStreamProto(), true
	case "java/lang/Class":
		return classProto(), true
	case "java/lang/Exception":
		return exceptionProto(), true
	case "java/lang/IllegalArgumentException":
		return illegalArgumentExceptionProto(), true
	case "java/lang/InterruptedException":
		return interruptedExceptionProto(), true
	case "java/lang/Object":
		return objectProto(), true
	case "java/lang/Runnable":
		return runnableProto(), true
	case "java/lang/Runtime":
		return runtimeProto(), true
	case "java/lang/String":
		return stringProto(), true
	case "java/lang/StringBuffer":
		return stringBufferProto(), true
	case "java/lang/System":
		return systemProto(), true
	case "java/lang/Thread":
		return threadProto(), true
	case "java/lang/Throwable":
		return throwableProto(), true
	case "java/util/Hashtable":
		return hashtableProto(), true
	case "java/util/Random":
		return randomProto(), true
	case "java/util/Vector":
		return vectorProto(), true
	case "org/kwis/msp/db/DataBase":
		return dataBaseProto(), true
	case "org/kwis/msp/db/DataBaseRecordException":
		return dataBaseRecordExceptionProto(), true
	case "org/kwis/msp/handset/BackLight":
		return backLightProto(), true
	case "org/kwis/msp/handset/HandsetProperty":
		return handsetPropertyProto(), true
	case "org/kwis/msp/lcdui/Card":
		return cardProto(), true
	case "org/kwis/msp/lcdui/Display":
		return displayProto(), true
	case "org/kwis/msp/lcdui/EventQueue":
		return eventQueueProto(), true
	case "org/kwis/msp/lcdui/Font":
		return fontProto(), true
	case "org/kwis/msp/lcdui/Graphics":
		return graphicsProto(), true
	case "org/kwis/msp/lcdui/Image":
		return imageProto(), true
	case "org/kwis/msp/lcdui/Jlet":
		return jletProto(), true
	case "org/kwis/msp/lcdui/JletEventListener":
		return jletEventListenerProto(), true
	case "org/kwis/msp/lcdui/Main":
		return mainProto(), true
	case "org/kwis/msp/media/Clip":
		return clipProto(), true
	case "org/kwis/msp/media/Player":
		return playerProto(), true
	case "org/kwis/msp/media/PlayListener":
		return playListenerProto(), true
	case "org/kwis/msp/media/Vibrator":
		return vibratorProto(), true
	}

	return nil, false
}
