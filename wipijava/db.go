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

// class org.kwis.msp.db.DataBase
//
// the instance's dbName field carries the database name; storage is
// delegated to the platform backend's record repository.
func dataBaseProto() *jvm.ClassProto {
	return &jvm.ClassProto{
		Parent: "java/lang/Object",
		Fields: []jvm.FieldProto{
			{Name: "dbName", Descriptor: "Ljava/lang/String;"},
		},
		Methods: []jvm.MethodProto{
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Body: dataBaseInit},
			{Name: "openDataBase", Descriptor: "(Ljava/lang/String;IZ)Lorg/kwis/msp/db/DataBase;", Flags: jvm.FlagStatic, Body: dataBaseOpen},
			{Name: "getNumberOfRecords", Descriptor: "()I", Body: dataBaseNumRecords},
			{Name: "closeDataBase", Descriptor: "()V", Body: dataBaseClose},
			{Name: "insertRecord", Descriptor: "([BII)I", Body: dataBaseInsertRecord},
			{Name: "selectRecord", Descriptor: "(I)[B", Body: dataBaseSelectRecord},
			{Name: "deleteRecord", Descriptor: "(I)V", Body: dataBaseDeleteRecord},
		},
	}
}

func dataBaseInit(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), vm.PutField(this, "dbName", "Ljava/lang/String;", args[0])
}

func dataBaseOpen(vm *jvm.JVM, _ jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	ref, err := vm.New("org/kwis/msp/db/DataBase", "(Ljava/lang/String;)V", args[0])
	if err != nil {
		return jvm.VoidValue(), err
	}
	return jvm.RefValue(ref), nil
}

// dataBaseBackend resolves the instance's backend database from its
// dbName field.
func dataBaseBackend(vm *jvm.JVM, this jvm.Ref) (string, error) {
	name, err := vm.GetField(this, "dbName", "Ljava/lang/String;")
	if err != nil {
		return "", err
	}
	return vm.StringOf(name.Ref)
}

func dataBaseNumRecords(vm *jvm.JVM, this jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	name, err := dataBaseBackend(vm, this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	db := vm.Backend().Records.Open(name)
	return jvm.IntValue(int32(db.NumRecords())), nil
}

func dataBaseClose(_ *jvm.JVM, _ jvm.Ref, _ []jvm.Value) (jvm.Value, error) {
	return jvm.VoidValue(), nil
}

func dataBaseInsertRecord(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	name, err := dataBaseBackend(vm, this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	data, err := vm.LoadByteArray(args[0].Ref, int(args[1].Int()), int(args[2].Int()))
	if err != nil {
		return jvm.VoidValue(), err
	}

	db := vm.Backend().Records.Open(name)
	return jvm.IntValue(int32(db.Add(data))), nil
}

func dataBaseSelectRecord(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	name, err := dataBaseBackend(vm, this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	db := vm.Backend().Records.Open(name)
	data, err := db.Get(int(args[0].Int()))
	if err != nil {
		return jvm.VoidValue(), err
	}

	array, err := vm.InstantiateArray("B", len(data))
	if err != nil {
		return jvm.VoidValue(), err
	}
	if err := vm.StoreByteArray(array, 0, data); err != nil {
		return jvm.VoidValue(), err
	}

	return jvm.RefValue(array), nil
}

func dataBaseDeleteRecord(vm *jvm.JVM, this jvm.Ref, args []jvm.Value) (jvm.Value, error) {
	name, err := dataBaseBackend(vm, this)
	if err != nil {
		return jvm.VoidValue(), err
	}

	db := vm.Backend().Records.Open(name)
	if err := db.Delete(int(args[0].Int())); err != nil {
		logger.Log("JVM", err)
	}
	return jvm.VoidValue(), nil
}

// class org.kwis.msp.db.DataBaseRecordException
func dataBaseRecordExceptionProto() *jvm.ClassProto {
	return derivedExceptionProto()
}
