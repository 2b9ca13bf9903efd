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

// Package jvm implements the Java runtime facade of the emulator: a
// class loader, a heap of class and array instances, and a dispatcher
// that invokes bytecode methods and host implemented methods through one
// uniform surface.
//
// Class resolution is two-tier. A fully qualified name is first checked
// against the table of built-in class prototypes (the java.lang.* subset
// and the org.kwis.msp.* vendor namespace, supplied by the wipijava
// package); failing that, a "<name>.class" file is fetched from the
// application archive and parsed.
//
// There is no garbage collector. Every instance lives for the rest of
// the run, which matches how long a WIPI application runs for.
package jvm
