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

// Package arm implements the ARM7TDMI compatible processor that WIPI
// application binaries run on. Unlike a real handset there is no vendor
// firmware underneath the application: services that the binary expects
// from the phone are provided by host functions registered at synthetic
// addresses (see RegisterFunction). Branching to a synthetic address
// traps into the host instead of decoding an instruction.
//
// The emulated address space is flat, byte addressable and little-endian.
// The application image is loaded at ImageBase and a fixed region above
// it is reserved for the guest heap (managed by the allocator package)
// and the stack.
package arm
