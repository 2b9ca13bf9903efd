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

// Package curated is the error mechanism used throughout the emulator. A
// curated error is created with a pattern string and tested for with the
// same pattern string. Packages declare their patterns as exported
// constants:
//
//	const IllegalMemoryAccess = "arm: illegal access: %08x"
//
//	return curated.Errorf(IllegalMemoryAccess, addr)
//
// A caller that wants to respond to that specific condition checks the
// error with curated.Is() or, if the error may have been wrapped inside
// another curated error, with curated.Has().
//
// Unlike the fmt package, formatting of the message is deferred until the
// Error() function is called. Message chains are normalised such that
// adjacent duplicate parts are removed. For example, the chain
//
//	"jvm: error" -> "jvm: error: class not found"
//
// is rendered as
//
//	"jvm: error: class not found"
package curated
