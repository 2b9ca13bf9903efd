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

package wipic

import (
	"github.com/wipi-emu/wipiemu/hardware/arm"
	"github.com/wipi-emu/wipiemu/logger"
)

// WIPIInterface is the packed struct of guest pointers returned by the
// kernel's get_wipic_interfaces slot. Thirteen pointers at offsets 0 to
// 48; indices 2, 6 and 9 are the graphics, database and media tables.
// The rest are zero until implemented.
type WIPIInterface struct {
	Interface0  uint32
	Interface1  uint32
	Interface2  uint32
	Interface3  uint32
	Interface4  uint32
	Interface5  uint32
	Interface6  uint32
	Interface7  uint32
	Interface8  uint32
	Interface9  uint32
	Interface10 uint32
	Interface11 uint32
	Interface12 uint32
}

// getWIPICInterfaces is the body of the kernel's reserved1 slot. It
// materialises the graphics, database and media tables, writes the
// WIPIInterface struct to guest memory and returns its address.
func getWIPICInterfaces(brd *Bridge, _ []uint32) (uint32, error) {
	if brd.interfacesAddr != 0 {
		return brd.interfacesAddr, nil
	}

	logger.Log("WIPI-C", "materialising interface tables")

	graphics, err := brd.installTable(graphicsMethodTable())
	if err != nil {
		return 0, err
	}

	database, err := brd.installTable(databaseMethodTable())
	if err != nil {
		return 0, err
	}

	media, err := brd.installTable(mediaMethodTable())
	if err != nil {
		return 0, err
	}

	iface := WIPIInterface{
		Interface2: graphics,
		Interface6: database,
		Interface9: media,
	}

	addr, err := brd.heap.Alloc(13 * 4)
	if err != nil {
		return 0, err
	}

	if err := arm.WriteGeneric(brd.core.Memory(), addr, iface); err != nil {
		return 0, err
	}

	brd.interfacesAddr = addr
	return addr, nil
}
