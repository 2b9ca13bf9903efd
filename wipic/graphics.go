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
)

// ScreenInfo is the guest visible struct written by the graphics
// interface's getScreenInfo slot.
type ScreenInfo struct {
	BPP    uint32
	Width  uint32
	Height uint32
}

// graphicsMethodTable returns the ordered graphics interface.
func graphicsMethodTable() []method {
	return []method{
		{name: "MC_grpGetScreenInfo", argc: 1, body: getScreenInfo},
		stub(1, "MC_grpInitDisplay"),
		{name: "MC_grpGetScreenWidth", argc: 0, body: getScreenWidth},
		{name: "MC_grpGetScreenHeight", argc: 0, body: getScreenHeight},
		stub(4, "MC_grpCreateOffScreenMemory"),
		stub(5, "MC_grpReleaseOffScreenMemory"),
		stub(6, "MC_grpGetDefaultFrameBuffer"),
		stub(7, "MC_grpGetFrameBufferWidth"),
		stub(8, "MC_grpGetFrameBufferHeight"),
		stub(9, "MC_grpGetFrameBufferPointer"),
		{name: "MC_grpFillRect", argc: 5, body: fillRect},
		{name: "MC_grpPutPixel", argc: 3, body: putPixel},
		stub(12, "MC_grpDrawLine"),
		stub(13, "MC_grpDrawRect"),
		stub(14, "MC_grpCopyArea"),
		stub(15, "MC_grpCopyFrameBuffer"),
		{name: "MC_grpFlush", argc: 4, body: flush},
		stub(17, "MC_grpGetFont"),
		stub(18, "MC_grpGetFontHeight"),
		stub(19, "MC_grpDrawString"),
	}
}

func getScreenInfo(brd *Bridge, args []uint32) (uint32, error) {
	info := ScreenInfo{
		BPP:    32,
		Width:  uint32(brd.bck.Canvas.Width()),
		Height: uint32(brd.bck.Canvas.Height()),
	}

	if err := arm.WriteGeneric(brd.core.Memory(), args[0], info); err != nil {
		return 0, err
	}

	return 0, nil
}

func getScreenWidth(brd *Bridge, _ []uint32) (uint32, error) {
	return uint32(brd.bck.Canvas.Width()), nil
}

func getScreenHeight(brd *Bridge, _ []uint32) (uint32, error) {
	return uint32(brd.bck.Canvas.Height()), nil
}

func fillRect(brd *Bridge, args []uint32) (uint32, error) {
	brd.bck.Canvas.Fill(int(int32(args[0])), int(int32(args[1])), int(int32(args[2])), int(int32(args[3])), args[4])
	return 0, nil
}

func putPixel(brd *Bridge, args []uint32) (uint32, error) {
	brd.bck.Canvas.SetPixel(int(int32(args[0])), int(int32(args[1])), args[2])
	return 0, nil
}

func flush(brd *Bridge, _ []uint32) (uint32, error) {
	brd.bck.Canvas.RequestRedraw()
	return 0, nil
}
