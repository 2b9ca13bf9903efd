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
	"github.com/wipi-emu/wipiemu/backend/sound"
	"github.com/wipi-emu/wipiemu/logger"
)

// mediaMethodTable returns the ordered media interface.
func mediaMethodTable() []method {
	return []method{
		{name: "MC_mdaClipCreate", argc: 2, body: clipCreate},
		{name: "MC_mdaClipPutData", argc: 3, body: clipPutData},
		stub(2, "MC_mdaClipGetData"),
		{name: "MC_mdaClipPlay", argc: 2, body: clipPlay},
		{name: "MC_mdaClipStop", argc: 1, body: clipStop},
		{name: "MC_mdaClipClose", argc: 1, body: clipClose},
		stub(6, "MC_mdaClipPause"),
		stub(7, "MC_mdaClipResume"),
		stub(8, "MC_mdaSetVolume"),
		stub(9, "MC_mdaGetVolume"),
		{name: "MC_mdaVibrator", argc: 2, body: vibrator},
	}
}

func clipCreate(brd *Bridge, args []uint32) (uint32, error) {
	h := brd.nextClip
	brd.nextClip++
	brd.clips[h] = nil
	return h, nil
}

func clipPutData(brd *Bridge, args []uint32) (uint32, error) {
	if _, ok := brd.clips[args[0]]; !ok {
		return errValue, nil
	}

	data, err := brd.core.Memory().ReadBytes(args[1], args[2])
	if err != nil {
		return 0, err
	}

	brd.clips[args[0]] = data
	return uint32(len(data)), nil
}

func clipPlay(brd *Bridge, args []uint32) (uint32, error) {
	data, ok := brd.clips[args[0]]
	if !ok || data == nil {
		return errValue, nil
	}

	pcm, rate, err := sound.Decode(data)
	if err != nil {
		// a clip in an unknown format is logged, not fatal
		logger.Log("WIPI-C", err)
		return errValue, nil
	}

	if err := brd.bck.Sound.Queue(pcm, rate); err != nil {
		logger.Log("WIPI-C", err)
		return errValue, nil
	}

	return 0, nil
}

func clipStop(brd *Bridge, args []uint32) (uint32, error) {
	if _, ok := brd.clips[args[0]]; !ok {
		return errValue, nil
	}
	return 0, nil
}

func clipClose(brd *Bridge, args []uint32) (uint32, error) {
	if _, ok := brd.clips[args[0]]; !ok {
		return errValue, nil
	}
	delete(brd.clips, args[0])
	return 0, nil
}

func vibrator(_ *Bridge, args []uint32) (uint32, error) {
	logger.Logf("WIPI-C", "stub MC_mdaVibrator(%s)", fmtArgs(args))
	return 0, nil
}
