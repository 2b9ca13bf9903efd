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

// Package backend collects the platform services the emulator core
// depends on: the screen canvas, key input, sound output, the record
// database, the resource filesystem and the clock.
//
// Two implementations of the window surface exist: the SDL window in the
// sdlwindow sub-package and the headless implementation in this package,
// created by NewHeadless (used by unit tests and by the PERFORMANCE mode
// of the main executable).
package backend

import (
	"github.com/wipi-emu/wipiemu/archive"
	"github.com/wipi-emu/wipiemu/recorddb"
)

// Canvas is the screen surface of the emulated handset.
type Canvas interface {
	Width() int
	Height() int

	// SetPixel writes an 0x00RRGGBB value. coordinates outside the
	// canvas are ignored
	SetPixel(x int, y int, rgb uint32)
	Pixel(x int, y int) uint32

	// Fill the rectangle with an 0x00RRGGBB value
	Fill(x int, y int, w int, h int, rgb uint32)

	// RequestRedraw marks the canvas dirty. the window surface presents
	// the canvas at its next convenience
	RequestRedraw()
}

// KeyEvent is a key press or release on the handset keypad.
type KeyEvent struct {
	Key     int
	Pressed bool
}

// Input is the source of keypad events.
type Input interface {
	// Poll returns the next pending event, if any
	Poll() (KeyEvent, bool)
}

// Sound is the audio sink of the emulated handset.
type Sound interface {
	// Queue the supplied PCM samples for playback
	Queue(pcm []int16, sampleRate int) error
}

// Backend bundles the platform services for one emulated device.
type Backend struct {
	Canvas  Canvas
	Input   Input
	Sound   Sound
	Records *recorddb.Repository

	// the application archive doubles as the resource filesystem
	Resources *archive.Archive

	// Now returns the emulation clock in milliseconds. wired to the
	// scheduler's clock by the launcher
	Now func() uint64
}

// headlessCanvas implements the Canvas interface without a window
// surface.
type headlessCanvas struct {
	width  int
	height int
	pixels []uint32
}

// headlessInput implements the Input interface. it never produces an
// event.
type headlessInput struct{}

func (i *headlessInput) Poll() (KeyEvent, bool) {
	return KeyEvent{}, false
}

// headlessSound implements the Sound interface by discarding samples.
type headlessSound struct{}

func (s *headlessSound) Queue(pcm []int16, sampleRate int) error {
	return nil
}

// NewHeadless creates a backend with no window surface. The canvas
// dimensions match the common WIPI handset screen.
func NewHeadless(arc *archive.Archive, records *recorddb.Repository) *Backend {
	return &Backend{
		Canvas:    NewHeadlessCanvas(160, 220),
		Input:     &headlessInput{},
		Sound:     &headlessSound{},
		Records:   records,
		Resources: arc,
		Now:       func() uint64 { return 0 },
	}
}

// NewHeadlessCanvas creates a memory only canvas of the supplied
// dimensions.
func NewHeadlessCanvas(width int, height int) Canvas {
	return &headlessCanvas{
		width:  width,
		height: height,
		pixels: make([]uint32, width*height),
	}
}

func (c *headlessCanvas) Width() int {
	return c.width
}

func (c *headlessCanvas) Height() int {
	return c.height
}

func (c *headlessCanvas) SetPixel(x int, y int, rgb uint32) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.pixels[y*c.width+x] = rgb
}

func (c *headlessCanvas) Pixel(x int, y int) uint32 {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return 0
	}
	return c.pixels[y*c.width+x]
}

func (c *headlessCanvas) Fill(x int, y int, w int, h int, rgb uint32) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.SetPixel(xx, yy, rgb)
		}
	}
}

func (c *headlessCanvas) RequestRedraw() {
}
