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

// Package sdlwindow is the SDL implementation of the platform backend's
// window surface: the screen canvas, keypad input and sound output of the
// emulated handset.
package sdlwindow

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/logger"
)

// sentinel error patterns for the sdlwindow package.
const (
	SetupFailure = "sdlwindow: %v"
)

// pixel depth of the canvas texture (ABGR8888).
const pixelDepth = 4

// the window is scaled up from the native handset resolution.
const windowScale = 2

// Window is the SDL window surface. It implements the backend Canvas,
// Input and Sound interfaces.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	width  int
	height int
	pixels []byte

	dirty bool

	audioID   sdl.AudioDeviceID
	audioSpec sdl.AudioSpec

	events []backend.KeyEvent
}

// NewWindow is the preferred method of initialisation for the Window
// type. The dimensions are the native resolution of the emulated
// handset.
func NewWindow(width int, height int) (*Window, error) {
	win := &Window{
		width:  width,
		height: height,
		pixels: make([]byte, width*height*pixelDepth),
	}

	var err error

	err = sdl.Init(sdl.INIT_EVERYTHING)
	if err != nil {
		return nil, curated.Errorf(SetupFailure, err)
	}

	win.window, err = sdl.CreateWindow("wipiemu",
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(width*windowScale), int32(height*windowScale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return nil, curated.Errorf(SetupFailure, err)
	}

	win.renderer, err = sdl.CreateRenderer(win.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return nil, curated.Errorf(SetupFailure, err)
	}

	win.texture, err = win.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		int32(width), int32(height))
	if err != nil {
		return nil, curated.Errorf(SetupFailure, err)
	}

	request := &sdl.AudioSpec{
		Freq:     44100,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  1024,
	}
	win.audioID, err = sdl.OpenAudioDevice("", false, request, &win.audioSpec, 0)
	if err != nil {
		// running without sound is not fatal
		logger.Log("sdlwindow", err)
	} else {
		sdl.PauseAudioDevice(win.audioID, false)
	}

	return win, nil
}

// Destroy the window surface and release SDL resources.
func (win *Window) Destroy() {
	if win.audioID > 0 {
		sdl.CloseAudioDevice(win.audioID)
	}
	win.texture.Destroy()
	win.renderer.Destroy()
	win.window.Destroy()
	sdl.Quit()
}

// Width implements the backend.Canvas interface.
func (win *Window) Width() int {
	return win.width
}

// Height implements the backend.Canvas interface.
func (win *Window) Height() int {
	return win.height
}

// SetPixel implements the backend.Canvas interface.
func (win *Window) SetPixel(x int, y int, rgb uint32) {
	if x < 0 || x >= win.width || y < 0 || y >= win.height {
		return
	}
	i := (y*win.width + x) * pixelDepth
	win.pixels[i] = byte(rgb >> 16)
	win.pixels[i+1] = byte(rgb >> 8)
	win.pixels[i+2] = byte(rgb)
	win.pixels[i+3] = 0xff
}

// Pixel implements the backend.Canvas interface.
func (win *Window) Pixel(x int, y int) uint32 {
	if x < 0 || x >= win.width || y < 0 || y >= win.height {
		return 0
	}
	i := (y*win.width + x) * pixelDepth
	return uint32(win.pixels[i])<<16 | uint32(win.pixels[i+1])<<8 | uint32(win.pixels[i+2])
}

// Fill implements the backend.Canvas interface.
func (win *Window) Fill(x int, y int, w int, h int, rgb uint32) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			win.SetPixel(xx, yy, rgb)
		}
	}
}

// RequestRedraw implements the backend.Canvas interface.
func (win *Window) RequestRedraw() {
	win.dirty = true
}

// Service processes pending SDL events and presents the canvas if it has
// been marked dirty. Must be called from the main goroutine at a regular
// interval. Returns false when the window has been closed.
func (win *Window) Service() bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			win.events = append(win.events, backend.KeyEvent{
				Key:     int(ev.Keysym.Sym),
				Pressed: ev.Type == sdl.KEYDOWN,
			})
		}
	}

	if win.dirty {
		win.dirty = false

		pitch := win.width * pixelDepth
		if err := win.texture.Update(nil, win.pixels, pitch); err != nil {
			logger.Log("sdlwindow", err)
		}
		win.renderer.Clear()
		win.renderer.Copy(win.texture, nil, nil)
		win.renderer.Present()
	}

	return true
}

// Poll implements the backend.Input interface.
func (win *Window) Poll() (backend.KeyEvent, bool) {
	if len(win.events) == 0 {
		return backend.KeyEvent{}, false
	}
	ev := win.events[0]
	win.events = win.events[1:]
	return ev, true
}

// Queue implements the backend.Sound interface.
func (win *Window) Queue(pcm []int16, sampleRate int) error {
	if win.audioID == 0 {
		return nil
	}

	// 16-bit little-endian samples as bytes
	b := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		b[i*2] = byte(s)
		b[i*2+1] = byte(uint16(s) >> 8)
	}

	if err := sdl.QueueAudio(win.audioID, b); err != nil {
		return curated.Errorf(SetupFailure, err)
	}

	return nil
}
