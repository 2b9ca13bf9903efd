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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/wipi-emu/wipiemu/archive"
	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/backend/sdlwindow"
	"github.com/wipi-emu/wipiemu/debugger"
	"github.com/wipi-emu/wipiemu/hardware"
	"github.com/wipi-emu/wipiemu/logger"
	"github.com/wipi-emu/wipiemu/modalflag"
	"github.com/wipi-emu/wipiemu/prefs"
	"github.com/wipi-emu/wipiemu/recorddb"
	"github.com/wipi-emu/wipiemu/resources"
	"github.com/wipi-emu/wipiemu/statsview"
)

const version = "0.2.0"

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "DEBUG", "PERFORMANCE", "VERSION")

	echoLog := md.AddBool("log", false, "echo log entries to stderr as they arrive")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		os.Exit(0)
	}

	if *echoLog {
		logger.SetEcho(os.Stderr)
	}

	switch md.Mode() {
	case "RUN":
		err = emulate(md, false)
	case "DEBUG":
		err = emulate(md, true)
	case "PERFORMANCE":
		err = performance(md)
	case "VERSION":
		fmt.Printf("wipiemu %s\n", version)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		// leave a record of the log for fault reports
		logger.Tail(os.Stderr, 20)
		os.Exit(1)
	}
}

// prepare loads the application archive and assembles a device around
// the requested backend.
func prepare(path string, mainClass string, useSDL bool) (*hardware.Device, *sdlwindow.Window, error) {
	arc, err := archive.Load(path)
	if err != nil {
		return nil, nil, err
	}

	dbPath, err := resources.JoinPath("databases")
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, nil, err
	}
	records := recorddb.NewRepository(dbPath)

	var bck *backend.Backend
	var win *sdlwindow.Window

	if useSDL {
		win, err = sdlwindow.NewWindow(160, 220)
		if err != nil {
			return nil, nil, err
		}
		bck = &backend.Backend{
			Canvas:    win,
			Input:     win,
			Sound:     win,
			Records:   records,
			Resources: arc,
		}
	} else {
		bck = backend.NewHeadless(arc, records)
	}

	dev := hardware.NewDevice(arc, bck)
	if mainClass != "" {
		dev.MainClass = mainClass
	}

	loadPrefs(dev)

	return dev, win, nil
}

// loadPrefs applies the on-disk preferences to the device.
func loadPrefs(dev *hardware.Device) {
	pth, err := resources.JoinPath("wipiemu.prefs")
	if err != nil {
		logger.Log("prefs", err)
		return
	}

	dsk, err := prefs.NewDisk(pth)
	if err != nil {
		logger.Log("prefs", err)
		return
	}

	var realtime prefs.Bool
	dsk.Add("scheduler.realtime", &realtime)
	realtime.Set(true)

	var abortOnFault prefs.Bool
	dsk.Add("arm.abortonmemoryfault", &abortOnFault)
	abortOnFault.Set(true)

	if err := dsk.Load(false); err != nil {
		logger.Log("prefs", err)
	}

	dev.Scheduler.Realtime = realtime.Get()
	dev.Core.AbortOnMemoryFault = abortOnFault.Get()
}

func emulate(md *modalflag.Modes, debug bool) error {
	md.NewMode()

	useSDL := md.AddBool("sdl", true, "present the screen canvas in an SDL window")
	mainClass := md.AddString("class", "", "override the application's main class")

	p, err := md.Parse()
	if p != modalflag.ParseContinue || err != nil {
		return err
	}

	args := md.RemainingArgs()
	if len(args) != 1 {
		return fmt.Errorf("one application archive required")
	}

	dev, win, err := prepare(args[0], *mainClass, *useSDL && !debug)
	if err != nil {
		return err
	}
	if win != nil {
		defer win.Destroy()
	}

	if debug {
		dbg := debugger.NewDebugger(dev, os.Stdout)
		return dbg.Loop()
	}

	if err := dev.Start(); err != nil {
		return err
	}

	if win == nil {
		if err := dev.Run(); err != nil {
			fmt.Fprintln(os.Stderr, dev.CrashDump())
			return err
		}
		return nil
	}

	// the scheduler runs in its own goroutine. the main goroutine
	// belongs to SDL: it services window events and presents the canvas
	done := make(chan error, 1)
	go func() {
		done <- dev.Run()
	}()

	for {
		select {
		case err := <-done:
			if err != nil {
				fmt.Fprintln(os.Stderr, dev.CrashDump())
			}
			return err
		default:
		}

		if !win.Service() {
			// window closed. the scheduler tasks are abandoned; guest
			// state is torn down with the process
			return nil
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func performance(md *modalflag.Modes) error {
	md.NewMode()

	stats := md.AddBool("statsview", false, "serve live runtime statistics over http")
	duration := md.AddString("duration", "5s", "run time before the measurement is taken")

	p, err := md.Parse()
	if p != modalflag.ParseContinue || err != nil {
		return err
	}

	args := md.RemainingArgs()
	if len(args) != 1 {
		return fmt.Errorf("one application archive required")
	}

	if *stats {
		stop := statsview.Launch(os.Stdout)
		defer stop()
	}

	d, err := time.ParseDuration(*duration)
	if err != nil {
		return err
	}

	dev, _, err := prepare(args[0], "", false)
	if err != nil {
		return err
	}

	// performance runs are headless and free-running
	dev.Scheduler.Realtime = false

	if err := dev.Start(); err != nil {
		return err
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- dev.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-time.After(d):
	}

	elapsed := time.Since(start)
	fmt.Printf("emulation clock advanced to %d ticks in %v\n", dev.Scheduler.Now(), elapsed)

	return nil
}
