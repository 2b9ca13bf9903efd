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

// Package statsview optionally serves live runtime statistics over
// HTTP, through the go-echarts statsview package. Used by the
// PERFORMANCE mode of the main emulator executable.
package statsview

import (
	"fmt"
	"io"

	sv "github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// the address the statsview server listens on.
const address = "localhost:12600"

// Launch the statsview server. The returned stop function shuts the
// server down.
func Launch(output io.Writer) func() {
	viewer.SetConfiguration(viewer.WithAddr(address))

	mgr := sv.New()
	go func() {
		mgr.Start()
	}()

	fmt.Fprintf(output, "live statistics at http://%s/debug/statsview\n", address)

	return mgr.Stop
}
