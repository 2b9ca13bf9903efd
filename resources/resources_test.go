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

package resources_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/wipi-emu/wipiemu/resources"
	"github.com/wipi-emu/wipiemu/test"
)

func TestJoinPath(t *testing.T) {
	pth, err := resources.JoinPath("foo", "bar")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, strings.HasSuffix(pth, filepath.Join(".wipiemu", "foo", "bar")))

	pth, err = resources.JoinPath()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, strings.HasSuffix(pth, ".wipiemu"))
}
