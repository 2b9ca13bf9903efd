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

// Package resources resolves the paths used for the emulator's persistent
// state: the prefs file, saved databases, etc. All paths are relative to
// the base resource directory, ".wipiemu", in the user's home directory or
// in the current directory if the home directory cannot be determined.
package resources

import (
	"os"
	"path/filepath"
)

// the name of the base resource directory.
const baseDir = ".wipiemu"

// JoinPath returns the resource path for the supplied path segments,
// creating any intermediate directories as required.
func JoinPath(segments ...string) (string, error) {
	p := []string{basePath()}
	p = append(p, segments...)
	pth := filepath.Join(p...)

	if err := os.MkdirAll(filepath.Dir(pth), 0700); err != nil {
		return "", err
	}

	return pth, nil
}

func basePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return baseDir
	}
	return filepath.Join(home, baseDir)
}
