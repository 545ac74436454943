/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package venv maps file paths inside a virtual environment back to the
// base interpreter's installation, so graph nodes are keyed by canonical
// stdlib locations regardless of environment tweaks. Site-packages paths
// are left alone: those belong to the environment itself.
package venv

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"bennypowers.dev/moduli/fs"
)

// Environment describes a virtual environment discovered from its
// pyvenv.cfg file.
type Environment struct {
	// Prefix is the environment root (the directory holding pyvenv.cfg).
	Prefix string

	// Home is the directory containing the base interpreter binary,
	// from the "home" key of pyvenv.cfg.
	Home string

	// Version is the "major.minor" interpreter version, used to build
	// lib/pythonX.Y paths.
	Version string
}

// Discover reads prefix/pyvenv.cfg. Returns nil without error when the
// file is absent: the prefix is not a virtual environment and paths need
// no adjustment.
func Discover(fsys fs.FileSystem, prefix string) (*Environment, error) {
	cfgPath := filepath.Join(prefix, "pyvenv.cfg")
	if !fsys.Exists(cfgPath) {
		return nil, nil
	}

	content, err := fsys.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}

	env := &Environment{Prefix: filepath.Clean(prefix)}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "home":
			env.Home = value
		case "version", "version_info":
			env.Version = majorMinor(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return env, nil
}

// majorMinor trims a full version like "3.12.1" down to "3.12".
func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// libDir returns the environment's stdlib directory, lib/pythonX.Y.
func (e *Environment) libDir() string {
	return filepath.Join(e.Prefix, "lib", "python"+e.Version)
}

// baseLibDir returns the stdlib directory of the base interpreter. The
// "home" key points at the directory holding the python binary, one
// level below the installation prefix.
func (e *Environment) baseLibDir() string {
	basePrefix := filepath.Dir(e.Home)
	return filepath.Join(basePrefix, "lib", "python"+e.Version)
}

// AdjustPath maps a stdlib path inside the environment to the matching
// path under the base interpreter. Paths outside the environment's lib
// directory, and anything under site-packages, are returned unchanged.
// A nil Environment adjusts nothing.
func (e *Environment) AdjustPath(fsys fs.FileSystem, path string) string {
	if e == nil {
		return path
	}

	norm := filepath.Clean(path)
	libDir := e.libDir()
	if !within(norm, libDir) {
		return path
	}
	if within(norm, filepath.Join(libDir, "site-packages")) {
		return path
	}

	rel, err := filepath.Rel(libDir, norm)
	if err != nil {
		return path
	}
	candidate := filepath.Join(e.baseLibDir(), rel)

	// Environments that copy rather than link parts of the stdlib get
	// the same treatment, but only when the contents really match.
	if fs.IsDir(fsys, norm) && fs.IsDir(fsys, candidate) {
		return candidate
	}
	if sameContents(fsys, norm, candidate) {
		return candidate
	}
	return path
}

// within reports whether path is base or sits below it.
func within(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(filepath.Separator))
}

func sameContents(fsys fs.FileSystem, path1, path2 string) bool {
	content1, err := fsys.ReadFile(path1)
	if err != nil {
		return false
	}
	content2, err := fsys.ReadFile(path2)
	if err != nil {
		return false
	}
	return bytes.Equal(content1, content2)
}
