// seehuhn.de/go/cffopt - optimize Type 2 charstrings
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package buildinfo describes the version of the running binary.
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"
)

// Short returns a short version string for a command, e.g.
// "cffopt (seehuhn.de/go/cffopt v0.1.0)".
func Short(name string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return name
	}
	return short(name, info)
}

func short(name string, info *debug.BuildInfo) string {
	if v := version(info); v != "" {
		return name + " (" + info.Main.Path + " " + v + ")"
	}
	return name
}

// Write prints the version string of the command, the Go version used to
// build it and the versions of all dependencies whose module path starts
// with one of the given prefixes.
func Write(w io.Writer, name string, prefixes ...string) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		_, err := fmt.Fprintln(w, name)
		return err
	}
	return write(w, name, info, prefixes)
}

func write(w io.Writer, name string, info *debug.BuildInfo, prefixes []string) error {
	b := &strings.Builder{}
	fmt.Fprintln(b, short(name, info))
	if info.GoVersion != "" {
		fmt.Fprintf(b, "  built with %s\n", info.GoVersion)
	}
	for _, dep := range info.Deps {
		if !hasAnyPrefix(dep.Path, prefixes) {
			continue
		}
		if dep.Replace != nil {
			dep = dep.Replace
		}
		fmt.Fprintf(b, "  %s %s\n", dep.Path, dep.Version)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// version returns the module version, or the abbreviated VCS revision
// for development builds.
func version(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 8 {
		rev = rev[:8]
	}
	if dirty && rev != "" {
		rev += "+dirty"
	}
	return rev
}
