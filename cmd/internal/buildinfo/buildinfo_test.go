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

package buildinfo

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	cases := []struct {
		info *debug.BuildInfo
		want string
	}{
		{&debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, "v1.2.3"},
		{&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, ""},
		{&debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
			},
		}, "01234567"},
		{&debug.BuildInfo{
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, "01234567+dirty"},
	}
	for _, test := range cases {
		if got := version(test.info); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}

func TestShort(t *testing.T) {
	s := Short("cffopt")
	if !strings.HasPrefix(s, "cffopt") {
		t.Errorf("unexpected version string %q", s)
	}
}

func TestWrite(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.24.3",
		Main:      debug.Module{Path: "seehuhn.de/go/cffopt", Version: "v0.2.0"},
		Deps: []*debug.Module{
			{Path: "github.com/benoitkugler/pstokenizer", Version: "v1.0.0"},
			{Path: "github.com/google/go-cmp", Version: "v0.7.0"},
			{Path: "seehuhn.de/go/geom", Version: "v0.6.0",
				Replace: &debug.Module{Path: "seehuhn.de/go/geom", Version: "v0.6.1"}},
		},
	}
	buf := &bytes.Buffer{}
	err := write(buf, "cffopt", info, []string{"seehuhn.de/", "github.com/benoitkugler/"})
	if err != nil {
		t.Fatal(err)
	}
	want := "cffopt (seehuhn.de/go/cffopt v0.2.0)\n" +
		"  built with go1.24.3\n" +
		"  github.com/benoitkugler/pstokenizer v1.0.0\n" +
		"  seehuhn.de/go/geom v0.6.1\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
