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

// Package profile adds pprof support to command line tools.
package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Session is a running profiling session.
type Session struct {
	cpuFile    *os.File
	memprofile string
}

// Start begins CPU profiling if cpuprofile is non-empty.  If memprofile
// is non-empty, an allocation profile is written when the session is
// stopped.
func Start(cpuprofile, memprofile string) (*Session, error) {
	s := &Session{memprofile: memprofile}
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return nil, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not start CPU profile: %w", err)
		}
		s.cpuFile = f
	}
	return s, nil
}

// Stop ends the session and writes the requested profiles.
// It is safe to call Stop more than once.
func (s *Session) Stop() error {
	var errs []error
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := s.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not write CPU profile: %w", err))
		}
		s.cpuFile = nil
	}
	if s.memprofile != "" {
		if err := writeAllocs(s.memprofile); err != nil {
			errs = append(errs, err)
		}
		s.memprofile = ""
	}
	return errors.Join(errs...)
}

func writeAllocs(fname string) (err error) {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not write memory profile: %w", cerr)
		}
	}()

	runtime.GC()
	allocs := pprof.Lookup("allocs")
	if allocs == nil {
		return errors.New("could not lookup memory profile")
	}
	if err := allocs.WriteTo(f, 0); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}
