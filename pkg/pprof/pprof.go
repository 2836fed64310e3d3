// Package pprof implements the profiling flags of crevgui. A profile covers
// the whole run of the subprogram that handles the command line, be it the
// backend server, the template checker or the language server.
package pprof

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"src.crevgui.dev/pkg/prog"
)

// Program handles -cpuprofile and -allocsprofile. It goes first in the
// composite program of crevgui so that the profiles cover the subprogram
// that runs after it.
type Program struct {
	cpuProfile    string
	allocsProfile string
}

func (p *Program) RegisterFlags(f *prog.FlagSet) {
	f.StringVar(&p.cpuProfile, "cpuprofile", "",
		"Record a CPU profile of this run of crevgui to the file")
	f.StringVar(&p.allocsProfile, "allocsprofile", "",
		"Record the memory allocations of this run of crevgui to the file")
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	var cleanups []func([3]*os.File)
	if f := create(fds[2], p.cpuProfile, "CPU profile"); f != nil {
		if err := pprof.StartCPUProfile(f); err != nil {
			warn(fds[2], "CPU profile", err)
			f.Close()
		} else {
			cleanups = append(cleanups, func([3]*os.File) {
				pprof.StopCPUProfile()
				f.Close()
			})
		}
	}
	if f := create(fds[2], p.allocsProfile, "memory allocation profile"); f != nil {
		cleanups = append(cleanups, func(fds [3]*os.File) {
			if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
				warn(fds[2], "memory allocation profile", err)
			}
			f.Close()
		})
	}
	return prog.NextProgram(cleanups...)
}

// Returns nil when no profile is requested or the file can't be created. A
// profile that can't be written never stops crevgui from running.
func create(stderr io.Writer, path, what string) *os.File {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		warn(stderr, what, err)
		return nil
	}
	return f
}

func warn(w io.Writer, what string, err error) {
	fmt.Fprintf(w, "crevgui: cannot write %s, running without it: %v\n", what, err)
}
