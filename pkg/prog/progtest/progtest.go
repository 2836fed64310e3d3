// Package progtest contains utilities for testing [prog.Program] instances.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.crevgui.dev/pkg/must"
	"src.crevgui.dev/pkg/prog"
)

// Case is a test case for Test.
type Case struct {
	args []string
	want result
}

type result struct {
	exit   int
	stdout output
	stderr output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + o.content
	}
	return o.content
}

// ThatCrevgui returns a new Case with the specified CLI arguments. The first
// argument, the program name, is supplied implicitly.
func ThatCrevgui(args ...string) Case {
	return Case{args: args}
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that requires the exit code to be the
// given value.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires stdout to be the given
// value.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{s, false}
	return c
}

// WritesStdoutContaining returns an altered Case that requires stdout to
// contain the given text.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{s, true}
	return c
}

// WritesStderr returns an altered Case that requires stderr to be the given
// value.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{s, false}
	return c
}

// WritesStderrContaining returns an altered Case that requires stderr to
// contain the given text.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{s, true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(p, c.args...)
			if exit != c.want.exit {
				t.Errorf("got exit %v, want %v", exit, c.want.exit)
			}
			if !matchOutput(stdout, c.want.stdout) {
				t.Errorf("got stdout %q, want %s", stdout, c.want.stdout)
			}
			if !matchOutput(stderr, c.want.stderr) {
				t.Errorf("got stderr %q, want %s", stderr, c.want.stderr)
			}
		})
	}
}

// Run runs a Program with the given arguments and an empty stdin. It returns
// the exit status and the contents of stdout and stderr.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r0, w0 := must.OK2(os.Pipe())
	w0.Close()
	defer r0.Close()
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())

	// Drain the pipes while the program runs, so that it can't block on a
	// full pipe.
	outCh, errCh := readAllAsync(r1), readAllAsync(r2)
	exit = prog.Run([3]*os.File{r0, w1, w2}, append([]string{"crevgui"}, args...), p)
	w1.Close()
	w2.Close()
	return exit, <-outCh, <-errCh
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.OK1(io.ReadAll(r)))
		r.Close()
	}()
	return ch
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}
