// Crevgui is a browser GUI for editing cargo-crev reviews. It serves the GUI
// and the backend the GUI talks to, and also includes a language server and
// a checker for the GUI's templates.
package main

import (
	"os"

	"src.crevgui.dev/pkg/buildinfo"
	"src.crevgui.dev/pkg/check"
	"src.crevgui.dev/pkg/lsp"
	"src.crevgui.dev/pkg/pprof"
	"src.crevgui.dev/pkg/prog"
	"src.crevgui.dev/pkg/web"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&pprof.Program{}, &buildinfo.Program{}, &lsp.Program{}, &check.Program{},
			&web.Program{})))
}
