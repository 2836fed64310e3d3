// Package check implements the -check subprogram, which parses templates and
// reports their errors.
package check

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"github.com/mattn/go-isatty"
	"src.crevgui.dev/pkg/asset"
	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/must"
	"src.crevgui.dev/pkg/prog"
	"src.crevgui.dev/pkg/tmpl"
)

// Program is the check subprogram.
type Program struct {
	run  bool
	json *bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "check", false,
		"Check the template files given as arguments, or the embedded templates, and quit")
	p.json = fs.JSON()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	sources, err := readSources(args)
	if err != nil {
		return err
	}
	problems := Check(sources)

	if *p.json {
		fmt.Fprintln(fds[1], mustToJSON(problemsToJSON(problems)))
	} else {
		var w io.Writer = fds[2]
		if !isatty.IsTerminal(fds[2].Fd()) && !isatty.IsCygwinTerminal(fds[2].Fd()) {
			w = plainWriter{w}
		}
		for _, problem := range problems {
			diag.ShowError(w, problem)
		}
	}
	if len(problems) > 0 {
		return prog.Exit(2)
	}
	return nil
}

// Source is a template source to check.
type Source struct {
	// The file name, used in error messages.
	Filename string
	Code     string
}

// Reads the given files, or the embedded templates when there are none.
func readSources(files []string) ([]Source, error) {
	if len(files) == 0 {
		templates := asset.Default().Templates()
		names := make([]string, 0, len(templates))
		for name := range templates {
			names = append(names, name)
		}
		sort.Strings(names)
		sources := make([]Source, len(names))
		for i, name := range names {
			sources[i] = Source{name, templates[name]}
		}
		return sources, nil
	}
	sources := make([]Source, len(files))
	for i, file := range files {
		code, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		sources[i] = Source{file, string(code)}
	}
	return sources, nil
}

// Check parses each source as a template, and checks that the includes of
// the templates that parse are found among them. Templates are named after
// their file names without the directory and extension.
func Check(sources []Source) []error {
	var problems []error
	var templates []*tmpl.Template
	for _, src := range sources {
		t, err := tmpl.Parse(src.Filename, src.Code)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		templates = append(templates, t)
	}
	// Templates in a set are keyed by name, while errors name the file.
	renamed := make([]*tmpl.Template, len(templates))
	files := make(map[string]string, len(templates))
	for i, t := range templates {
		named := *t
		named.Name = asset.TemplateName(t.Name)
		renamed[i] = &named
		files[named.Name] = t.Name
	}
	for _, err := range tmpl.NewSet(renamed...).Check() {
		if e, ok := diag.AsError[tmpl.ParseErrorTag](err); ok {
			e.Context.Name = files[e.Context.Name]
		}
		problems = append(problems, err)
	}
	return problems
}

type problemJSON struct {
	File    string `json:"file"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func problemsToJSON(problems []error) []problemJSON {
	out := make([]problemJSON, len(problems))
	for i, err := range problems {
		out[i] = problemJSON{Kind: errs.KindOf(err).String(), Message: err.Error()}
		if e, ok := diag.AsError[tmpl.ParseErrorTag](err); ok {
			out[i].File = e.Context.Name
			out[i].Message = e.Message
			out[i].Line, out[i].Column = e.Context.Position()
		}
	}
	return out
}

func mustToJSON(v any) string {
	return string(must.OK1(json.Marshal(v)))
}

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// Drops the terminal styling from everything written to it.
type plainWriter struct{ w io.Writer }

func (p plainWriter) Write(b []byte) (int, error) {
	_, err := p.w.Write(sgrPattern.ReplaceAll(b, nil))
	return len(b), err
}
