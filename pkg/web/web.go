// Package web implements the backend of crevgui: an HTTP server on localhost
// that serves the GUI and answers its requests from the review store.
package web

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"src.crevgui.dev/pkg/env"
	"src.crevgui.dev/pkg/logutil"
	"src.crevgui.dev/pkg/prog"
	"src.crevgui.dev/pkg/review"
)

var logger = logutil.GetLogger("[web] ")

// DefaultPort is the default port of the web server.
const DefaultPort = 3171

// Program is the web subprogram.
type Program struct {
	run    bool
	port   int
	static string
	cargo  string
	db     *string
	log    *string
	// Used in tests.
	serveOpts ServeOpts
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "web", false, "Run the GUI backend")
	fs.IntVar(&p.port, "port", DefaultPort, "The port of the GUI backend")
	fs.StringVar(&p.static, "static", "",
		"Directory with crevgui.wasm and wasm_exec.js, served under /static/")
	fs.StringVar(&p.cargo, "crev", "cargo", "Path to the cargo binary with cargo-crev installed")
	p.db = fs.DB()
	p.log = fs.Log()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -web")
	}
	if p.port <= 0 || p.port > 65535 {
		return prog.BadUsage(fmt.Sprintf("invalid port %d", p.port))
	}
	dbPath := *p.db
	if dbPath == "" {
		dbPath = os.Getenv(env.CREVGUI_DB)
	}
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return err
		}
	}
	if *p.log == "" {
		logutil.SetOutput(fds[2])
	}
	setUmask()

	st, err := review.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("cannot open review database: %w", err)
	}
	defer st.Close()

	cwd, _ := os.Getwd()
	srv := NewServer(st, review.NewRunner(p.cargo, os.Getenv(env.CREVGUI_PASSPHRASE)),
		ServerOpts{StaticDir: p.static, ProjectDir: cwd})
	fmt.Fprintf(fds[1], "Serving on http://localhost:%d\n", p.port)
	return Serve(fmt.Sprintf("localhost:%d", p.port), srv.Handler(), p.serveOpts)
}

func defaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "crevgui")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "crevgui.db"), nil
}

// ServeOpts keeps options that can be passed to Serve.
type ServeOpts struct {
	// If not nil, receives the address of the listener when the server is
	// ready to serve requests.
	Ready chan<- string
	// Causes the server to shut down if closed or sent any data. If nil, Serve
	// will set up its own signal channel by listening to SIGINT and SIGTERM.
	Signals <-chan os.Signal
}

// Serve serves HTTP on addr until a signal is received.
func Serve(addr string, h http.Handler, opts ServeOpts) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.Println("listening on", listener.Addr())
	server := &http.Server{Handler: h}

	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- server.Serve(listener) }()

	sigCh := opts.Signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(ch)
		sigCh = ch
	}
	if opts.Ready != nil {
		opts.Ready <- listener.Addr().String()
	}

	select {
	case sig := <-sigCh:
		logger.Printf("received signal %v", sig)
		err := server.Close()
		<-serveErrCh
		return err
	case err := <-serveErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
