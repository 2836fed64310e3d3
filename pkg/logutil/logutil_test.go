package logutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	logger := GetLogger("[test] ")
	var sb strings.Builder
	SetOutput(&sb)
	t.Cleanup(func() { SetOutput(io.Discard) })

	logger.Println("hello")
	if got := sb.String(); !strings.HasPrefix(got, "[test] ") || !strings.HasSuffix(got, "hello\n") {
		t.Errorf("logged %q", got)
	}

	// Loggers created after SetOutput also use the current output.
	GetLogger("[late] ").Println("world")
	if !strings.Contains(sb.String(), "[late] ") {
		t.Errorf("new logger does not write to the current output")
	}
}

func TestSetOutputFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "log")
	logger := GetLogger("[file] ")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	logger.Println("to file")
	// Closes the file.
	if err := SetOutputFile(""); err != nil {
		t.Fatal(err)
	}
	logger.Println("discarded")

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if s := string(data); !strings.Contains(s, "to file") || strings.Contains(s, "discarded") {
		t.Errorf("log file contains %q", s)
	}
}
