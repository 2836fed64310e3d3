//go:build !windows

package review

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// Runs cmd on a pseudo-terminal, since cargo-crev only asks for the
// passphrase on a terminal. The passphrase is masked in the output.
func runWithPassphrase(cmd *exec.Cmd, passphrase string) (string, error) {
	tty, err := pty.Start(cmd)
	if err != nil {
		return "", err
	}
	defer tty.Close()

	var out bytes.Buffer
	answered := false
	buf := make([]byte, 1024)
	for {
		n, err := tty.Read(buf)
		out.Write(buf[:n])
		if !answered && isPassphrasePrompt(out.Bytes()) {
			io.WriteString(tty, passphrase+"\n")
			answered = true
		}
		if err != nil {
			// EOF, or EIO on Linux once the child has exited.
			break
		}
	}
	err = cmd.Wait()
	output := cleanOutput(out.String(), passphrase)
	if err != nil {
		return output, fmt.Errorf("%v: %w", cmd.Args[1:], err)
	}
	return output, nil
}
