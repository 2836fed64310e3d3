package review

import (
	"fmt"
	"os/exec"
	"strings"
)

// Pseudo-terminals are not supported here; the passphrase is written to the
// standard input instead.
func runWithPassphrase(cmd *exec.Cmd, passphrase string) (string, error) {
	cmd.Stdin = strings.NewReader(passphrase + "\n")
	out, err := cmd.CombinedOutput()
	output := cleanOutput(string(out), passphrase)
	if err != nil {
		return output, fmt.Errorf("%v: %w", cmd.Args[1:], err)
	}
	return output, nil
}
