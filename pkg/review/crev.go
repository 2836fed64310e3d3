package review

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/mod/semver"
)

// Crev runs cargo-crev.
type Crev interface {
	// Publish pushes the local proof repository.
	Publish(ctx context.Context) (string, error)
	// Fetch fetches the proofs of all known reviewers.
	Fetch(ctx context.Context) (string, error)
	// Verify checks the dependencies of the project in dir.
	Verify(ctx context.Context, dir string) ([]VerifyRow, error)
}

// VerifyRow is one dependency in the output of a verification.
type VerifyRow struct {
	Status  string
	Name    string
	Version string
}

// Verified returns whether the dependency passed the verification.
func (r VerifyRow) Verified() bool {
	return r.Status == "pass" || r.Status == "local"
}

// Runner implements Crev by running cargo.
type Runner struct {
	// Path of the cargo binary.
	Cargo string
	// Passphrase of the crev identity, sent when cargo-crev asks for it.
	Passphrase string
}

// NewRunner creates a Runner. If cargo is empty, "cargo" is looked up in the
// PATH when running commands.
func NewRunner(cargo, passphrase string) *Runner {
	if cargo == "" {
		cargo = "cargo"
	}
	return &Runner{cargo, passphrase}
}

func (r *Runner) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.Cargo, append([]string{"crev"}, args...)...)
	cmd.Dir = dir
	logger.Println("running", cmd.Args)
	return cmd
}

func (r *Runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := r.command(ctx, dir, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("cargo crev %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Publish runs "cargo crev repo publish" on a terminal, answering the
// passphrase prompt.
func (r *Runner) Publish(ctx context.Context) (string, error) {
	return runWithPassphrase(r.command(ctx, "", "repo", "publish"), r.Passphrase)
}

// Fetch runs "cargo crev repo fetch all".
func (r *Runner) Fetch(ctx context.Context) (string, error) {
	return r.run(ctx, "", "repo", "fetch", "all")
}

// Verify runs "cargo crev crate verify" in dir and parses its output.
func (r *Runner) Verify(ctx context.Context, dir string) ([]VerifyRow, error) {
	cmd := r.command(ctx, dir, "crate", "verify", "--show-all")
	// Progress and warnings go to stderr; only stdout has the table.
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("cargo crev crate verify: %w\n%s%s", err, out, stderr.Bytes())
	}
	return ParseVerify(string(out)), nil
}

// Statuses cargo-crev reports for a dependency.
var verifyStatuses = map[string]bool{
	"pass": true, "none": true, "warn": true,
	"flagged": true, "dangerous": true, "local": true,
}

// ParseVerify parses the output of "cargo crev crate verify". Each
// dependency is a line whose first field is a known status and whose last two
// fields are the crate name and a semantic version. Other lines, like the
// header and cargo's messages, are skipped.
func ParseVerify(out string) []VerifyRow {
	var rows []VerifyRow
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || !verifyStatuses[fields[0]] {
			continue
		}
		n := len(fields)
		if !semver.IsValid("v" + fields[n-1]) {
			continue
		}
		rows = append(rows, VerifyRow{fields[0], fields[n-2], fields[n-1]})
	}
	return rows
}

// Whether the output so far ends with a passphrase prompt.
func isPassphrasePrompt(out []byte) bool {
	line := out[bytes.LastIndexByte(out, '\n')+1:]
	return bytes.Contains(bytes.ToLower(line), []byte("passphrase"))
}

// Normalizes terminal line endings and masks the passphrase.
func cleanOutput(out, passphrase string) string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	if passphrase != "" {
		out = strings.ReplaceAll(out, passphrase, "***")
	}
	return out
}
