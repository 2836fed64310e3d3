//go:build !windows

package web

import "golang.org/x/sys/unix"

// The review database and proofs are private to the user.
func setUmask() { unix.Umask(0077) }
