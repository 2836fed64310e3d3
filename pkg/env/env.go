// Package env keeps names of environment variables with special significance to
// crevgui.
package env

// Environment variables with special significance to crevgui.
const (
	// Passphrase of the crev identity, answered when cargo-crev asks for it.
	CREVGUI_PASSPHRASE = "CREVGUI_PASSPHRASE"
	// Path of the review database, used when -db is not given.
	CREVGUI_DB = "CREVGUI_DB"
	// Program used by open_external to open links; overrides the platform
	// default.
	BROWSER = "BROWSER"
)
