package web

// No-op on Windows.
func setUmask() {}
