package prog

import "flag"

// FlagSet wraps a [flag.FlagSet]. Flags shared by several subprograms are
// registered lazily through its methods, so that each is only defined once.
type FlagSet struct {
	*flag.FlagSet
	log  *string
	db   *string
	json *bool
}

// Log returns a pointer to the value of the -log flag, which is defined for
// all subprograms.
func (fs *FlagSet) Log() *string { return fs.log }

// DB returns a pointer to the value of the -db flag.
func (fs *FlagSet) DB() *string {
	if fs.db == nil {
		var db string
		fs.StringVar(&db, "db", "",
			"Path to the review database; defaults to crevgui.db in the user config directory")
		fs.db = &db
	}
	return fs.db
}

// JSON returns a pointer to the value of the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"Show the output from -buildinfo or -check in JSON")
		fs.json = &json
	}
	return fs.json
}
