// Package asset holds the files embedded in the GUI: the page shell, the
// stylesheet and the templates.
package asset

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"src.crevgui.dev/pkg/must"
)

//go:embed index.html style.css templates/*.html
var files embed.FS

// Names of the assets that are not templates.
const (
	Index = "index.html"
	Style = "style.css"
)

const templateDir = "templates/"

// EmbeddedAsset is a named file. Bytes must not be modified.
type EmbeddedAsset struct {
	Name  string
	Bytes []byte
}

// Registry is an immutable set of assets, keyed by name.
type Registry struct {
	assets map[string]EmbeddedAsset
}

// NewRegistry creates a Registry. Later assets replace earlier ones with the
// same name.
func NewRegistry(assets ...EmbeddedAsset) *Registry {
	r := &Registry{make(map[string]EmbeddedAsset, len(assets))}
	for _, a := range assets {
		r.assets[a.Name] = a
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the Registry of embedded assets. Template assets are named
// "templates/<name>.html".
func Default() *Registry {
	defaultOnce.Do(func() {
		var assets []EmbeddedAsset
		must.OK(fs.WalkDir(files, ".", func(name string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			assets = append(assets, EmbeddedAsset{name, must.OK1(files.ReadFile(name))})
			return nil
		}))
		defaultRegistry = NewRegistry(assets...)
	})
	return defaultRegistry
}

// Get finds an asset by name.
func (r *Registry) Get(name string) (EmbeddedAsset, bool) {
	a, ok := r.assets[name]
	return a, ok
}

// Names returns the names of all assets, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.assets))
	for name := range r.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Templates returns the sources of all template assets, keyed by template
// name: "templates/crate_list.html" becomes "crate_list".
func (r *Registry) Templates() map[string]string {
	sources := make(map[string]string)
	for name, a := range r.assets {
		if !strings.HasPrefix(name, templateDir) || path.Ext(name) != ".html" {
			continue
		}
		sources[TemplateName(name)] = string(a.Bytes)
	}
	return sources
}

// TemplateName returns the template name for a file name, by removing the
// directory and the extension.
func TemplateName(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}
