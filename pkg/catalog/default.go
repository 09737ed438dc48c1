package catalog

import (
	_ "embed"
	"sync"
)

//go:embed data/default.yml
var defaultData []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns catalog built from embedded SigmaHQ conventions
// It is parsed once, the same read-only instance is shared by all callers
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultData)
	})
	return defaultCatalog, defaultErr
}
