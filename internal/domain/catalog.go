package domain

// Catalog names.
const (
	CatalogFull = "full"
	CatalogInit = "init"
)

// Catalog is an ordered list of fixes. Order encodes dependencies between
// fixes and is maintained by whoever authors the catalog; it is never
// re-sorted at runtime.
type Catalog struct {
	Name  string
	Fixes []Fix
}

// NewCatalog builds a catalog in the given order.
func NewCatalog(name string, fixes ...Fix) Catalog {
	return Catalog{Name: name, Fixes: fixes}
}

// Validate rejects catalogs the runner cannot execute: empty, nil entries,
// and missing or duplicate ids.
func (c Catalog) Validate() error {
	if len(c.Fixes) == 0 {
		return invalidCatalogf("catalog %q has no fixes", c.Name)
	}
	seen := make(map[string]int, len(c.Fixes))
	for i, f := range c.Fixes {
		if f == nil {
			return invalidCatalogf("catalog %q: fix at position %d is nil", c.Name, i)
		}
		id := f.Info().ID
		if id == "" {
			return invalidCatalogf("catalog %q: fix at position %d has no id", c.Name, i)
		}
		if prev, dup := seen[id]; dup {
			return invalidCatalogf("catalog %q: duplicate fix id %q at positions %d and %d", c.Name, id, prev, i)
		}
		seen[id] = i
	}
	return nil
}

// IDs returns the fix ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Fixes))
	for _, f := range c.Fixes {
		if f != nil {
			ids = append(ids, f.Info().ID)
		}
	}
	return ids
}

// Lookup finds a fix by id.
func (c Catalog) Lookup(id string) (Fix, bool) {
	for _, f := range c.Fixes {
		if f != nil && f.Info().ID == id {
			return f, true
		}
	}
	return nil, false
}

// Contains reports whether every id in ids is part of the catalog and returns
// the first one that is not.
func (c Catalog) Contains(ids []string) (string, bool) {
	for _, id := range ids {
		if _, ok := c.Lookup(id); !ok {
			return id, false
		}
	}
	return "", true
}
