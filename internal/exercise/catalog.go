package exercise

import (
	"fmt"
	"strings"
)

// Catalog is an ordered, validated set of exercise kinds.
type Catalog struct {
	kinds []Kind
	index map[string]int
}

// NewCatalog validates kinds and indexes them by key and display name.
func NewCatalog(kinds ...Kind) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(kinds)*2)}
	for _, k := range kinds {
		if err := k.Validate(); err != nil {
			return nil, err
		}
		key, name := strings.ToLower(k.Key), strings.ToLower(k.Name)
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate exercise %q", k.Key)
		}
		if _, dup := c.index[name]; dup && name != key {
			return nil, fmt.Errorf("duplicate exercise name %q", k.Name)
		}
		c.kinds = append(c.kinds, k)
		c.index[key] = len(c.kinds) - 1
		c.index[name] = len(c.kinds) - 1
	}
	return c, nil
}

// Merge returns the built-in table with overrides applied: a row whose key
// matches a built-in replaces it in place, any other row is appended.
func Merge(base []Kind, overrides []Kind) []Kind {
	out := append([]Kind(nil), base...)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if strings.EqualFold(out[i].Key, o.Key) {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

// Lookup finds a kind by key or display name, case-insensitively.
func (c *Catalog) Lookup(name string) (Kind, bool) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Kind{}, false
	}
	return c.kinds[i], true
}

// Kinds returns the kinds in catalog order.
func (c *Catalog) Kinds() []Kind {
	return append([]Kind(nil), c.kinds...)
}
