// Package standards holds the regulatory concentration limits that samples
// are checked against for compliance reporting. Tables are immutable once
// loaded.
package standards

import (
	"fmt"
	"os"
	"sort"

	"github.com/smukkama/aquasure-server/internal/hmpi"
	"gopkg.in/yaml.v3"
)

const (
	WHO = "WHO"
	BBI = "BBI"
)

// Table maps a metal to its permissible concentration limit in mg/L.
type Table map[hmpi.Metal]float64

// Limit returns the limit for a metal and whether the table defines one.
func (t Table) Limit(m hmpi.Metal) (float64, bool) {
	v, ok := t[m]
	return v, ok
}

// Exceeds reports whether concentration is strictly above the limit for m.
// A metal the table does not cover never exceeds.
func (t Table) Exceeds(m hmpi.Metal, concentration float64) bool {
	limit, ok := t[m]
	return ok && concentration > limit
}

func (t Table) clone() Table {
	out := make(Table, len(t))
	for m, v := range t {
		out[m] = v
	}
	return out
}

var builtin = map[string]Table{
	WHO: {
		hmpi.Lead:     0.01,
		hmpi.Arsenic:  0.01,
		hmpi.Chromium: 0.05,
		hmpi.Mercury:  0.006,
		hmpi.Cadmium:  0.003,
	},
	BBI: {
		hmpi.Lead:     0.01,
		hmpi.Arsenic:  0.01,
		hmpi.Chromium: 0.05,
		hmpi.Mercury:  0.001,
		hmpi.Cadmium:  0.003,
	},
}

// Registry is a read-only set of named standards.
type Registry struct {
	tables map[string]Table
}

// Default returns the built-in WHO and BBI tables.
func Default() *Registry {
	r := &Registry{tables: make(map[string]Table, len(builtin))}
	for name, t := range builtin {
		r.tables[name] = t.clone()
	}
	return r
}

// Names returns the standard names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns a copy of the named table.
func (r *Registry) Table(name string) (Table, bool) {
	t, ok := r.tables[name]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

type fileFormat struct {
	Standards map[string]map[string]float64 `yaml:"standards"`
}

// Load returns the built-in registry with any tables in path layered on top.
// A table named in the file replaces the built-in table of the same name
// entirely. An empty path returns Default().
func Load(path string) (*Registry, error) {
	r := Default()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read standards file: %w", err)
	}
	return r.merge(data)
}

func (r *Registry) merge(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse standards file: %w", err)
	}

	for name, limits := range f.Standards {
		if name == "" {
			return nil, fmt.Errorf("standard with empty name")
		}
		t := make(Table, len(limits))
		for metal, limit := range limits {
			if limit <= 0 {
				return nil, fmt.Errorf("standard %s: limit for %s must be positive, got %v", name, metal, limit)
			}
			t[hmpi.Metal(metal)] = limit
		}
		r.tables[name] = t
	}
	return r, nil
}
