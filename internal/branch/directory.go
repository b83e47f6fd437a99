// Package branch maps between short branch codes and their display names.
package branch

import (
	"path"
	"sort"
	"strings"
)

// Entry is one known branch.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Directory resolves either form of a branch identifier.
// It is read-only after construction.
type Directory struct {
	names map[string]string // code -> display name
	codes map[string]string // display name -> code
}

// NewDirectory builds a directory from a code -> display name map.
func NewDirectory(names map[string]string) *Directory {
	d := &Directory{
		names: make(map[string]string, len(names)),
		codes: make(map[string]string, len(names)),
	}
	for code, name := range names {
		code = strings.ToUpper(strings.TrimSpace(code))
		name = strings.TrimSpace(name)
		if code == "" || name == "" {
			continue
		}
		d.names[code] = name
		d.codes[name] = code
	}
	return d
}

// DisplayName returns the display name for a code or an already resolved name.
// Unknown input is returned trimmed but otherwise unchanged.
func (d *Directory) DisplayName(raw string) string {
	raw = strings.TrimSpace(raw)
	if name, ok := d.names[strings.ToUpper(raw)]; ok {
		return name
	}
	return raw
}

// Code returns the short code for a display name or a known code.
// Unknown input is returned trimmed but otherwise unchanged.
func (d *Directory) Code(raw string) string {
	raw = strings.TrimSpace(raw)
	if code, ok := d.codes[raw]; ok {
		return code
	}
	if _, ok := d.names[strings.ToUpper(raw)]; ok {
		return strings.ToUpper(raw)
	}
	return raw
}

// Known reports whether raw is a configured code or display name.
func (d *Directory) Known(raw string) bool {
	raw = strings.TrimSpace(raw)
	if _, ok := d.codes[raw]; ok {
		return true
	}
	_, ok := d.names[strings.ToUpper(raw)]
	return ok
}

// Candidates lists the names to try, in order, when looking up a branch row:
// the mapped display name first, then the raw input.
func (d *Directory) Candidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	mapped := d.DisplayName(raw)
	if mapped == raw {
		return []string{raw}
	}
	return []string{mapped, raw}
}

// FolderPath is the per-branch photo folder under root.
func (d *Directory) FolderPath(root, raw string) string {
	name := d.DisplayName(raw)
	if name == "" {
		name = "Unassigned"
	}
	if root == "" {
		return name
	}
	return path.Join(root, name)
}

// Entries returns the configured branches sorted by code.
func (d *Directory) Entries() []Entry {
	entries := make([]Entry, 0, len(d.names))
	for code, name := range d.names {
		entries = append(entries, Entry{Code: code, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}
