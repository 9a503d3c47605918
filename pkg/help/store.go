// Package help holds the per-chip command help documents and the driver
// API index used by the search and man commands.
package help

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/akam1o/mcli/pkg/cmdkey"
	"github.com/akam1o/mcli/pkg/errors"
)

// Param is one entry of a command's parameter list. Structure parameters
// carry their members in Fields.
type Param struct {
	Name   string  `json:"name"`
	Desc   string  `json:"desc"`
	Fields []Param `json:"fields,omitempty"`
}

// Entry is the help record of one command.
type Entry struct {
	Help     string  `json:"help"`
	ParaList []Param `json:"paraList"`
	Example  string  `json:"example"`
}

// Store answers help lookups for one loaded document. It is read-only
// after Load.
type Store struct {
	name    string
	entries map[cmdkey.Key]Entry
}

// Load reads a document of the form module -> subcommand -> Entry. Direct
// commands live under the empty module. name identifies the document in
// error messages.
func Load(r io.Reader, name string) (*Store, error) {
	var doc map[string]map[string]Entry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.MetadataParseError(name, err)
	}

	s := &Store{name: name, entries: make(map[cmdkey.Key]Entry)}
	for module, subs := range doc {
		for sub, e := range subs {
			key := cmdkey.New(module, sub)
			if _, dup := s.entries[key]; dup {
				return nil, errors.MetadataParseError(name,
					fmt.Errorf("entry %q appears twice after case folding", key))
			}
			s.entries[key] = e
		}
	}
	return s, nil
}

// LoadFile loads a document from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MetadataNotFound(path)
		}
		return nil, errors.MetadataParseError(path, err)
	}
	defer f.Close()
	return Load(f, path)
}

// Empty returns a store without entries.
func Empty() *Store {
	return &Store{name: "empty", entries: map[cmdkey.Key]Entry{}}
}

// Name returns the document name the store was loaded from.
func (s *Store) Name() string { return s.name }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Lookup returns the entry for (module, sub).
func (s *Store) Lookup(module, sub string) (Entry, bool) {
	e, ok := s.entries[cmdkey.New(module, sub)]
	return e, ok
}

// Usage renders the usage line, the indented parameter tree and the
// example of (module, sub).
func (s *Store) Usage(module, sub string) (string, bool) {
	e, ok := s.Lookup(module, sub)
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString(e.Help)
	b.WriteByte('\n')
	writeParams(&b, e.ParaList, 1)
	if e.Example != "" {
		fmt.Fprintf(&b, "Example:\n  %s\n", e.Example)
	}
	return b.String(), true
}

// writeParams prints one line per parameter, indenting nested fields two
// spaces per level.
func writeParams(b *strings.Builder, params []Param, depth int) {
	for _, p := range params {
		indent := strings.Repeat("  ", depth)
		if p.Desc != "" {
			fmt.Fprintf(b, "%s%s: %s\n", indent, p.Name, p.Desc)
		} else {
			fmt.Fprintf(b, "%s%s\n", indent, p.Name)
		}
		writeParams(b, p.Fields, depth+1)
	}
}

// CheckValidItem reports whether the parameter list of (module, sub)
// mentions field at any depth. Display commands use it to hide fields a
// chip variant does not have.
func (s *Store) CheckValidItem(module, sub, field string) bool {
	e, ok := s.Lookup(module, sub)
	if !ok {
		return false
	}
	return containsParam(e.ParaList, cmdkey.Fold(field))
}

func containsParam(params []Param, folded string) bool {
	for _, p := range params {
		if cmdkey.Fold(p.Name) == folded || containsParam(p.Fields, folded) {
			return true
		}
	}
	return false
}
