package help

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/akam1o/mcli/pkg/cmdkey"
	"github.com/akam1o/mcli/pkg/errors"
)

// API is one driver entry point with its one-line description.
type API struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`
}

// APIDoc is the index behind "search" and "man".
type APIDoc struct {
	apis []API
}

// LoadAPIDoc reads a JSON array of API records.
func LoadAPIDoc(r io.Reader, name string) (*APIDoc, error) {
	var apis []API
	if err := json.NewDecoder(r).Decode(&apis); err != nil {
		return nil, errors.MetadataParseError(name, err)
	}
	sort.Slice(apis, func(i, j int) bool { return apis[i].Name < apis[j].Name })
	return &APIDoc{apis: apis}, nil
}

// Search returns the APIs whose name contains substr, case-insensitively.
func (d *APIDoc) Search(substr string) []API {
	needle := cmdkey.Fold(substr)
	var out []API
	for _, a := range d.apis {
		if strings.Contains(cmdkey.Fold(a.Name), needle) {
			out = append(out, a)
		}
	}
	return out
}

// Man returns the API named name.
func (d *APIDoc) Man(name string) (API, bool) {
	for _, a := range d.apis {
		if cmdkey.Equal(a.Name, name) {
			return a, true
		}
	}
	return API{}, false
}

// Len returns the number of indexed APIs.
func (d *APIDoc) Len() int { return len(d.apis) }
