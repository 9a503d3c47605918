package help

import (
	"embed"
	"io/fs"
	"path"

	"github.com/akam1o/mcli/pkg/errors"
)

//go:embed builtin/*.json
var builtinFS embed.FS

// APIDocFile is the file name of the driver API index.
const APIDocFile = "api.json"

// LoadBuiltin loads an embedded help document by file name, e.g.
// "BonsaiZ1.json".
func LoadBuiltin(file string) (*Store, error) {
	f, err := builtinFS.Open(path.Join("builtin", file))
	if err != nil {
		return nil, errors.MetadataNotFound(file)
	}
	defer f.Close()
	return Load(f, file)
}

// BuiltinAPIDoc loads the embedded driver API index.
func BuiltinAPIDoc() (*APIDoc, error) {
	f, err := builtinFS.Open(path.Join("builtin", APIDocFile))
	if err != nil {
		return nil, errors.MetadataNotFound(APIDocFile)
	}
	defer f.Close()
	return LoadAPIDoc(f, APIDocFile)
}

// BuiltinDocuments lists the embedded help document names.
func BuiltinDocuments() []string {
	names, _ := fs.Glob(builtinFS, "builtin/*.json")
	out := make([]string, 0, len(names))
	for _, n := range names {
		if b := path.Base(n); b != APIDocFile {
			out = append(out, b)
		}
	}
	return out
}
