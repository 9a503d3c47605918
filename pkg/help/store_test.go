package help

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akam1o/mcli/pkg/errors"
)

const testDoc = `{
  "": {
    "rr": {"help": "rr <devAddr> <regAddr>", "paraList": [{"name": "devAddr"}, {"name": "regAddr"}], "example": "rr 0 0"}
  },
  "Port": {
    "SetMtu": {
      "help": "port setMtu <port> <mtu>",
      "paraList": [
        {"name": "port", "desc": "logical port"},
        {"name": "cfg", "desc": "settings", "fields": [
          {"name": "mtu", "desc": "frame size"},
          {"name": "jumbo", "fields": [{"name": "mode", "desc": "encoding"}]}
        ]}
      ],
      "example": "port setMtu 3 1500"
    }
  }
}`

func loadTestDoc(t *testing.T) *Store {
	t.Helper()
	s, err := Load(strings.NewReader(testDoc), "test.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestLookup_CaseInsensitive(t *testing.T) {
	s := loadTestDoc(t)

	tests := []struct {
		module, sub string
		want        bool
	}{
		{"port", "setMtu", true},
		{"PORT", "SETMTU", true},
		{"port", "setmtu", true},
		{"", "RR", true},
		{"port", "getMtu", false},
		{"vlan", "setMtu", false},
	}
	for _, tt := range tests {
		t.Run(tt.module+"/"+tt.sub, func(t *testing.T) {
			_, ok := s.Lookup(tt.module, tt.sub)
			if ok != tt.want {
				t.Errorf("Lookup(%q, %q) ok = %v, want %v", tt.module, tt.sub, ok, tt.want)
			}
		})
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestUsage_IndentsNestedFields(t *testing.T) {
	s := loadTestDoc(t)

	got, ok := s.Usage("port", "setMtu")
	if !ok {
		t.Fatal("Usage not found")
	}
	want := `port setMtu <port> <mtu>
  port: logical port
  cfg: settings
    mtu: frame size
    jumbo
      mode: encoding
Example:
  port setMtu 3 1500
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Usage mismatch (-want +got):\n%s", diff)
	}

	if _, ok := s.Usage("port", "nope"); ok {
		t.Error("Usage for unknown command reported ok")
	}
}

func TestCheckValidItem(t *testing.T) {
	s := loadTestDoc(t)

	tests := []struct {
		field string
		want  bool
	}{
		{"port", true},
		{"mtu", true},
		{"MTU", true},
		{"mode", true},
		{"trunkMember", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := s.CheckValidItem("port", "setMtu", tt.field); got != tt.want {
				t.Errorf("CheckValidItem(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
	if s.CheckValidItem("atu", "dump", "mtu") {
		t.Error("CheckValidItem on unknown command = true")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"port": `},
		{"unknown field", `{"port": {"setMtu": {"help": "x", "usage": "y"}}}`},
		{"folded duplicate", `{"port": {"setMtu": {"help": "a"}, "SETMTU": {"help": "b"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), "bad.json")
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !errors.As(err, &e) || e.Code != errors.ErrCodeMetadataParseError {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeMetadataParseError)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chip.json")
	if err := os.WriteFile(path, []byte(testDoc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if s.Name() != path {
		t.Errorf("Name() = %q, want %q", s.Name(), path)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, &errors.Error{Code: errors.ErrCodeMetadataNotFound}) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestBuiltinDocuments(t *testing.T) {
	docs := BuiltinDocuments()
	if diff := cmp.Diff([]string{"BonsaiZ1.json", "Topaz.json"}, docs); diff != "" {
		t.Errorf("BuiltinDocuments mismatch (-want +got):\n%s", diff)
	}

	z1, err := LoadBuiltin("BonsaiZ1.json")
	if err != nil {
		t.Fatalf("LoadBuiltin(BonsaiZ1) failed: %v", err)
	}
	topaz, err := LoadBuiltin("Topaz.json")
	if err != nil {
		t.Fatalf("LoadBuiltin(Topaz) failed: %v", err)
	}

	if !z1.CheckValidItem("port", "getStatus", "mtu") {
		t.Error("BonsaiZ1 port getStatus lacks mtu")
	}
	if topaz.CheckValidItem("port", "getStatus", "mtu") {
		t.Error("Topaz port getStatus lists mtu")
	}
	if _, ok := topaz.Lookup("tcam", "setIpv4Match"); ok {
		t.Error("Topaz document has tcam commands")
	}

	if _, err := LoadBuiltin("Opal.json"); err == nil {
		t.Error("LoadBuiltin(Opal) succeeded")
	}
}
