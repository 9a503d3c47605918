package help

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAPIDoc_SearchAndMan(t *testing.T) {
	doc, err := LoadAPIDoc(strings.NewReader(`[
		{"name": "SetPortMTU", "doc": "set mtu"},
		{"name": "GetPortMTU", "doc": "get mtu"},
		{"name": "FlushATU", "doc": "flush"}
	]`), "api.json")
	if err != nil {
		t.Fatalf("LoadAPIDoc failed: %v", err)
	}

	got := doc.Search("mtu")
	want := []API{
		{Name: "GetPortMTU", Doc: "get mtu"},
		{Name: "SetPortMTU", Doc: "set mtu"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Search("vlan"); len(got) != 0 {
		t.Errorf("Search(vlan) = %v", got)
	}

	api, ok := doc.Man("flushatu")
	if !ok || api.Doc != "flush" {
		t.Errorf("Man(flushatu) = %+v, %v", api, ok)
	}
	if _, ok := doc.Man("Flush"); ok {
		t.Error("Man matched a prefix")
	}
}

func TestBuiltinAPIDoc(t *testing.T) {
	doc, err := BuiltinAPIDoc()
	if err != nil {
		t.Fatalf("BuiltinAPIDoc failed: %v", err)
	}
	if doc.Len() == 0 {
		t.Fatal("empty API index")
	}
	if _, ok := doc.Man("SetPortMTU"); !ok {
		t.Error("SetPortMTU missing from API index")
	}
}

func TestLoadAPIDoc_Invalid(t *testing.T) {
	if _, err := LoadAPIDoc(strings.NewReader(`{"name": 1}`), "api.json"); err == nil {
		t.Error("expected error for non-array document")
	}
}
