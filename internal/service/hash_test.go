package service_test

import (
	"testing"

	"github.com/msomdec/photocat/internal/service"
)

func TestDeriveAlbumID(t *testing.T) {
	id := service.DeriveAlbumID("Vacation")

	if len(id) != 16 {
		t.Fatalf("expected 16 hex chars, got %d (%q)", len(id), id)
	}
	if id != service.DeriveAlbumID("Vacation") {
		t.Fatal("same name must derive the same id")
	}
	if id == service.DeriveAlbumID("vacation") {
		t.Fatal("derivation must be case-sensitive")
	}
	if id == service.DeriveAlbumID("Vacation ") {
		t.Fatal("distinct names must derive distinct ids")
	}

	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("non-hex character %q in id %q", c, id)
		}
	}
}
