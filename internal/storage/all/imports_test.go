package all

import (
	"testing"

	"elt/internal/storage"
)

func TestAllBackendsRegistered(t *testing.T) {
	got := storage.ListKinds()
	want := []string{"mssql", "mysql", "postgres", "sqlite"}
	if len(got) != len(want) {
		t.Fatalf("ListKinds() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListKinds() = %v, want %v", got, want)
		}
	}
}
