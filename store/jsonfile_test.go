package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestJSONFileDocumentLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "links.json")
	st := NewJSONFile(path)

	if err := st.Put(ctx, testRecord("layout-token-00000001")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.SeenUser(ctx, 42); err != nil {
		t.Fatalf("SeenUser: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse document: %v", err)
	}
	for _, key := range []string{"files", "users"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing top-level %q key", key)
		}
	}
}

func TestJSONFilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "links.json")

	st := NewJSONFile(path)
	want := testRecord("reopen-token-00000001")
	if err := st.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	st.Close()

	st = NewJSONFile(path)
	got, err := st.Get(ctx, want.Token)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Name != want.Name || got.FileRef != want.FileRef {
		t.Errorf("reopened record = %+v, want %+v", got, want)
	}
}

func TestJSONFileConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "links.json")
	st := NewJSONFile(path)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- st.Put(ctx, testRecord(fmt.Sprintf("concurrent-token-%05d", i)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Put: %v", err)
		}
	}

	// No lost updates: every write survived the read-modify-write.
	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Files != writers {
		t.Fatalf("Files = %d, want %d", stats.Files, writers)
	}
}
