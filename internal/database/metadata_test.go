package database

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetFolderMetaMissingRow(t *testing.T) {
	db := newTestDatabase(t)

	meta, err := db.GetFolderMeta(context.Background(), "news/2001")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if meta.Path != "news/2001" || meta.Title != "" || meta.Description != "" {
		t.Errorf("missing row yielded %+v, want empty annotation", meta)
	}
}

func TestSetAndGetFolderMeta(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	err := db.SetFolderMeta(ctx, FolderMeta{
		Path:        "news/2001",
		Title:       "News archive 2001",
		Description: "Captured ceefax pages",
	})
	if err != nil {
		t.Fatalf("SetFolderMeta: %v", err)
	}

	meta, err := db.GetFolderMeta(ctx, "news/2001")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if meta.Title != "News archive 2001" || meta.Description != "Captured ceefax pages" {
		t.Errorf("roundtrip yielded %+v", meta)
	}
	if meta.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not recorded")
	}
}

func TestSetFolderMetaUpserts(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second"} {
		if err := db.SetFolderMeta(ctx, FolderMeta{Path: "sport", Title: title}); err != nil {
			t.Fatalf("SetFolderMeta(%s): %v", title, err)
		}
	}

	meta, err := db.GetFolderMeta(ctx, "sport")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if meta.Title != "second" {
		t.Errorf("title = %q, want the later write", meta.Title)
	}
}

func TestDeleteFolderMetaRemovesSubtree(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	seed := []string{"ab", "ab/sub", "abc", "ab2/other"}
	for _, path := range seed {
		if err := db.SetFolderMeta(ctx, FolderMeta{Path: path, Title: path}); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}

	if err := db.DeleteFolderMeta(ctx, "ab"); err != nil {
		t.Fatalf("DeleteFolderMeta: %v", err)
	}

	for path, want := range map[string]string{
		"ab":        "",    // deleted
		"ab/sub":    "",    // deleted with the subtree
		"abc":       "abc", // sibling with a shared prefix survives
		"ab2/other": "ab2/other",
	} {
		meta, err := db.GetFolderMeta(ctx, path)
		if err != nil {
			t.Fatalf("GetFolderMeta(%s): %v", path, err)
		}
		if meta.Title != want {
			t.Errorf("after delete, %s title = %q, want %q", path, meta.Title, want)
		}
	}
}

func TestRenameFolderMetaMovesSubtree(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	seed := []string{"old", "old/2001", "old/2002", "older"}
	for _, path := range seed {
		if err := db.SetFolderMeta(ctx, FolderMeta{Path: path, Title: "t:" + path}); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}

	if err := db.RenameFolderMeta(ctx, "old", "renamed"); err != nil {
		t.Fatalf("RenameFolderMeta: %v", err)
	}

	moved, err := db.GetFolderMeta(ctx, "renamed/2001")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if moved.Title != "t:old/2001" {
		t.Errorf("descendant did not follow rename: %+v", moved)
	}

	stale, err := db.GetFolderMeta(ctx, "old/2001")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if stale.Title != "" {
		t.Errorf("stale path still annotated: %+v", stale)
	}

	prefix, err := db.GetFolderMeta(ctx, "older")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if prefix.Title != "t:older" {
		t.Errorf("prefix sibling was touched by rename: %+v", prefix)
	}
}

func TestRenameFolderMetaMultibytePath(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for _, path := range []string{"Архив", "Архив/Новости", "Архив/Спорт"} {
		if err := db.SetFolderMeta(ctx, FolderMeta{Path: path, Title: "t:" + path}); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}

	if err := db.RenameFolderMeta(ctx, "Архив", "Ceefax"); err != nil {
		t.Fatalf("RenameFolderMeta: %v", err)
	}

	for oldPath, newPath := range map[string]string{
		"Архив":         "Ceefax",
		"Архив/Новости": "Ceefax/Новости",
		"Архив/Спорт":   "Ceefax/Спорт",
	} {
		meta, err := db.GetFolderMeta(ctx, newPath)
		if err != nil {
			t.Fatalf("GetFolderMeta(%s): %v", newPath, err)
		}
		if meta.Title != "t:"+oldPath {
			t.Errorf("%s title = %q, want %q", newPath, meta.Title, "t:"+oldPath)
		}
	}
}

func TestDeleteFolderMetaEscapesWildcards(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for _, path := range []string{"a_b", "a_b/sub", "axb/sub"} {
		if err := db.SetFolderMeta(ctx, FolderMeta{Path: path, Title: path}); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}

	if err := db.DeleteFolderMeta(ctx, "a_b"); err != nil {
		t.Fatalf("DeleteFolderMeta: %v", err)
	}

	// An unescaped underscore would also match axb/sub.
	meta, err := db.GetFolderMeta(ctx, "axb/sub")
	if err != nil {
		t.Fatalf("GetFolderMeta: %v", err)
	}
	if meta.Title != "axb/sub" {
		t.Errorf("LIKE wildcard leaked: %+v", meta)
	}
}
