package archive

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestListPages(t *testing.T) {
	dir := t.TempDir()

	// Pages in scrambled creation order, plus files that must be excluded
	for _, name := range []string{
		"105.html", "101.html", "103.html",
		"abc.html",  // non-numeric stem
		"099.html",  // below range
		"1000.html", // four digits
		"10.html",   // two digits
		"101.txt",   // wrong extension
		"notes.md",
	} {
		writeFile(t, filepath.Join(dir, name))
	}
	writeFile(t, filepath.Join(dir, "103.png"))
	if err := os.Mkdir(filepath.Join(dir, "777.html"), 0o755); err != nil {
		t.Fatalf("failed to create decoy dir: %v", err)
	}

	pages, err := ListPages(dir)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}

	want := []PageRecord{
		{Number: 101, FileName: "101.html", HasThumbnail: false},
		{Number: 103, FileName: "103.html", HasThumbnail: true},
		{Number: 105, FileName: "105.html", HasThumbnail: false},
	}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("ListPages = %+v, want %+v", pages, want)
	}
}

func TestListPagesRepeatableWithoutMutation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "100.html"))
	writeFile(t, filepath.Join(dir, "200.html"))
	writeFile(t, filepath.Join(dir, "200.png"))

	first, err := ListPages(dir)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	second, err := ListPages(dir)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated ListPages differ: %+v vs %+v", first, second)
	}
}

func TestListPagesSeesNewThumbnails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "150.html"))

	pages, err := ListPages(dir)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if pages[0].HasThumbnail {
		t.Fatal("HasThumbnail true before artifact exists")
	}

	writeFile(t, filepath.Join(dir, "150.png"))

	pages, err = ListPages(dir)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if !pages[0].HasThumbnail {
		t.Error("HasThumbnail false after artifact was created")
	}
}

func TestListPagesMissingFolder(t *testing.T) {
	if _, err := ListPages(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("ListPages on missing folder succeeded, want error")
	}
}

func TestListFolders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2003", "2001", ".hidden"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, filepath.Join(dir, "101.html"))

	folders, err := ListFolders(dir)
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	want := []string{"2001", "2003"}
	if !reflect.DeepEqual(folders, want) {
		t.Errorf("ListFolders = %v, want %v", folders, want)
	}
}

func TestParsePageFileName(t *testing.T) {
	tests := []struct {
		name       string
		wantNumber int
		wantOK     bool
	}{
		{"100.html", 100, true},
		{"999.html", 999, true},
		{"345.htm", 345, true},
		{"345.HTML", 345, true},
		{"099.html", 0, false},
		{"1000.html", 0, false},
		{"12.html", 0, false},
		{"abc.html", 0, false},
		{"1a3.html", 0, false},
		{"101.txt", 0, false},
		{"101", 0, false},
		{"+99.html", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number, ok := ParsePageFileName(tt.name)
			if ok != tt.wantOK || number != tt.wantNumber {
				t.Errorf("ParsePageFileName(%q) = (%d, %v), want (%d, %v)",
					tt.name, number, ok, tt.wantNumber, tt.wantOK)
			}
		})
	}
}

func TestThumbnailPath(t *testing.T) {
	tests := []struct {
		htmlPath string
		want     string
	}{
		{"/archive/f/101.html", "/archive/f/101.png"},
		{"/archive/f/101.htm", "/archive/f/101.png"},
	}
	for _, tt := range tests {
		if got := ThumbnailPath(tt.htmlPath); got != tt.want {
			t.Errorf("ThumbnailPath(%q) = %q, want %q", tt.htmlPath, got, tt.want)
		}
	}
}
