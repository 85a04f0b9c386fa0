package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Teletext page numbers are always three digits.
const (
	MinPageNumber = 100
	MaxPageNumber = 999
)

// PageRecord describes one archived page within a folder: its teletext
// number and whether a rendered thumbnail already exists beside it. Records
// are derived from the filesystem on every listing and never stored.
type PageRecord struct {
	Number       int    `json:"number"`
	FileName     string `json:"fileName"`
	HasThumbnail bool   `json:"hasThumbnail"`
}

// ListPages lists the page files of an archive folder in ascending page
// order. Files whose stem is not a 3-digit number in [100, 999] are
// excluded. The result reflects filesystem state at call time; nothing is
// cached, since folders are edited concurrently.
func ListPages(folderAbs string) ([]PageRecord, error) {
	entries, err := os.ReadDir(folderAbs)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folderAbs, err)
	}

	byNumber := make(map[int]PageRecord)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		number, ok := ParsePageFileName(entry.Name())
		if !ok {
			continue
		}
		// .html wins over a stray .htm twin for the same number
		if prev, exists := byNumber[number]; exists && strings.HasSuffix(prev.FileName, ".html") {
			continue
		}

		htmlPath := filepath.Join(folderAbs, entry.Name())
		_, statErr := os.Stat(ThumbnailPath(htmlPath))
		byNumber[number] = PageRecord{
			Number:       number,
			FileName:     entry.Name(),
			HasThumbnail: statErr == nil,
		}
	}

	pages := make([]PageRecord, 0, len(byNumber))
	for _, record := range byNumber {
		pages = append(pages, record)
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Number < pages[j].Number
	})

	return pages, nil
}

// ListFolders returns the names of the subfolders of an archive folder in
// lexical order, skipping hidden entries.
func ListFolders(folderAbs string) ([]string, error) {
	entries, err := os.ReadDir(folderAbs)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folderAbs, err)
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folders = append(folders, entry.Name())
	}
	sort.Strings(folders)
	return folders, nil
}

// ParsePageFileName extracts the page number from a page file name.
// Only exactly-three-digit stems with a page-file extension qualify.
func ParsePageFileName(name string) (int, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".html" && ext != ".htm" {
		return 0, false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if len(stem) != 3 {
		return 0, false
	}
	number, err := strconv.Atoi(stem)
	if err != nil {
		return 0, false
	}
	if number < MinPageNumber || number > MaxPageNumber {
		return 0, false
	}
	return number, true
}

// ThumbnailPath returns the deterministic thumbnail location for a page
// file: same directory, same stem, .png extension.
func ThumbnailPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".png"
}
