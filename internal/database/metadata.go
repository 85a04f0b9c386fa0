package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// FolderMeta is the operator-editable annotation for an archive folder.
// The zero value means "no annotation recorded".
type FolderMeta struct {
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// GetFolderMeta retrieves the metadata for an archive path. A folder
// without a row yields an empty FolderMeta, not an error.
func (d *Database) GetFolderMeta(ctx context.Context, path string) (FolderMeta, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	meta := FolderMeta{Path: path}
	err := d.db.QueryRowContext(ctx,
		"SELECT title, description, updated_at FROM folder_meta WHERE path = ?", path,
	).Scan(&meta.Title, &meta.Description, &meta.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		observe("get_meta", start, nil)
		return FolderMeta{Path: path}, nil
	}
	observe("get_meta", start, err)
	if err != nil {
		return FolderMeta{}, fmt.Errorf("failed to load metadata for %q: %w", path, err)
	}
	return meta, nil
}

// SetFolderMeta inserts or replaces the metadata for an archive path.
func (d *Database) SetFolderMeta(ctx context.Context, meta FolderMeta) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO folder_meta (path, title, description, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP
	`, meta.Path, meta.Title, meta.Description)
	observe("set_meta", start, err)
	if err != nil {
		return fmt.Errorf("failed to save metadata for %q: %w", meta.Path, err)
	}
	return nil
}

// DeleteFolderMeta removes the metadata row for a path and for everything
// beneath it, for use when a folder is deleted or renamed away.
func (d *Database) DeleteFolderMeta(ctx context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM folder_meta WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		path, prefixPattern(path))
	observe("delete_meta", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete metadata for %q: %w", path, err)
	}
	return nil
}

// RenameFolderMeta rewrites metadata paths after a folder rename so
// annotations follow the folder.
func (d *Database) RenameFolderMeta(ctx context.Context, oldPath, newPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// SUBSTR counts characters, not bytes; Cyrillic and other multibyte
	// folder names would otherwise swallow the separator slash.
	start := time.Now()
	_, err := d.db.ExecContext(ctx, `
		UPDATE OR REPLACE folder_meta
		SET path = ? || SUBSTR(path, ?), updated_at = CURRENT_TIMESTAMP
		WHERE path = ? OR path LIKE ? ESCAPE '\'
	`, newPath, utf8.RuneCountInString(oldPath)+1, oldPath, prefixPattern(oldPath))
	observe("rename_meta", start, err)
	if err != nil {
		return fmt.Errorf("failed to move metadata %q -> %q: %w", oldPath, newPath, err)
	}
	return nil
}

// prefixPattern builds a LIKE pattern matching descendants of path, with
// LIKE wildcards in the path itself escaped out of the way.
func prefixPattern(path string) string {
	escaped := strings.NewReplacer("%", `\%`, "_", `\_`).Replace(path)
	return escaped + "/%"
}
