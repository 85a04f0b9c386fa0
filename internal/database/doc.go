// Package database persists editable folder metadata (titles and
// descriptions) in SQLite. Page content itself lives on the filesystem;
// only operator-entered annotations need a database.
package database
