// Package archive resolves user-supplied paths into safe locations under
// the archive root and inventories the teletext page files of a folder.
package archive
