// Package handlers implements the HTTP API: folder browsing, page and
// thumbnail serving, thumbnail regeneration with SSE progress, folder
// metadata, and the thin file-manager endpoints.
package handlers
