// Package thumbnail turns raw page screenshots into size-normalized PNG
// artifacts and drives bounded-concurrency generation batches over archive
// folders. The filesystem is the cache: an artifact's presence beside its
// page file is the only freshness signal.
package thumbnail
