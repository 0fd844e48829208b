package config

import "path/filepath"

// Library file layout under the library directory.
const (
	LibraryFile = "library.jsonl"
	CacheDir    = "cache"
	DBFile      = "library.db"
)

// LibraryPath returns the path to library.jsonl under dir.
func LibraryPath(dir string) string {
	return filepath.Join(dir, LibraryFile)
}

// CachePath returns the path to the cache directory under dir.
func CachePath(dir string) string {
	return filepath.Join(dir, CacheDir)
}

// DBPath returns the path to library.db under dir.
func DBPath(dir string) string {
	return filepath.Join(dir, CacheDir, DBFile)
}
