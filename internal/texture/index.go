package texture

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Index maps texture IDs to filesystem paths. An ID is either a path
// relative to the texture directory (with or without extension) or a
// bare file stem; all lookups are case-insensitive.
type Index struct {
	dir     string
	entries map[string]string // normalized key → full path
	paths   []string
}

// BuildIndex scans dir and its subdirectories for image files. A missing
// directory yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{dir: dir, entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	var found []string
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rank(filepath.Ext(path)) < 0 {
			return nil
		}
		found = append(found, path)
		return nil
	})
	// Preferred extensions claim shared keys first.
	sort.SliceStable(found, func(i, j int) bool {
		return rank(filepath.Ext(found[i])) < rank(filepath.Ext(found[j]))
	})

	for _, path := range found {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		rel = strings.ToLower(filepath.ToSlash(rel))
		noExt := strings.TrimSuffix(rel, filepath.Ext(rel))
		stem := filepath.Base(noExt)

		idx.entries[rel] = path
		for _, k := range []string{noExt, stem} {
			if _, exists := idx.entries[k]; !exists {
				idx.entries[k] = path
			}
		}
		idx.paths = append(idx.paths, path)
	}
	sort.Strings(idx.paths)
	return idx
}

func rank(ext string) int {
	ext = strings.ToLower(ext)
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// ResolvePath returns the filesystem path for a texture ID, or ("", false).
func (idx *Index) ResolvePath(id string) (string, bool) {
	key := strings.ToLower(strings.ReplaceAll(id, "\\", "/"))
	key = strings.TrimPrefix(key, "./")
	if path, ok := idx.entries[key]; ok {
		return path, true
	}
	noExt := strings.TrimSuffix(key, filepath.Ext(key))
	if path, ok := idx.entries[noExt]; ok {
		return path, true
	}
	path, ok := idx.entries[filepath.Base(noExt)]
	return path, ok
}

// Paths returns every indexed file, sorted.
func (idx *Index) Paths() []string {
	return idx.paths
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.paths)
}
