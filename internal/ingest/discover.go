package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type SourceFile struct {
	Path string
}

var sourceExts = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".mdx":      {},
}

// IsSource reports whether name looks like a post source file.
func IsSource(name string) bool {
	_, ok := sourceExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DiscoverSource returns every post file under root, sorted by path.
// Hidden directories and files are skipped.
func DiscoverSource(root string) ([]SourceFile, error) {
	var out []SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if IsSource(name) {
			out = append(out, SourceFile{Path: path})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, err
}
