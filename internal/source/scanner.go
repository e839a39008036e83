package source

import (
	"os"
	"path/filepath"
	"strings"
)

var tripExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// IsTripFile reports whether path has a trip file extension.
func IsTripFile(path string) bool {
	return tripExts[strings.ToLower(filepath.Ext(path))]
}

// ScanDir discovers trip files under root. A root that is itself a file
// is returned as the only result. Hidden directories are skipped.
func ScanDir(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []DiscoveredFile{newDiscovered(root)}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsTripFile(path) {
			return nil
		}
		files = append(files, newDiscovered(path))
		return nil
	})
	return files, err
}

func newDiscovered(path string) DiscoveredFile {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	base := filepath.Base(path)
	return DiscoveredFile{
		Path: path,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}
