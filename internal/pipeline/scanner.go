package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source represents a discovered FITS file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input root.
	RelPath string
	// Key is the asset key (relpath without extension).
	Key string
	// Size is the file size in bytes.
	Size int64
}

// fitsExtensions lists recognized FITS file extensions.
var fitsExtensions = map[string]bool{
	".fits": true,
	".fit":  true,
	".fts":  true,
}

// IsFITSName reports whether path carries a FITS extension.
func IsFITSName(path string) bool {
	return fitsExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scan returns the FITS files under input. A single file is returned as
// is, whatever its extension; a directory is walked recursively, skipping
// hidden directories. Results are sorted by key.
func Scan(input string) ([]Source, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		name := filepath.Base(input)
		return []Source{{
			AbsPath: input,
			RelPath: name,
			Key:     strings.TrimSuffix(name, filepath.Ext(name)),
			Size:    info.Size(),
		}}, nil
	}
	return scanDir(input)
}

func scanDir(inputDir string) ([]Source, error) {
	var sources []Source
	keys := map[string]string{}

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(info.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsFITSName(path) {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		// Key: relative path without extension, using forward slashes.
		key := strings.TrimSuffix(relPath, filepath.Ext(relPath))
		if prev, dup := keys[key]; dup {
			return fmt.Errorf("%s and %s map to the same key %q", prev, relPath, key)
		}
		keys[key] = relPath

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: relPath,
			Key:     key,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	return sources, nil
}
