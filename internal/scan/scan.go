package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are the transcript file types picked up by ScanRoot.
var Extensions = []string{".txt", ".vtt", ".srt"}

type FileInfo struct {
	Path  string
	Key   string // path relative to the root, slash-separated
	Mtime int64
	Size  int64
}

// ScanRoot walks root for transcript files. A missing root yields no files.
func ScanRoot(root string) ([]FileInfo, error) {
	if root == "" {
		return nil, nil
	}
	files, err := scanDir(root)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// IsTranscript reports whether path has a transcript extension.
func IsTranscript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// KeyFor returns the transcript key of path under root.
func KeyFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func scanDir(root string) ([]FileInfo, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsTranscript(path) || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Key:   KeyFor(root, path),
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}
