// Package corpus runs extraction over a directory of hearings and keeps the
// per-hearing entity lists.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/hearinglist/internal/parser"
)

// File is one hearing-list document and the hearing it belongs to.
type File struct {
	Path    string
	Hearing string
}

// Discover lists the hearing-list files under hearingsDir, laid out as
// <hearingsDir>/<hearing-id>/<file>. A file is selected when its base name
// contains pattern and its extension is supported. When ids is non-nil only
// folders named by one of the ids are visited. Results are ordered by folder
// then file name.
func Discover(hearingsDir, pattern string, ids []int) ([]File, error) {
	folders, err := os.ReadDir(hearingsDir)
	if err != nil {
		return nil, fmt.Errorf("read hearings dir: %w", err)
	}

	var wanted map[int]bool
	if ids != nil {
		wanted = make(map[int]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
	}

	var files []File
	for _, folder := range folders {
		if !folder.IsDir() {
			continue
		}
		if wanted != nil {
			id, err := strconv.Atoi(folder.Name())
			if err != nil || !wanted[id] {
				continue
			}
		}
		dir := filepath.Join(hearingsDir, folder.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read hearing %s: %w", folder.Name(), err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !strings.Contains(e.Name(), pattern) || !parser.IsSupportedExtension(e.Name()) {
				continue
			}
			path := filepath.ToSlash(filepath.Join(dir, e.Name()))
			files = append(files, File{Path: path, Hearing: HearingOf(path)})
		}
	}
	return files, nil
}

// HearingOf returns the hearing id of a path: the name of its parent
// directory.
func HearingOf(path string) string {
	return filepath.Base(filepath.Dir(filepath.FromSlash(path)))
}
