package tactile

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Executables lists the unique command names found on pathEnv
// (a PATH-style list), sorted. Unreadable directories are skipped.
func Executables(pathEnv string) []string {
	seen := make(map[string]struct{})
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if !isExecutable(dir, e) {
				continue
			}
			if runtime.GOOS == "windows" {
				name = strings.TrimSuffix(name, filepath.Ext(name))
			}
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isExecutable(dir string, e os.DirEntry) bool {
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".exe", ".bat", ".cmd", ".com":
			return true
		}
		return false
	}
	info, err := e.Info()
	if err != nil {
		return false
	}
	// Follow symlinks so /usr/bin style alternatives count.
	if info.Mode()&os.ModeSymlink != 0 {
		if info, err = os.Stat(filepath.Join(dir, e.Name())); err != nil || info.IsDir() {
			return false
		}
	}
	return info.Mode().Perm()&0111 != 0
}
