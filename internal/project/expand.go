package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Selector filters candidate files with doublestar patterns. Patterns match
// slash-separated paths relative to the directory being expanded.
type Selector struct {
	Include []string
	Exclude []string
}

// Selector returns the file selector of the [run] table.
func (c Config) Selector() Selector {
	return Selector{Include: c.Run.Include, Exclude: c.Run.Exclude}
}

func (s Selector) included(rel string) bool {
	if len(s.Include) == 0 {
		return true
	}
	return matchAny(s.Include, rel)
}

func (s Selector) excluded(rel string) bool {
	return matchAny(s.Exclude, rel)
}

// excludedDir prunes directories whose whole subtree is excluded.
func (s Selector) excludedDir(rel string) bool {
	return matchAny(s.Exclude, rel) || matchAny(s.Exclude, rel+"/x")
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Expand turns CLI arguments into a sorted, de-duplicated file list.
// A directory is walked and filtered by the selector; a glob is expanded
// and filtered by the exclude patterns only; a plain file is taken as is.
func Expand(args []string, sel Selector) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, arg := range args {
		info, statErr := os.Stat(arg)
		switch {
		case statErr == nil && info.IsDir():
			files, err := walkDir(arg, sel)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		case statErr == nil:
			add(arg)
		case hasMeta(arg):
			if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
				return nil, fmt.Errorf("bad pattern %q", arg)
			}
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("failed to expand %q: %w", arg, err)
			}
			for _, m := range matches {
				if !sel.excluded(filepath.ToSlash(m)) {
					add(m)
				}
			}
		default:
			// пусть драйвер сообщит об ошибке чтения
			add(arg)
		}
	}
	sort.Strings(out)
	return out, nil
}

func walkDir(root string, sel Selector) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && sel.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if sel.included(rel) && !sel.excluded(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

func hasMeta(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
