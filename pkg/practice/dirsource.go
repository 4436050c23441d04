package practice

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DirSource exposes a working directory as a FileSet. Paths are rooted at
// "/" with forward slashes; dot-directories are skipped.
type DirSource struct {
	Root string
}

func (s DirSource) Files() (FileSet, error) {
	files := FileSet{}
	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files["/"+filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read working dir: %w", err)
	}
	return files, nil
}

// Materialize writes files under root, replacing whatever is there for
// those paths. Paths escaping root are rejected.
func Materialize(root string, files FileSet) error {
	for _, p := range files.Paths() {
		clean := path.Clean("/" + p)
		if clean == "/" || strings.Contains(p, "..") {
			return fmt.Errorf("refusing to write %q outside %s", p, root)
		}
		target := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(files[p]), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every non-hidden entry under root.
func Clear(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
