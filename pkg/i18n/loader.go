package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithYAMLDir loads {lang}/{namespace}.yaml (or .yml) files from fsys.
func WithYAMLDir(fsys fs.FS) Option {
	return func(i *I18n) error {
		return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(path.Ext(p)) {
			case ".yaml", ".yml":
			default:
				return nil
			}

			dir := path.Dir(p)
			if dir == "." {
				return fmt.Errorf("%w: %q is not inside a language directory", ErrInvalidFile, p)
			}

			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("i18n: read %q: %w", p, err)
			}
			var tr map[string]any
			if err := yaml.Unmarshal(data, &tr); err != nil {
				return fmt.Errorf("%w: %q: %s", ErrInvalidFile, p, err)
			}

			i.add(path.Base(dir), strings.TrimSuffix(path.Base(p), path.Ext(p)), tr)
			return nil
		})
	}
}
