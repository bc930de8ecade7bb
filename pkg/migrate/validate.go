package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var migrationName = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

var requiredAnnotations = []string{"-- +goose Up", "-- +goose Down"}

// ValidateDir checks every .sql file under dir for a timestamped name, a
// unique version and both goose sections. All problems are reported together.
func ValidateDir(fsys fs.FS, dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var problems error
	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}

		match := migrationName.FindStringSubmatch(name)
		if match == nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: name must look like YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		if first, dup := versions[match[1]]; dup {
			problems = multierr.Append(problems, fmt.Errorf("%s: version %s already used by %s", name, match[1], first))
		} else {
			versions[match[1]] = name
		}

		problems = multierr.Append(problems, checkAnnotations(fsys, path.Join(dir, name)))
	}
	return problems
}

func checkAnnotations(fsys fs.FS, file string) error {
	body, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("%s: %w", path.Base(file), err)
	}
	var missing []string
	for _, want := range requiredAnnotations {
		if !strings.Contains(string(body), want) {
			missing = append(missing, strings.TrimPrefix(want, "-- "))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing %s", path.Base(file), strings.Join(missing, ", "))
	}
	return nil
}
