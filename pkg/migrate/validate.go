package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"
)

var migrationNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every .sql file in dir and reports all problems at once:
// the file name must be <YYYYMMDDHHMMSS>_<slug>.sql with a real timestamp,
// versions must be unique, and the body needs goose Up and Down sections with
// balanced StatementBegin/StatementEnd markers. An empty directory is valid.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	versions := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}

		match := migrationNameRe.FindStringSubmatch(name)
		if match == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: expected YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		version := match[1]
		if _, err := time.Parse(versionLayout, version); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s is not a valid timestamp", name, version))
		}
		if prev, dup := versions[version]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s already used by %s", name, version, prev))
		}
		versions[version] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkGooseMarkers(name, string(body)))
	}
	return errs
}

func checkGooseMarkers(name, body string) error {
	var errs error
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(body, marker) {
			errs = multierr.Append(errs, fmt.Errorf("%s: missing %q", name, marker))
		}
	}
	begins := strings.Count(body, "-- +goose StatementBegin")
	ends := strings.Count(body, "-- +goose StatementEnd")
	if begins != ends {
		errs = multierr.Append(errs, fmt.Errorf("%s: %d StatementBegin vs %d StatementEnd", name, begins, ends))
	}
	return errs
}
