package queries

import (
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestQueryHelperAllStringsRecursive(t *testing.T) {
	// collect all query paths in QueryHelper
	var paths []string
	collectQueryPaths(reflect.ValueOf(QueryHelper), &paths)

	if len(paths) == 0 {
		t.Fatal("no query paths in QueryHelper found")
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			content := Get(path)
			if strings.TrimSpace(content) == "" {
				t.Errorf("query file %q is empty", path)
			}

			// every query is executed with pgx.NamedArgs
			if !strings.Contains(content, "@") {
				t.Errorf("query file %q has no named arguments", path)
			}
		})
	}

	// raw count of .sql files in queries folder
	count := 0
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			count++
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Error walking the path: %v", err)
	}

	// force a 1:1 relationship between sql files on disk and the QueryHelper
	if count != len(paths) {
		t.Fatalf("number of .sql files does not match number of query paths in QueryHelper (%d != %d)", count, len(paths))
	}
}

func TestGetPanicsOnUnknownQuery(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic reading a query that is not embedded")
		}
	}()

	Get("select/does_not_exist.sql")
}

// collectQueryPaths recursively walks v and appends every string field value to paths
func collectQueryPaths(v reflect.Value, paths *[]string) {
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)

		if field.Kind() == reflect.String {
			if s := field.String(); s != "" {
				*paths = append(*paths, s)
			}
		} else {
			collectQueryPaths(field, paths)
		}
	}
}
