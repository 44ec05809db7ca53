package core

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const module = "github.com/yamdb/catalogue-api/"

// The core may depend on shared pkg/ helpers but never on the adapters
// around it.
func TestCoreDoesNotImportAdapters(t *testing.T) {
	forbidden := []string{module + "internal/api", module + "internal/infrastructure", module + "cmd"}

	for _, dir := range []string{"domain", "ports", "service"} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ImportsOnly)
			require.NoError(t, err)
			for _, imp := range f.Imports {
				p, err := strconv.Unquote(imp.Path.Value)
				require.NoError(t, err)
				for _, prefix := range forbidden {
					if strings.HasPrefix(p, prefix) {
						t.Errorf("%s imports %s", path, p)
					}
				}
			}
		}
	}
}
