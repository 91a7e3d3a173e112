package main

import (
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// El binario del panel no enlaza el backend simulado; solo el proveedor de indicadores de ejemplo.
func TestImports_SinBackendSimulado(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "main.go", nil, parser.ImportsOnly)
	require.NoError(t, err)

	const fixtures = "github.com/jhoicas/panel-clientes/internal/infrastructure/fixtures"
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		require.NoError(t, err)
		if path == fixtures || (strings.HasPrefix(path, fixtures+"/") && path != fixtures+"/simulated") {
			t.Errorf("cmd/panel importa %s", path)
		}
	}
}
