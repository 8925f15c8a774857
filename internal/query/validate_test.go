package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReadOnly(t *testing.T) {
	ok := []string{
		"SELECT * FROM processed_proveedores LIMIT 10;",
		"select nit from processed_proveedores where estado = 'delete pending'",
		"WITH t AS (SELECT 1 AS n) SELECT n FROM t",
		"  SELECT created_at FROM processed_facturas  ",
		"SELECT * FROM t WHERE x = 'a;b'",
		"SELECT * FROM t WHERE url LIKE '%--%'",
	}
	for _, q := range ok {
		assert.NoError(t, ValidateReadOnly(q), q)
	}

	bad := map[string]string{
		"":                                   "empty sql",
		"DROP TABLE processed_proveedores":   "only SELECT",
		"SELECT 1; DROP TABLE x":             "multiple statements",
		"SELECT 'a'; DROP TABLE x":           "multiple statements",
		"SELECT 'a;b; DROP TABLE x":          "multiple statements",
		"SELECT 1 -- hi":                     "comments",
		"SELECT 1 /* hi */":                  "comments",
		"WITH x AS (DELETE FROM t) SELECT 1": "disallowed keyword: delete",
		"SELECT * FROM t WHERE 1=1 UNLOAD":   "disallowed keyword: unload",
	}
	for q, want := range bad {
		err := ValidateReadOnly(q)
		require.Error(t, err, q)
		assert.Contains(t, err.Error(), want, q)
	}
}
