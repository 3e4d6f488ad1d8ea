package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationStatements(t *testing.T) {
	for _, dialect := range []string{"postgres", "sqlite"} {
		stmts, err := migrationStatements(dialect)
		require.NoError(t, err, dialect)
		require.NotEmpty(t, stmts, dialect)
		for _, stmt := range stmts {
			assert.False(t, strings.HasPrefix(stmt, "--"), "comment left in %s: %q", dialect, stmt)
			assert.NotContains(t, stmt, ";")
		}
	}

	_, err := migrationStatements("mysql")
	assert.Error(t, err)
}
