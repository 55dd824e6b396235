package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `
-- first
CREATE TABLE a (x Int64) ENGINE = MergeTree() ORDER BY x;

-- second
CREATE TABLE b (y String) ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(sql)

	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE b"))
}

func TestCheckSplittable(t *testing.T) {
	assert.NoError(t, checkSplittable(`SELECT 'it''s fine'; SELECT 1;`))
	assert.Error(t, checkSplittable(`SELECT 'a;b';`))
}

func TestEmbeddedFiles(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, pg, 2)
	assert.Equal(t, "001_tokens.sql", pg[0].name)
	assert.Contains(t, pg[1].sql, "known_accounts")

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.Len(t, ch, 2)
	for _, m := range ch {
		assert.NoError(t, checkSplittable(m.sql), m.name)
		assert.Len(t, splitStatements(m.sql), 1, m.name)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/market")
	require.NoError(t, err)
	assert.Equal(t, "market", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
