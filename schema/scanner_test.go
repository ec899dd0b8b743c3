package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatementsRespectsQuotedSemicolons(t *testing.T) {
	src := "CREATE TABLE t (x TEXT DEFAULT 'a;b''c'); CREATE TABLE u (y INTEGER);"
	got := splitStatements(src, "CREATE TABLE")
	assert.Equal(t, []string{
		"CREATE TABLE t (x TEXT DEFAULT 'a;b''c');",
		"CREATE TABLE u (y INTEGER);",
	}, got)
}

func TestSplitStatementsIgnoresUnrelatedPrefix(t *testing.T) {
	src := "CREATE VIRTUAL TABLE v USING fts5(x); CREATE TABLE t (x INTEGER);"
	got := splitStatements(src, "CREATE TABLE")
	assert.Equal(t, []string{"CREATE TABLE t (x INTEGER);"}, got)
}

func TestTableNameBareAndBracketed(t *testing.T) {
	assert.Equal(t, "foo", tableName("CREATE TABLE foo (x INTEGER);"))
	assert.Equal(t, "[foo bar]", tableName("CREATE TABLE [foo bar] (x INTEGER);"))
	assert.Equal(t, "foo", tableName("CREATE TABLE IF NOT EXISTS foo (x INTEGER);"))
}

func TestIndexTarget(t *testing.T) {
	assert.Equal(t, "foo", indexTarget("CREATE INDEX idx_foo_x ON foo (x);"))
	assert.Equal(t, "[foo bar]", indexTarget("CREATE INDEX idx ON [foo bar] (x);"))
}

func TestSameTableComparesBracketedAndBare(t *testing.T) {
	assert.True(t, sameTable("foo", "[foo]"))
	assert.False(t, sameTable("foo", "bar"))
}
