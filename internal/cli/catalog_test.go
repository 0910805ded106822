package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")
	a := writeFile(t, dir, "adults.yaml", adultsYAML)
	u := writeFile(t, dir, "us.yaml", usYAML)
	grown := writeFile(t, dir, "grownups.yaml", "name: grownups\nentity: person\nparam: g\nwhere: [{field: age, op: gte, value: 18}]\n")

	text := &RootOptions{Format: "text"}

	out, err := execute(t, NewCatalogCommand(text), "put", a, u, grown, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "adults\tperson\t")

	out, err = execute(t, NewCatalogCommand(text), "list", "--db", db)
	require.NoError(t, err)
	lines := splitLines(out)
	require.Len(t, lines, 3)
	assert.Regexp(t, `^adults\tperson\t[0-9a-f]{12}\trev 1$`, lines[0])
	assert.Regexp(t, `^grownups\t`, lines[1])
	assert.Regexp(t, `^us\t`, lines[2])

	out, err = execute(t, NewCatalogCommand(text), "get", "adults", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "adults (person) rev 1")
	assert.Contains(t, out, "x => (x.age >= 18)")
	assert.Contains(t, out, "equivalent: grownups")

	// Re-putting bumps the revision.
	_, err = execute(t, NewCatalogCommand(text), "put", a, "--db", db)
	require.NoError(t, err)
	out, err = execute(t, NewCatalogCommand(&RootOptions{Format: "json"}), "get", "adults", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   CatalogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Revision)
	assert.Equal(t, []string{"grownups"}, resp.Data.Equivalent)

	out, err = execute(t, NewCatalogCommand(text), "delete", "us", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "deleted us\n", out)

	out, err = execute(t, NewCatalogCommand(text), "get", "us", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestCatalog_EmptyList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, err := execute(t, NewCatalogCommand(&RootOptions{Format: "text"}), "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No definitions.\n", out)

	out, err = execute(t, NewCatalogCommand(&RootOptions{Format: "json"}), "list", "--db", db)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"entries":[]}}`, out)
}

func TestCatalog_DeleteMissing(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	_, err := execute(t, NewCatalogCommand(&RootOptions{Format: "text"}), "delete", "ghost", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCatalog_PutInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "name: bad\nentity: order\nwhere: [{field: at, op: gt, type: datetime, value: someday}]\n")

	out, err := execute(t, NewCatalogCommand(&RootOptions{Format: "text"}), "put", bad, "--db", filepath.Join(dir, "c.db"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E208")
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
