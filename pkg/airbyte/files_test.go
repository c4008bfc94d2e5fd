package airbyte_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/datacoves/dbt-coves/pkg/airbyte"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestExport(t *testing.T) {
	f := newFake(t)
	dir := t.TempDir()

	results, err := Export(context.Background(), f.client(t), dir)
	require.NoError(t, err)
	require.Len(t, results, 3)

	src, err := ReadObject(filepath.Join(dir, "sources", "postgres.json"))
	require.NoError(t, err)
	require.Equal(t, Object{
		"name":                    "Postgres",
		"sourceDefinitionId":      "def-pg",
		"connectionConfiguration": map[string]any{"host": "db"},
	}, src)

	dst, err := ReadObject(filepath.Join(dir, "destinations", "snowflake.json"))
	require.NoError(t, err)
	require.NotContains(t, dst, "destinationId")

	conn, err := ReadObject(filepath.Join(dir, "connections", "postgres_snowflake.json"))
	require.NoError(t, err)
	require.Equal(t, Object{
		"name":            "Postgres → Snowflake",
		"sourceName":      "Postgres",
		"destinationName": "Snowflake",
		"status":          "active",
	}, conn)

	require.Equal(t, Connections, results[2].Resource)
	require.Equal(t, Extracted, results[2].Action)
}

func TestExport_CollidingNames(t *testing.T) {
	f := newFake(t)
	f.responses["/api/v1/sources/list"] = map[string]any{
		"sources": []any{
			map[string]any{"sourceId": "src-1", "name": "Postgres Prod"},
			map[string]any{"sourceId": "src-2", "name": "postgres-prod"},
		},
	}
	dir := t.TempDir()

	results, err := Export(context.Background(), f.client(t), dir)
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.Equal(t, filepath.Join(dir, "sources", "postgres_prod.json"), results[0].Path)
	require.Equal(t, filepath.Join(dir, "sources", "postgres_prod_2.json"), results[1].Path)

	entries, err := os.ReadDir(filepath.Join(dir, "sources"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	second, err := ReadObject(results[1].Path)
	require.NoError(t, err)
	require.Equal(t, "postgres-prod", second["name"])
}

func TestImport(t *testing.T) {
	f := newFake(t)
	f.responses["/api/v1/destinations/create"] = map[string]any{
		"destinationId": "dst-2",
		"name":          "BigQuery",
	}

	dir := fs.NewDir(t, "airbyte",
		fs.WithDir("sources",
			fs.WithFile("postgres.yml", "name: Postgres\nsourceDefinitionId: def-pg\nconnectionConfiguration:\n  host: db2\n"),
		),
		fs.WithDir("destinations",
			fs.WithFile("bigquery.json", `{"name": "BigQuery", "destinationDefinitionId": "def-bq"}`),
			fs.WithFile("README.md", "ignored"),
		),
		fs.WithDir("connections",
			fs.WithFile("pg_bq.json", `{"name": "Postgres → BigQuery", "sourceName": "Postgres", "destinationName": "BigQuery"}`),
			fs.WithFile("pg_sf.json", `{"name": "Postgres → Snowflake", "sourceName": "Postgres", "destinationName": "Snowflake", "status": "inactive"}`),
		),
	)

	results, err := Import(context.Background(), f.client(t), dir.Path())
	require.NoError(t, err)

	var actions []string
	for _, r := range results {
		actions = append(actions, string(r.Resource)+":"+r.Name+":"+r.Action)
	}
	require.Equal(t, []string{
		"sources:Postgres:updated",
		"destinations:BigQuery:created",
		"connections:Postgres → BigQuery:created",
		"connections:Postgres → Snowflake:updated",
	}, actions)

	bodies := map[string][]map[string]any{}
	for _, c := range f.calls {
		bodies[c.path] = append(bodies[c.path], c.body)
	}

	require.Equal(t, []map[string]any{{
		"sourceId":                "src-1",
		"name":                    "Postgres",
		"connectionConfiguration": map[string]any{"host": "db2"},
	}}, bodies["/api/v1/sources/update"])

	require.Equal(t, []map[string]any{{
		"name":                    "BigQuery",
		"destinationDefinitionId": "def-bq",
		"workspaceId":             "ws-1",
	}}, bodies["/api/v1/destinations/create"])

	require.Equal(t, []map[string]any{{
		"name":          "Postgres → BigQuery",
		"sourceId":      "src-1",
		"destinationId": "dst-2",
	}}, bodies["/api/v1/connections/create"])

	require.Equal(t, []map[string]any{{
		"name":         "Postgres → Snowflake",
		"connectionId": "conn-1",
		"status":       "inactive",
	}}, bodies["/api/v1/connections/update"])
}

func TestImport_MissingDirsAreSkipped(t *testing.T) {
	f := newFake(t)

	results, err := Import(context.Background(), f.client(t), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestReadObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := ReadObject(path)
	require.Error(t, err)
}
