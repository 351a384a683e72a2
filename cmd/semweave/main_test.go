package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const note = `[ex]: http://example.org/

[Doc]{typeof=ex:Document; name="Demo"}
[Draft]{typeof=ex:Document}

## SHACL Constraint: hasName

` + "```sparql" + `
PREFIX ex: <http://example.org/>
SELECT ?this WHERE { ?this a ex:Document . FILTER NOT EXISTS { ?this ex:name ?n } }
` + "```\n"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "semweave version "+Version)
}

func TestConvert_Stdout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.md", note)

	out, _, err := execute(t, "convert", path)
	require.NoError(t, err)
	assert.Contains(t, out, "@prefix ex: <http://example.org/> .")
	assert.Contains(t, out, "ex:Doc\n    a ex:Document ;")
}

func TestConvert_OutDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes/a.md", note)
	writeFile(t, dir, "notes/deep/b.md", "[ex]: http://example.org/\n[B]{typeof=ex:Thing}\n")
	out := filepath.Join(dir, "out")

	_, _, err := execute(t, "convert", "--format", "jsonld", "--out", out, filepath.Join(dir, "notes"))
	require.NoError(t, err)

	for _, name := range []string{"a.jsonld", "b.jsonld"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"@context"`)
	}
}

func TestConvert_ReportsDiagnostics(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.md", "## Mode: quantum\n")

	_, stderr, err := execute(t, "convert", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: "+path)
}

func TestConvert_BadFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.md", note)
	_, _, err := execute(t, "convert", "--format", "rdfxml", path)
	assert.Error(t, err)
}

func TestValidate_Violations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.md", note)

	out, _, err := execute(t, "validate", path)
	require.ErrorIs(t, err, errConstraintsFailed)
	assert.Contains(t, out, "hasName: Failed constraint hasName (<http://example.org/Draft>)")
	assert.Contains(t, out, "1 constraints, 1 violations, 0 errors")
}

func TestValidate_SkipDocs(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.md", note)

	out, _, err := execute(t, "validate", "--skip-docs", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 constraints, 0 violations, 0 errors")
}

func TestLoadAndQuery(t *testing.T) {
	dir := t.TempDir()
	ttl := writeFile(t, dir, "data.ttl", `@prefix ex: <http://example.org/> .
ex:alice a ex:Person ; ex:name "Alice" .
`)
	md := writeFile(t, dir, "note.md", note)
	db := filepath.Join(dir, "graph.db")

	out, _, err := execute(t, "load", "--db", db, ttl, md)
	require.NoError(t, err)
	assert.Contains(t, out, "5 quads")

	out, _, err = execute(t, "query", "--db", db, "SELECT ?n WHERE { ?p a ex:Person ; ex:name ?n }")
	require.NoError(t, err)
	assert.Contains(t, out, `"Alice"`)

	out, _, err = execute(t, "query", "--db", db, "--json", "ASK { ex:Draft a ex:Document }")
	require.NoError(t, err)
	assert.Contains(t, out, `"boolean": true`)
}

func TestLoad_RequiresStore(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.md", note)
	_, _, err := execute(t, "load", path)
	assert.Error(t, err)
}

func TestJSONLDToTurtle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.jsonld", `{
  "@context": {"ex": "http://example.org/"},
  "@graph": [{"@id": "ex:Doc", "@type": "ex:Document", "ex:name": "Demo"}]
}`)

	out, _, err := execute(t, "jsonld2ttl", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ex:Doc\n    a ex:Document ;")
	assert.Contains(t, out, `ex:name "Demo" .`)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "x")
	b := writeFile(t, dir, "sub/b.md", "x")
	writeFile(t, dir, "sub/c.txt", "x")

	got, err := expandInputs([]string{dir, a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)

	got, err = expandInputs([]string{filepath.Join(dir, "**", "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sub", "c.txt")}, got)

	_, err = expandInputs([]string{filepath.Join(dir, "*.nothing")})
	assert.Error(t, err)
}
