package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/shadertree/internal/logging"
)

const sizes = `static const int N = 2;
float a[N * 2];
void f() { ; }
`

// execute runs one command line against a fresh command tree.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-config", "--log-format", "text", "--log-level", "warn"}, args...))

	err = cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEval(t *testing.T) {
	stdout, _, err := execute(t, "", "eval", "(1 << 4) * 3")
	require.NoError(t, err)
	assert.Equal(t, "48\n", stdout)
}

func TestEvalJSON(t *testing.T) {
	stdout, _, err := execute(t, "", "--json", "eval", "7 / 2")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, 3.5, decoded["value"])
	assert.Equal(t, 3.0, decoded["int"])
	assert.Equal(t, true, decoded["ok"])
}

func TestEvalFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "consts.hlsl", sizes)

	stdout, _, err := execute(t, "", "eval", "--file", path, "N * 5")
	require.NoError(t, err)
	assert.Equal(t, "10\n", stdout)
}

func TestEvalStdin(t *testing.T) {
	stdout, _, err := execute(t, sizes, "eval", "-f", "-", "N + 1")
	require.NoError(t, err)
	assert.Equal(t, "3\n", stdout)
}

func TestEvalNotConstant(t *testing.T) {
	stdout, stderr, err := execute(t, "", "eval", "N + 1")
	require.EqualError(t, err, "expression is not constant")
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "<expression>:1:1: error: unable to find variable [N] [E0102]")
}

func TestDump(t *testing.T) {
	stdout, _, err := execute(t, "static const int N = 1;", "dump", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Shader\n  Variable\n"), stdout)
}

func TestDumpSyntaxError(t *testing.T) {
	_, stderr, err := execute(t, "float a[;", "dump", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<stdin>: 1 syntax error(s)")
	assert.Contains(t, stderr, "<stdin>:1:")
	assert.Contains(t, stderr, "[E0001]")
}

func TestFold(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sizes.hlsl", sizes)

	stdout, _, err := execute(t, "", "fold", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Literal 4")
	assert.NotContains(t, stdout, "EmptyStatement")
}

func TestFoldKeep(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sizes.hlsl", sizes)

	stdout, _, err := execute(t, "", "fold", "--no-resolve-array-sizes", "--no-prune", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "BinaryExpression *")
	assert.Contains(t, stdout, "EmptyStatement")
}

func TestFoldJSON(t *testing.T) {
	stdout, _, err := execute(t, sizes, "--json", "fold", "-")
	require.NoError(t, err)

	var decoded struct {
		Tree               string `json:"tree"`
		ResolvedArraySizes int    `json:"resolvedArraySizes"`
		PrunedStatements   int    `json:"prunedStatements"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, 1, decoded.ResolvedArraySizes)
	assert.Equal(t, 1, decoded.PrunedStatements)
	assert.Contains(t, decoded.Tree, "Literal 4")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.hlsl", sizes)
	bad := writeFile(t, dir, "bad.hlsl", "float a[2 - 5];\nfloat b[c];\n")
	missing := filepath.Join(dir, "missing.hlsl")

	stdout, _, err := execute(t, "", "check", good, bad, missing)
	require.EqualError(t, err, "2 of 3 file(s) failed")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, good+": ok", lines[0])
	assert.Contains(t, lines[1], bad+":1:9: error: array size [2 - 5] is not a valid size: -3 [E0200]")
	assert.Contains(t, lines[2], bad+":2:9: error: unable to find variable [c] [E0102]")
	assert.Contains(t, lines[3], missing+": failed to read input:")
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.hlsl", sizes)
	broken := writeFile(t, dir, "broken.hlsl", "float a[;")

	stdout, _, err := execute(t, "", "--json", "check", good, broken)
	require.Error(t, err)

	var reports []checkReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, good, reports[0].File)
	assert.Equal(t, 3, reports[0].Declarations)
	assert.Equal(t, 1, reports[0].ResolvedArraySizes)
	assert.False(t, reports[0].failed())
	assert.True(t, reports[1].failed())
	assert.Equal(t, "E0001", reports[1].Diagnostics[0].Code)
}

func TestCheckWatchKeepsFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.hlsl", "float b[c];\n")

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	// Stop watching once the first pass has been reported.
	time.AfterFunc(300*time.Millisecond, cancel)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--no-config", "--log-level", "warn", "check", "--watch", path})

	err := cmd.ExecuteContext(ctx)
	require.EqualError(t, err, "1 of 1 file(s) failed")
	assert.Contains(t, out.String(), path+":1:9: error: unable to find variable [c] [E0102]")
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "shadertree.prom")
	path := writeFile(t, dir, "sizes.hlsl", sizes+"float b[x];\n")

	_, _, err := execute(t, "", "--metrics-file", metrics, "check", path)
	require.Error(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shadertree_evaluations_total{status="ok"} 1`)
	assert.Contains(t, string(data), `shadertree_evaluations_total{status="error"} 1`)
	assert.Contains(t, string(data), `shadertree_diagnostics_total{severity="error"} 1`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "shadertree.yaml", "transform:\n  pruneEmpty: false\n")
	path := writeFile(t, dir, "sizes.hlsl", sizes)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "--log-level", "warn", "fold", path})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	assert.Contains(t, out.String(), "Literal 4")
	assert.Contains(t, out.String(), "EmptyStatement")
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "shadertree.yaml", "evaluator:\n  maxDepth: -1\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "eval", "1"})
	err := cmd.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxDepth")
}

func TestMaxDepthFlag(t *testing.T) {
	path := writeFile(t, t.TempDir(), "loop.hlsl", "static const int A = A + 1;\n")

	_, stderr, err := execute(t, "", "--detect-cycles=false", "--max-depth", "2", "eval", "-f", path, "A")
	require.Error(t, err)
	assert.Contains(t, stderr, "[E0108]")
	assert.NotContains(t, stderr, "[E0104]")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "shadertree v"+version), stdout)
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "watched.hlsl", sizes)
	writeFile(t, dir, "other.hlsl", sizes)

	ctx, cancel := context.WithCancel(t.Context())
	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{path}, logging.Discard(), func(file string) {
			changed <- file
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, dir, "other.hlsl", "float b[1];")
	writeFile(t, dir, "watched.hlsl", "float a[3];")

	select {
	case file := <-changed:
		assert.Equal(t, path, file)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
