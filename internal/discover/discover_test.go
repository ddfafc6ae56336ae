package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"c0check/internal/spec"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(tests []*spec.TestInfo) []string {
	out := make([]string, len(tests))
	for i, t := range tests {
		out[i] = t.Name()
	}
	return out
}

func TestDiscover_PerFileMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "basic", "ret.c0"), "//test return 5\nint main() { return 5; }\n")
	writeFile(t, filepath.Join(root, "basic", "div.c0"), "//test safe => div-by-zero; !safe => runs\r\nint main() { return 1/0; }\n")
	writeFile(t, filepath.Join(root, "basic", "helper.c0"), "int helper() { return 0; }\n")
	writeFile(t, filepath.Join(root, "basic", "empty.c0"), "")
	writeFile(t, filepath.Join(root, "README"), "//test return 0\n")

	tests, err := Discover(root, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"basic/div.c0", "basic/ret.c0"}, names(tests))

	div := tests[0]
	require.Equal(t, "safe => div-by-zero; !safe => runs", div.Specs.String())
	require.Equal(t, filepath.Join(root, "basic"), div.Execution.Dir)
	require.Equal(t, spec.Origin{File: filepath.Join(root, "basic", "div.c0"), Line: 1}, div.Origin)
	require.Empty(t, div.Execution.Options)
}

func TestDiscover_MalformedSpecIsLoggedAndSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad", "typo.c0"), "//test retrun 0\n")
	writeFile(t, filepath.Join(root, "bad", "ok.c0"), "//test return 0\n")

	core, logs := observer.New(zap.WarnLevel)
	tests, err := Discover(root, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"bad/ok.c0"}, names(tests))
	require.Equal(t, 1, logs.FilterMessage("malformed spec, skipping test").Len())
}

func TestDiscover_Manifest(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "multi")
	writeFile(t, filepath.Join(dir, ManifestName), `# libraries and flags
safe => return 3 ~ -d lib.c0 main.c0

!safe => runs~ -lconio unsafe.c1
`)
	// Files in manifest directories are not scanned.
	writeFile(t, filepath.Join(dir, "main.c0"), "//test return 99\n")

	tests, err := Discover(root, nil)
	require.NoError(t, err)
	require.Len(t, tests, 2)

	first := tests[0]
	require.Equal(t, []string{filepath.Join(dir, "lib.c0"), filepath.Join(dir, "main.c0")}, first.Execution.Sources)
	require.Equal(t, []string{"-d"}, first.Execution.Options)
	require.Equal(t, "safe => return 3", first.Specs.String())
	require.Equal(t, 2, first.Origin.Line)

	second := tests[1]
	require.Equal(t, []string{"-lconio"}, second.Execution.Options)
	require.True(t, second.Execution.UsesExtension(".c1"))
	require.Equal(t, 4, second.Origin.Line)
}

func TestDiscover_MalformedManifestSkipsRemainder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "m", ManifestName), "return 0 ~ a.c0\nreturn 0 b.c0\nreturn 0 ~ c.c0\n")
	writeFile(t, filepath.Join(root, "n", ManifestName), "return 1 ~ -d\nreturn 1 ~ d.c0\n")
	writeFile(t, filepath.Join(root, "o", "e.c0"), "//test return 2\n")

	core, logs := observer.New(zap.WarnLevel)
	tests, err := Discover(root, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"m/a.c0", "o/e.c0"}, names(tests))
	require.Equal(t, 2, logs.FilterMessage("malformed manifest line, skipping the rest of the manifest").Len())
}

func TestDiscover_ManifestReadErrorKeepsEarlierTests(t *testing.T) {
	root := t.TempDir()
	long := "return 0 ~ " + strings.Repeat("x", 70<<10) + ".c0\n"
	writeFile(t, filepath.Join(root, "big", ManifestName), "return 1 ~ first.c0\n"+long+"return 2 ~ never.c0\n")

	core, logs := observer.New(zap.WarnLevel)
	tests, err := Discover(root, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"big/first.c0"}, names(tests))
	require.Equal(t, 1, logs.FilterMessage("skipping the rest of test directory").Len())
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestFilterAndOnly(t *testing.T) {
	tests := []*spec.TestInfo{
		{Execution: spec.ExecutionInfo{Sources: []string{"/t/arith/add.c0"}}},
		{Execution: spec.ExecutionInfo{Sources: []string{"/t/arith/div.c0"}}},
		{Execution: spec.ExecutionInfo{Sources: []string{"/t/mem/oob.c0"}, Options: []string{"-d"}}},
	}

	require.Len(t, Filter(tests, nil), 3)
	require.Equal(t, []string{"arith/add.c0", "arith/div.c0"}, names(Filter(tests, []string{"arith/"})))
	require.Equal(t, []string{"arith/div.c0", "mem/oob.c0 -d"}, names(Filter(tests, []string{"div", "-d"})))

	require.Equal(t, []string{"mem/oob.c0 -d"}, names(Only(tests, []string{"mem/oob.c0 -d", "gone.c0"})))
	require.Empty(t, Only(tests, nil))
}
