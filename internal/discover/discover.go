// Package discover finds the tests under a root directory.
//
// Every immediate subdirectory of the root is a test directory. A
// directory holding a sources.test manifest declares one test per
// manifest line; otherwise every file whose first line starts with
// "//test" is a single-file test.
package discover

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"c0check/internal/spec"
	"c0check/internal/specparse"
)

// ManifestName is the file that switches a directory to manifest mode.
const ManifestName = "sources.test"

// SourceExtensions are the command-line tokens treated as sources.
var SourceExtensions = []string{".c0", ".c1"}

// Discover returns the tests under root sorted by origin. Problems inside
// a test directory are logged and skipped; only an unreadable root is an
// error.
func Discover(root string, log *zap.Logger) ([]*spec.TestInfo, error) {
	if log == nil {
		log = zap.NewNop()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve test root: %w", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the root test directory: %w", err)
	}

	var tests []*spec.TestInfo
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		// found holds whatever was read before an error.
		found, err := discoverDir(dir, log)
		if err != nil {
			log.Warn("skipping the rest of test directory", zap.String("dir", dir), zap.Error(err))
		}
		tests = append(tests, found...)
	}

	sort.SliceStable(tests, func(i, j int) bool {
		a, b := tests[i].Origin, tests[j].Origin
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	return tests, nil
}

func discoverDir(dir string, log *zap.Logger) ([]*spec.TestInfo, error) {
	manifest := filepath.Join(dir, ManifestName)
	f, err := os.Open(manifest)
	switch {
	case err == nil:
		defer f.Close()
		return readManifest(f, manifest, dir, log)
	case errors.Is(err, fs.ErrNotExist):
		return readTestFiles(dir, log)
	default:
		return nil, err
	}
}

func readTestFiles(dir string, log *zap.Logger) ([]*spec.TestInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tests []*spec.TestInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		line, err := firstLine(path)
		if err != nil {
			log.Debug("skipping unreadable file", zap.String("file", path), zap.Error(err))
			continue
		}

		specs, err := specparse.Parse(line, specparse.Options{RequireMarker: true})
		if errors.Is(err, specparse.ErrNotSpec) {
			continue
		}
		origin := spec.Origin{File: path, Line: 1}
		if err != nil {
			log.Warn("malformed spec, skipping test", zap.Stringer("at", origin), zap.Error(err))
			continue
		}
		tests = append(tests, &spec.TestInfo{
			Execution: spec.ExecutionInfo{Sources: []string{path}, Dir: dir},
			Specs:     specs,
			Origin:    origin,
		})
	}
	return tests, nil
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readManifest parses one test per line of r. A malformed line ends the
// manifest: the tests before it are kept, the rest are skipped.
func readManifest(r io.Reader, path, dir string, log *zap.Logger) ([]*spec.TestInfo, error) {
	var tests []*spec.TestInfo
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		origin := spec.Origin{File: path, Line: lineNo}

		test, err := parseManifestLine(line, dir)
		if err != nil {
			log.Warn("malformed manifest line, skipping the rest of the manifest",
				zap.Stringer("at", origin), zap.Error(err))
			return tests, nil
		}
		test.Origin = origin
		tests = append(tests, test)
	}
	if err := sc.Err(); err != nil {
		return tests, fmt.Errorf("read %s: %w", path, err)
	}
	return tests, nil
}

func parseManifestLine(line, dir string) (*spec.TestInfo, error) {
	specs, command, err := specparse.ParseManifestLine(line)
	if err != nil {
		return nil, err
	}
	exec := spec.ExecutionInfo{Dir: dir}
	for _, tok := range strings.Fields(command) {
		if isSource(tok) {
			if !filepath.IsAbs(tok) {
				tok = filepath.Join(dir, tok)
			}
			exec.Sources = append(exec.Sources, tok)
			continue
		}
		exec.Options = append(exec.Options, tok)
	}
	if len(exec.Sources) == 0 {
		return nil, fmt.Errorf("no %s source files in %q", strings.Join(SourceExtensions, "/"), strings.TrimSpace(command))
	}
	return &spec.TestInfo{Execution: exec, Specs: specs}, nil
}

func isSource(tok string) bool {
	for _, ext := range SourceExtensions {
		if strings.HasSuffix(tok, ext) {
			return true
		}
	}
	return false
}
