// Package config loads c0check settings. Values come, from lowest to
// highest precedence, from built-in defaults, a c0check.toml found in the
// test directory or one of its parents, the C0_HOME environment variable,
// and command-line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the test directory.
const FileName = "c0check.toml"

// HomeEnv names the environment variable holding the C0 home.
const HomeEnv = "C0_HOME"

// Settings are the resolved values a run uses.
type Settings struct {
	C0Home string
	Jobs   int
	// WorkDir holds temporary artifacts; empty means the current directory.
	WorkDir           string
	TestTime          uint64 // CPU seconds
	TestMemory        uint64 // bytes
	CompilationTime   uint64
	CompilationMemory uint64
	OutputLines       int
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Jobs:              runtime.GOMAXPROCS(0),
		TestTime:          10,
		TestMemory:        2 << 30,
		CompilationTime:   20,
		CompilationMemory: 4 << 30,
		OutputLines:       20,
	}
}

// File mirrors c0check.toml.
type File struct {
	C0Home      string     `toml:"c0_home"`
	Jobs        int        `toml:"jobs"`
	WorkDir     string     `toml:"work_dir"`
	OutputLines int        `toml:"output_lines"`
	Limits      FileLimits `toml:"limits"`
}

// FileLimits is the [limits] table. Memory values use ParseSize syntax.
type FileLimits struct {
	TestTime          uint64 `toml:"test_time"`
	TestMemory        string `toml:"test_memory"`
	CompilationTime   uint64 `toml:"compilation_time"`
	CompilationMemory string `toml:"compilation_mem"`
}

// Find looks for FileName in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes path. Unknown keys are rejected so typos do not silently
// fall back to defaults.
func Load(path string) (File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return File{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if f.C0Home != "" && !filepath.IsAbs(f.C0Home) {
		f.C0Home = filepath.Join(filepath.Dir(path), f.C0Home)
	}
	if f.WorkDir != "" && !filepath.IsAbs(f.WorkDir) {
		f.WorkDir = filepath.Join(filepath.Dir(path), f.WorkDir)
	}
	return f, nil
}

// Apply overrides s with every value f sets.
func (s *Settings) Apply(f File) error {
	if f.C0Home != "" {
		s.C0Home = f.C0Home
	}
	if f.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", f.Jobs)
	}
	if f.Jobs > 0 {
		s.Jobs = f.Jobs
	}
	if f.WorkDir != "" {
		s.WorkDir = f.WorkDir
	}
	if f.OutputLines != 0 {
		s.OutputLines = f.OutputLines
	}
	if f.Limits.TestTime != 0 {
		s.TestTime = f.Limits.TestTime
	}
	if f.Limits.CompilationTime != 0 {
		s.CompilationTime = f.Limits.CompilationTime
	}
	if f.Limits.TestMemory != "" {
		n, err := ParseLimit(f.Limits.TestMemory)
		if err != nil {
			return fmt.Errorf("limits.test_memory: %w", err)
		}
		s.TestMemory = n
	}
	if f.Limits.CompilationMemory != "" {
		n, err := ParseLimit(f.Limits.CompilationMemory)
		if err != nil {
			return fmt.Errorf("limits.compilation_mem: %w", err)
		}
		s.CompilationMemory = n
	}
	return nil
}

// Resolve builds settings for a run rooted at testDir: defaults, then the
// nearest c0check.toml (if any), then C0_HOME. It returns the config file
// used, or "".
func Resolve(testDir string) (Settings, string, error) {
	s := Defaults()
	path, ok, err := Find(testDir)
	if err != nil {
		return s, "", err
	}
	if ok {
		f, err := Load(path)
		if err != nil {
			return s, path, err
		}
		if err := s.Apply(f); err != nil {
			return s, path, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		path = ""
	}
	if home := os.Getenv(HomeEnv); home != "" {
		s.C0Home = home
	}
	return s, path, nil
}
