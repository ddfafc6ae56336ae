package executer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoHome is returned when no C0 home directory was configured.
var ErrNoHome = errors.New("C0 home directory not set (use --c0-home or C0_HOME)")

// Toolchain locates the programs of a C0 installation.
type Toolchain struct {
	Home     string
	CC0      string // bin/cc0
	CoinExec string // bin/coin-exec
	C0VM     string // vm/c0vm
}

// NewToolchain resolves home to an absolute directory.
func NewToolchain(home string) (Toolchain, error) {
	if home == "" {
		return Toolchain{}, ErrNoHome
	}
	abs, err := filepath.Abs(home)
	if err != nil {
		return Toolchain{}, fmt.Errorf("resolve C0 home: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Toolchain{}, fmt.Errorf("C0 home: %w", err)
	}
	if !info.IsDir() {
		return Toolchain{}, fmt.Errorf("C0 home %s is not a directory", abs)
	}
	return Toolchain{
		Home:     abs,
		CC0:      filepath.Join(abs, "bin", "cc0"),
		CoinExec: filepath.Join(abs, "bin", "coin-exec"),
		C0VM:     filepath.Join(abs, "vm", "c0vm"),
	}, nil
}

// Require checks that the programs kind needs exist and are executable.
func (t Toolchain) Require(kind Kind) error {
	var need []string
	switch kind {
	case KindCC0:
		need = []string{t.CC0}
	case KindC0VM:
		need = []string{t.CC0, t.C0VM}
	case KindCoin:
		need = []string{t.CoinExec}
	}
	for _, p := range need {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%s needs %s: %w", kind, p, err)
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return fmt.Errorf("%s needs %s: not an executable file", kind, p)
		}
	}
	return nil
}
