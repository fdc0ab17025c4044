package pgupgrade

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
)

// ErrSameVersion is returned when the old and new major versions match.
var ErrSameVersion = errors.New("old and new PostgreSQL versions are the same")

// Formulas holds the Homebrew formula names for both PostgreSQL versions.
type Formulas struct {
	Old string
	New string
}

// FormulasFor returns the versioned formulas, e.g. postgresql@17.
func FormulasFor(oldVer, newVer string) Formulas {
	return Formulas{Old: "postgresql@" + oldVer, New: "postgresql@" + newVer}
}

// Paths holds the binary and data directories of both installations.
type Paths struct {
	OldBindir  string
	OldDatadir string
	NewBindir  string
	NewDatadir string
}

// BuildPaths derives all PostgreSQL paths from the Homebrew prefix:
// bindirs live under opt/<formula>/bin, datadirs under var/<formula>.
func BuildPaths(prefix string, f Formulas) Paths {
	return Paths{
		OldBindir:  filepath.Join(prefix, "opt", f.Old, "bin"),
		OldDatadir: filepath.Join(prefix, "var", f.Old),
		NewBindir:  filepath.Join(prefix, "opt", f.New, "bin"),
		NewDatadir: filepath.Join(prefix, "var", f.New),
	}
}

// ValidateVersions checks both values are positive major version numbers and differ.
func ValidateVersions(oldVer, newVer string) error {
	_, _, err := CanonicalVersions(oldVer, newVer)
	return err
}

// CanonicalVersions parses both major versions and returns them in canonical
// decimal form, so "017" becomes "17". Versions that are equal as numbers are
// rejected with ErrSameVersion.
func CanonicalVersions(oldVer, newVer string) (string, string, error) {
	var nums [2]int
	for i, v := range []struct{ flag, value string }{{"old", oldVer}, {"new", newVer}} {
		n, err := strconv.Atoi(v.value)
		if err != nil || n <= 0 {
			return "", "", fmt.Errorf("invalid %s PostgreSQL major version %q", v.flag, v.value)
		}
		nums[i] = n
	}
	if nums[0] == nums[1] {
		return "", "", fmt.Errorf("%w: %d", ErrSameVersion, nums[0])
	}
	return strconv.Itoa(nums[0]), strconv.Itoa(nums[1]), nil
}

// BackupName is the pg_dumpall output file name for an upgrade started at stamp.
func BackupName(oldVer, newVer, stamp string) string {
	return fmt.Sprintf("pg_dumpall_%s_to_%s_%s.sql", oldVer, newVer, stamp)
}
