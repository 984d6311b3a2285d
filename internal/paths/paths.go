package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the per-repository directory holding config, logs and run history.
const StateDirName = ".monosplit"

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		repoRootResolved = repoRoot
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// SafeRel returns path relative to base for display. Paths outside base, or
// paths that cannot be related at all, are returned unchanged.
func SafeRel(path string, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// HasPathSegment reports whether any directory segment of path equals name.
func HasPathSegment(path string, name string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == name {
			return true
		}
	}
	return false
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GetStateDir returns <repoRoot>/.monosplit
func GetStateDir(repoRoot string) string {
	return filepath.Join(repoRoot, StateDirName)
}

// EnsureStateDir creates <repoRoot>/.monosplit if needed and returns it.
func EnsureStateDir(repoRoot string) (string, error) {
	dir := GetStateDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetLogPath returns <repoRoot>/.monosplit/logs/analyze.log
func GetLogPath(repoRoot string) string {
	return filepath.Join(GetStateDir(repoRoot), "logs", "analyze.log")
}

// EnsureLogsDir creates <repoRoot>/.monosplit/logs if needed and returns it.
func EnsureLogsDir(repoRoot string) (string, error) {
	dir := filepath.Join(GetStateDir(repoRoot), "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// ResolveUnder joins p onto root unless p is already absolute.
func ResolveUnder(root string, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
