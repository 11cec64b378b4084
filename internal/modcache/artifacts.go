package modcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyArtifacts copies each path in outputs (relative to sourceDir) into
// the matching relative path under destDir.
func CopyArtifacts(sourceDir, destDir string, outputs []string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	for _, output := range outputs {
		if err := copyFile(filepath.Join(sourceDir, output), filepath.Join(destDir, output)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", output, err)
		}
	}
	return nil
}

// RestoreArtifacts is CopyArtifacts in reverse: it copies each path in
// outputs (relative to cacheDir) back into destDir.
func RestoreArtifacts(cacheDir, destDir string, outputs []string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, output := range outputs {
		if err := copyFile(filepath.Join(cacheDir, output), filepath.Join(destDir, output)); err != nil {
			return fmt.Errorf("failed to restore %s: %w", output, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}
