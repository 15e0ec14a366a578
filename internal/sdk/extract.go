package sdk

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// extractZip unpacks archivePath into dest, applying each entry's stored
// POSIX permission bits after the file is written. Default extraction drops
// those bits, which leaves the SDK helper binaries non-executable. The
// context is checked after every entry so cancellation stops promptly.
func extractZip(ctx context.Context, archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !filepath.IsLocal(filepath.FromSlash(file.Name)) {
			return fmt.Errorf("zip entry %s escapes the destination", file.Name)
		}

		target := filepath.Join(dest, filepath.FromSlash(file.Name))
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("prepare file %s: %w", target, err)
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			rc.Close()
			return fmt.Errorf("create file %s: %w", target, err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			rc.Close()
			out.Close()
			return fmt.Errorf("copy file %s: %w", target, err)
		}
		rc.Close()
		if err := out.Close(); err != nil {
			return fmt.Errorf("close file %s: %w", target, err)
		}

		if err := applyStoredPermissions(target, file); err != nil {
			return err
		}
	}
	return nil
}

// applyStoredPermissions chmods the extracted file with the permission bits
// the archive carries in the high 16 bits of the entry's external
// attributes. Entries written by non-Unix tools carry no bits and are left
// with the default mode.
func applyStoredPermissions(target string, file *zip.File) error {
	attrs := file.ExternalAttrs >> 16
	if attrs == 0 {
		return nil
	}
	mode := os.FileMode(attrs) & os.ModePerm
	if mode == 0 {
		return nil
	}
	if err := os.Chmod(target, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	return nil
}
