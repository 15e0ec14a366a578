// Package props reads and writes the flat key=value property files that
// persist provisioning decisions between runs (local.properties,
// bundle.properties).
package props

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Get returns the value for key in the property file at path. A missing
// file means no properties yet, not an error. The key of each line is the
// text before the first '=', trimmed; lines without '=' never match.
func Get(path, key string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read properties: %w", err)
	}

	for _, line := range splitLines(string(data)) {
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(k) == key {
			return strings.TrimSpace(v), true, nil
		}
	}
	return "", false, nil
}

// Set writes key=value into the property file at path. When the key already
// exists and replace is false the file is left untouched (first write wins).
// When replace is true every existing line for the key is dropped and the
// new pair is appended at the end. All other lines are rewritten unchanged
// and in their original order. The rewrite goes through a temp file in the
// same directory followed by a rename, so an interrupted write never leaves
// a truncated file behind.
func Set(path, key, value string, replace bool) error {
	var lines []string

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read properties: %w", err)
	}
	if err == nil {
		for _, line := range splitLines(string(data)) {
			k, _, found := strings.Cut(line, "=")
			if found && strings.TrimSpace(k) == key {
				if !replace {
					return nil
				}
				continue
			}
			lines = append(lines, line)
		}
	}

	lines = append(lines, fmt.Sprintf("%s=%s", key, value))

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return writeAtomic(path, []byte(buf.String()))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare properties directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp properties: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp properties: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp properties: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp properties: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace properties: %w", err)
	}
	return nil
}

// splitLines splits file content into lines without their trailing newline.
// A trailing newline on the final line does not produce an empty element.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
