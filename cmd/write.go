package cmd

import (
	"os"
	"path/filepath"
)

// writeRendered writes a rendered report, creating parent directories the
// same way the JSON bundle writers do.
func writeRendered(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
