package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ability-lst/internal/parser"
)

// Storage reads and writes whole text files as lines.
type Storage interface {
	ReadAllLines(path string) ([]string, error)
	WriteAllLines(path string, lines []string) error
}

// FileStorage is Storage on the local filesystem.
type FileStorage struct{}

var _ Storage = FileStorage{}

func (FileStorage) ReadAllLines(path string) ([]string, error) {
	return parser.ReadLines(path)
}

func (FileStorage) WriteAllLines(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
