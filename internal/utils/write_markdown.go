package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lilong555/tradingagent/internal/logging"
)

// WriteMarkdown writes one report section to dir/fileName, creating the
// directory tree as needed.
func WriteMarkdown(dir, fileName, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	logger := logging.NewLogger("reports")
	logger.Debug().Str("path", path).Msg("report section written")
	return nil
}
