package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ruler/internal/logging"
	"ruler/pkg/fileops"
)

//go:embed templates/instructions.md templates/ruler.toml templates/mcp.json
var templates embed.FS

// ScaffoldFiles lists the files Scaffold creates, in creation order.
var ScaffoldFiles = []string{"instructions.md", ConfigFileName, MCPFileName}

// ScaffoldResult reports which scaffold files were created and which already existed.
type ScaffoldResult struct {
	Created []string
	Skipped []string
}

// Scaffold creates rulesDir and writes the default instructions, configuration
// and tool-server documents into it. Existing files are left untouched. Each
// file is attempted independently and all failures are returned together.
func Scaffold(rulesDir string, logger *logging.AppLogger) (ScaffoldResult, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}
	var res ScaffoldResult

	if err := fileops.EnsureDirectoryExists(rulesDir); err != nil {
		return res, fmt.Errorf("create %s: %w", rulesDir, err)
	}

	var errs []error
	for _, name := range ScaffoldFiles {
		target := filepath.Join(rulesDir, name)
		if _, err := os.Lstat(target); err == nil {
			logger.Debug("Scaffold file exists, leaving it", "path", target)
			res.Skipped = append(res.Skipped, target)
			continue
		}

		data, err := templates.ReadFile("templates/" + name)
		if err != nil {
			errs = append(errs, fmt.Errorf("read template %s: %w", name, err))
			continue
		}
		if err := fileops.AtomicWrite(target, data); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", target, err))
			continue
		}
		logger.Debug("Created scaffold file", "path", target)
		res.Created = append(res.Created, target)
	}

	return res, errors.Join(errs...)
}
