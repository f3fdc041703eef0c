// Package materialize writes an agent's instructions and secondary
// configuration files.
package materialize

import (
	"fmt"

	"ruler/internal/agents"
	"ruler/internal/logging"
	"ruler/pkg/fileops"
)

// Result describes one agent's materialization. Paths lists every file
// written, including those written before a later step failed.
type Result struct {
	Agent agents.Definition
	Paths []string
	Err   error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

type Materializer struct {
	logger *logging.AppLogger
}

func New(logger *logging.AppLogger) *Materializer {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Materializer{logger: logger}
}

// Materialize writes content to instructionsPath and, for agents with a
// secondary configuration, the agent's defaults to configPath. Existing files
// are backed up first. Paths must be absolute.
func (m *Materializer) Materialize(def agents.Definition, instructionsPath, configPath, content string) Result {
	res := Result{Agent: def}
	log := m.logger.With("agent", def.Name)

	if err := m.write(log, instructionsPath, []byte(content)); err != nil {
		res.Err = fmt.Errorf("write instructions for %s: %w", def.DisplayName, err)
		return res
	}
	res.Paths = append(res.Paths, instructionsPath)

	if !def.SupportsConfig || configPath == "" {
		return res
	}

	data, err := def.SecondaryContent()
	if err != nil {
		res.Err = fmt.Errorf("render config for %s: %w", def.DisplayName, err)
		return res
	}
	if err := m.write(log, configPath, data); err != nil {
		res.Err = fmt.Errorf("write config for %s: %w", def.DisplayName, err)
		return res
	}
	res.Paths = append(res.Paths, configPath)

	return res
}

func (m *Materializer) write(log *logging.AppLogger, path string, data []byte) error {
	wr, err := fileops.WriteWithBackup(path, data)
	if err != nil {
		return err
	}
	if wr.BackupPath != "" {
		log.Debug("Backed up previous file", "backup", wr.BackupPath)
	}
	log.Debug("Wrote file", "path", path, "bytes", len(data))
	return nil
}
