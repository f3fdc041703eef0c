// Package mcp reads the canonical tool-server document and propagates it to
// the native documents of agents that support MCP.
package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ServersKey is the top-level key holding the server map.
const ServersKey = "mcpServers"

// ServerSpec is one entry of the server map.
type ServerSpec struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// Configuration is a tool-server document. Servers keep their raw JSON so
// fields ruler does not model survive propagation unchanged.
type Configuration struct {
	Servers map[string]json.RawMessage
}

// Names returns the server names in sorted order.
func (c *Configuration) Names() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Server decodes one entry into a ServerSpec.
func (c *Configuration) Server(name string) (ServerSpec, error) {
	raw, ok := c.Servers[name]
	if !ok {
		return ServerSpec{}, fmt.Errorf("server %q not found", name)
	}
	var spec ServerSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return ServerSpec{}, fmt.Errorf("server %q: %w", name, err)
	}
	return spec, nil
}

type LoadOutcome int

const (
	// Loaded means the document was read and parsed.
	Loaded LoadOutcome = iota
	// Missing means no file exists at the path.
	Missing
	// Invalid means the file exists but could not be read or parsed.
	Invalid
)

func (o LoadOutcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("LoadOutcome(%d)", int(o))
	}
}

// LoadResult is the outcome of LoadDocument. Config and Raw are set only when
// Outcome is Loaded; Err only when it is Invalid.
type LoadResult struct {
	Outcome LoadOutcome
	Path    string
	Config  *Configuration
	// Raw holds every top-level key of the document, including ServersKey.
	Raw  map[string]json.RawMessage
	Data []byte
	Err  error
}

// LoadDocument reads a tool-server document. It never fails outright: the
// caller decides how to treat Missing and Invalid.
func LoadDocument(path string) LoadResult {
	res := LoadResult{Path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Outcome = Missing
		return res
	}
	if err != nil {
		res.Outcome = Invalid
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	cfg, raw, err := Parse(data)
	if err != nil {
		res.Outcome = Invalid
		res.Err = fmt.Errorf("parse %s: %w", path, err)
		return res
	}

	res.Outcome = Loaded
	res.Config = cfg
	res.Raw = raw
	res.Data = data
	return res
}

// Parse decodes a tool-server document. A document without a server map
// parses to an empty Configuration.
func Parse(data []byte) (*Configuration, map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return nil, nil, errors.New("document is not a JSON object")
	}

	cfg := &Configuration{Servers: map[string]json.RawMessage{}}
	if servers, ok := raw[ServersKey]; ok && !isNull(servers) {
		if err := json.Unmarshal(servers, &cfg.Servers); err != nil {
			return nil, nil, fmt.Errorf("%s must be an object: %w", ServersKey, err)
		}
		if cfg.Servers == nil {
			cfg.Servers = map[string]json.RawMessage{}
		}
	}
	return cfg, raw, nil
}

// Encode renders a document as two-space indented JSON with sorted keys and a
// trailing newline.
func Encode(doc map[string]json.RawMessage) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
