package mcpserver

import (
	"fmt"
	"path"
	"strings"

	"ruler/internal/config"
	"ruler/internal/logging"
	"ruler/internal/rules"
	"ruler/pkg/fileops"

	"github.com/adrg/frontmatter"
)

const (
	// ApplyToFormat labels the applyTo value appended to tool descriptions.
	ApplyToFormat = "apply to"

	maxNameLength        = 100
	maxDescriptionLength = 500
	fallbackToolName     = "rule_file"
)

// RuleFrontmatter is the optional YAML header of a rule file.
type RuleFrontmatter struct {
	Description string `yaml:"description"`
	Name        string `yaml:"name,omitempty"`
	ApplyTo     string `yaml:"applyTo,omitempty"`
}

// RuleFile is a fragment split into its frontmatter and body.
type RuleFile struct {
	Source      string
	Description string
	Name        string
	ApplyTo     string

	// Body is the fragment content without frontmatter.
	Body string
}

// RuleFileTool is a rule file exposed as an MCP tool.
type RuleFileTool struct {
	Name        string
	Description string
	RuleFile    *RuleFile
}

// RuleFileProcessor turns rule fragments into uniquely named tools.
type RuleFileProcessor struct {
	logger       *logging.AppLogger
	toolRegistry map[string]*RuleFileTool
	order        []string
}

func NewRuleFileProcessor(logger *logging.AppLogger) *RuleFileProcessor {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &RuleFileProcessor{
		logger:       logger,
		toolRegistry: make(map[string]*RuleFileTool),
	}
}

// ParseRuleFile splits a fragment into frontmatter and body. A fragment
// without frontmatter yields a RuleFile whose body is the whole content.
func ParseRuleFile(frag rules.Fragment) (*RuleFile, error) {
	var matter RuleFrontmatter
	body, err := frontmatter.Parse(strings.NewReader(frag.Content), &matter)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter of %s: %w", frag.Source, err)
	}
	return &RuleFile{
		Source:      frag.Source,
		Description: strings.TrimSpace(matter.Description),
		Name:        strings.TrimSpace(matter.Name),
		ApplyTo:     strings.TrimSpace(matter.ApplyTo),
		Body:        strings.TrimSpace(string(body)),
	}, nil
}

// ProcessFragments registers a tool for every parseable fragment and returns
// the tools in fragment order. Fragments with broken frontmatter are skipped.
func (p *RuleFileProcessor) ProcessFragments(fragments []rules.Fragment) []*RuleFileTool {
	var skipped int
	for _, frag := range fragments {
		ruleFile, err := ParseRuleFile(frag)
		if err != nil {
			p.logger.Warn("Skipping rule file", "source", frag.Source, "error", err)
			skipped++
			continue
		}
		if err := validateFrontmatter(ruleFile); err != nil {
			p.logger.Warn("Ignoring frontmatter", "source", frag.Source, "error", err)
			ruleFile.Name, ruleFile.Description, ruleFile.ApplyTo = "", "", ""
		}

		tool := &RuleFileTool{
			Name:        p.generateToolName(ruleFile),
			Description: generateToolDescription(ruleFile),
			RuleFile:    ruleFile,
		}
		p.toolRegistry[tool.Name] = tool
		p.order = append(p.order, tool.Name)
	}

	p.logger.Debug("Rule file tool processing completed",
		"fragments", len(fragments),
		"tools", len(p.order),
		"skipped", skipped)

	return p.Tools()
}

// Tools returns the registered tools in registration order.
func (p *RuleFileProcessor) Tools() []*RuleFileTool {
	out := make([]*RuleFileTool, len(p.order))
	for i, name := range p.order {
		out[i] = p.toolRegistry[name]
	}
	return out
}

// Lookup returns the tool registered under name.
func (p *RuleFileProcessor) Lookup(name string) (*RuleFileTool, bool) {
	tool, ok := p.toolRegistry[name]
	return tool, ok
}

// generateToolName uses the frontmatter name when present, otherwise the
// source path without its extension. Collisions get a numeric suffix.
func (p *RuleFileProcessor) generateToolName(ruleFile *RuleFile) string {
	candidate := ruleFile.Name
	if candidate == "" {
		base := strings.TrimPrefix(ruleFile.Source, config.RulesDirName+"/")
		candidate = strings.TrimSuffix(base, path.Ext(base))
	}

	baseName, err := fileops.SanitizeIdentifier(candidate, maxNameLength)
	if err != nil || baseName == "" {
		baseName = fallbackToolName
	}

	finalName := baseName
	for counter := 1; ; counter++ {
		if _, exists := p.toolRegistry[finalName]; !exists {
			break
		}
		finalName = fmt.Sprintf("%s_%d", baseName, counter)
	}
	return finalName
}

// generateToolDescription renders "{description} (apply to: {applyTo})",
// falling back to the source path when no description is given.
func generateToolDescription(ruleFile *RuleFile) string {
	description := ruleFile.Description
	if description == "" {
		description = "Rules from " + ruleFile.Source
	}
	if ruleFile.ApplyTo != "" {
		description = fmt.Sprintf("%s (%s: %s)", description, ApplyToFormat, ruleFile.ApplyTo)
	}
	return description
}

func validateFrontmatter(ruleFile *RuleFile) error {
	if len(ruleFile.Description) > maxDescriptionLength {
		return fmt.Errorf("description too long (max %d characters)", maxDescriptionLength)
	}
	if len(ruleFile.Name) > maxNameLength {
		return fmt.Errorf("name too long (max %d characters)", maxNameLength)
	}
	if len(ruleFile.ApplyTo) > 200 {
		return fmt.Errorf("applyTo field too long (max 200 characters)")
	}
	return nil
}
