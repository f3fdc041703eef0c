// Package mcpserver exposes a project's rules to MCP clients over stdio.
//
// Every rule file becomes a tool named after its frontmatter name (or its
// path under .ruler) that returns the file body. The get_instructions tool
// and the ruler://instructions resource return the aggregated document that
// apply writes to each agent.
//
// Rule files may start with YAML frontmatter:
//
//	---
//	name: go-style
//	description: Go formatting conventions
//	applyTo: "**/*.go"
//	---
package mcpserver
