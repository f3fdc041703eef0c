package mcpserver

import (
	"context"
	"fmt"

	"ruler/internal/config"
	"ruler/internal/logging"
	"ruler/internal/rules"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// InstructionsToolName returns the aggregated rules document.
	InstructionsToolName = "get_instructions"

	// InstructionsURI is the resource holding the aggregated rules document.
	InstructionsURI = "ruler://instructions"
)

// Version is reported to clients during initialization.
var Version = "dev"

// Server serves the rules of one project over MCP.
type Server struct {
	projectRoot string
	logger      *logging.AppLogger
	processor   *RuleFileProcessor
	document    string
	mcpServer   *server.MCPServer
}

func NewServer(projectRoot string, logger *logging.AppLogger) *Server {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Server{
		projectRoot: projectRoot,
		logger:      logger,
	}
}

// Build loads the rules and registers their tools and resources. It fails
// when the project has no rules directory.
func (s *Server) Build() error {
	document, fragments, err := rules.Aggregate(s.projectRoot, config.RulesDir(s.projectRoot), s.logger)
	if err != nil {
		return err
	}
	s.document = document
	s.processor = NewRuleFileProcessor(s.logger)
	tools := s.processor.ProcessFragments(fragments)

	s.mcpServer = server.NewMCPServer(
		"ruler",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.mcpServer.AddTool(
		mcp.NewTool(InstructionsToolName,
			mcp.WithDescription("Return every project rule as one concatenated document"),
		),
		s.handleInstructions,
	)
	for _, tool := range tools {
		s.mcpServer.AddTool(
			mcp.NewTool(tool.Name, mcp.WithDescription(tool.Description)),
			s.handleRule(tool),
		)
	}

	s.mcpServer.AddResource(
		mcp.NewResource(InstructionsURI, "Project instructions",
			mcp.WithResourceDescription("The concatenated contents of the rules directory"),
			mcp.WithMIMEType("text/markdown"),
		),
		s.handleInstructionsResource,
	)

	s.logger.Info("MCP server ready", "tools", len(tools)+1, "root", s.projectRoot)
	return nil
}

// Tools returns the rule tools registered by Build.
func (s *Server) Tools() []*RuleFileTool {
	if s.processor == nil {
		return nil
	}
	return s.processor.Tools()
}

// MCPServer exposes the underlying server once Build has run.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start builds the server and serves it on stdin/stdout until the client
// disconnects.
func (s *Server) Start() error {
	if err := s.Build(); err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func (s *Server) handleInstructions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.document == "" {
		return mcp.NewToolResultError("no rule files found in " + config.RulesDirName), nil
	}
	return mcp.NewToolResultText(s.document), nil
}

func (s *Server) handleRule(tool *RuleFileTool) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.Debug("Serving rule", "tool", tool.Name, "source", tool.RuleFile.Source)
		return mcp.NewToolResultText(tool.RuleFile.Body), nil
	}
}

func (s *Server) handleInstructionsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      InstructionsURI,
			MIMEType: "text/markdown",
			Text:     s.document,
		},
	}, nil
}
