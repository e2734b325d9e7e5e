package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const categoriesURI = "agentforge://dialogue/categories"

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			categoriesURI,
			"Dialogue Categories",
			mcplib.WithResourceDescription("Agent categories the assistant recognizes, with keywords and default fields"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleCategoriesResource,
	)
}

func (s *Server) handleCategoriesResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Chat == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"chat not configured"}`,
			},
		}, nil
	}
	data, err := json.Marshal(s.deps.Chat.Categories())
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
