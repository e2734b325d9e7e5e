package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/service"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.generateAgentCodeTool(),
		s.agentChatTool(),
		s.suggestAgentFieldsTool(),
	)
}

func (s *Server) generateAgentCodeTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("generate_agent_code",
		mcplib.WithDescription("Generate the TypeScript source of a Cloudflare worker agent from its name, description and functionality"),
		mcplib.WithString("name",
			mcplib.Required(),
			mcplib.Description("Display name of the agent, e.g. \"Content Moderator\""),
		),
		mcplib.WithString("description",
			mcplib.Required(),
			mcplib.Description("One-line description of the agent"),
		),
		mcplib.WithString("functionality",
			mcplib.Required(),
			mcplib.Description("What the agent should do"),
		),
		mcplib.WithString("variant",
			mcplib.Description("Client variant: classic (default) or enhanced"),
			mcplib.Enum("classic", "enhanced"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGenerateAgentCode,
	}
}

func (s *Server) agentChatTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("agent_chat",
		mcplib.WithDescription("Ask the AgentForge assistant for help designing an agent"),
		mcplib.WithString("message",
			mcplib.Required(),
			mcplib.Description("The user's message"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleAgentChat,
	}
}

func (s *Server) suggestAgentFieldsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("suggest_agent_fields",
		mcplib.WithDescription("Suggest name, description and functionality for an agent from a free-text request"),
		mcplib.WithString("message",
			mcplib.Required(),
			mcplib.Description("Free-text description of the desired agent"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSuggestAgentFields,
	}
}

func (s *Server) handleGenerateAgentCode(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Generator == nil {
		return mcplib.NewToolResultError("generator not configured"), nil
	}
	args := req.GetArguments()
	spec := agent.Spec{
		Name:          stringArg(args, "name"),
		Description:   stringArg(args, "description"),
		Functionality: stringArg(args, "functionality"),
	}

	opts, err := s.deps.Generator.ResolveOptions(stringArg(args, "variant"), "")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	res, err := s.deps.Generator.Generate(ctx, spec, opts)
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	return mcplib.NewToolResultText(res.Code), nil
}

func (s *Server) handleAgentChat(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Chat == nil {
		return mcplib.NewToolResultError("chat not configured"), nil
	}
	msg, ok := req.GetArguments()["message"].(string)
	if !ok {
		return mcplib.NewToolResultError("message is required"), nil
	}
	if err := service.CheckMessage(msg); err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	return mcplib.NewToolResultText(s.deps.Chat.Reply(ctx, msg, nil).Reply), nil
}

func (s *Server) handleSuggestAgentFields(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Chat == nil {
		return mcplib.NewToolResultError("chat not configured"), nil
	}
	msg, ok := req.GetArguments()["message"].(string)
	if !ok || msg == "" {
		return mcplib.NewToolResultError("message is required"), nil
	}

	sug, found := s.deps.Chat.Suggest(msg)
	if !found {
		return mcplib.NewToolResultText("No suggestion: the message does not match a known agent category."), nil
	}
	data, err := json.Marshal(sug)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal suggestion", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}
