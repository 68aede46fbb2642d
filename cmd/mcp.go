package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"provkit/internal/provider"
	"provkit/internal/rfc822"
	"provkit/internal/unit"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing provider inspection tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	providers, scanProblems, err := resolveProviders()
	if err != nil {
		return err
	}
	// load everything up front so tool calls never touch the disk
	for _, p := range providers {
		p.Load(provider.DefaultLoadOptions())
	}

	s := mcpserver.NewMCPServer("provkit", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(listUnitsTool(), makeListUnitsHandler(providers))
	s.AddTool(getUnitTool(), makeGetUnitHandler(providers))
	s.AddTool(classifyPathTool(), makeClassifyPathHandler(providers))
	s.AddTool(listProblemsTool(), makeListProblemsHandler(providers, scanProblems))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func listUnitsTool() mcp.Tool {
	return mcp.NewTool("list_units",
		mcp.WithDescription("List the units of every loaded provider with kind, id and origin. Virtual units are marked."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("kind",
			mcp.Description("Optional kind filter: 'job', 'category', 'test plan' or 'file'"),
		),
		mcp.WithString("provider",
			mcp.Description("Optional provider name filter (e.g. '2014.com.example:tests')"),
		),
	)
}

func getUnitTool() mcp.Tool {
	return mcp.NewTool("get_unit",
		mcp.WithDescription("Get a unit's full definition by qualified id, with its origin and provider. Lists every unit claiming the id."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Fully qualified unit id (e.g. '2014.com.example::smoke')"),
		),
	)
}

func classifyPathTool() mcp.Tool {
	return mcp.NewTool("classify_path",
		mcp.WithDescription("Attribute a filesystem path to a loaded provider, returning the file's role, base directory and any units rooted in it."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to classify"),
		),
	)
}

func listProblemsTool() mcp.Tool {
	return mcp.NewTool("list_problems",
		mcp.WithDescription("List everything that went wrong while loading providers: broken definitions, malformed unit files, unreadable directories."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeListUnitsHandler(providers []*provider.Provider) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kindFilter := req.GetString("kind", "")
		providerFilter := req.GetString("provider", "")

		var sb strings.Builder
		total := 0
		for _, p := range providers {
			if providerFilter != "" && p.Name() != providerFilter {
				continue
			}
			fmt.Fprintf(&sb, "## %s\n\n", p)
			for _, u := range p.Units() {
				if kindFilter != "" && u.Kind() != kindFilter {
					continue
				}
				marker := ""
				if u.Virtual() {
					marker = ", virtual"
				}
				fmt.Fprintf(&sb, "- **%s** (%s%s) at %s\n", u, u.Kind(), marker, u.Origin())
				total++
			}
			sb.WriteString("\n")
		}
		if total == 0 {
			return mcp.NewToolResultText("No units matched."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeGetUnitHandler(providers []*provider.Provider) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		var matches []string
		for _, p := range providers {
			for _, u := range p.UnitsByID(id) {
				matches = append(matches, formatUnit(p, u))
			}
		}
		if len(matches) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("unit %q not found, call list_units to see available ids", id)), nil
		}
		return mcp.NewToolResultText(strings.Join(matches, "\n---\n\n")), nil
	}
}

func makeClassifyPathHandler(providers []*provider.Provider) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := req.GetString("path", "")
		if raw == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		path, err := filepath.Abs(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve path: %v", err)), nil
		}
		for _, p := range providers {
			cls, err := p.Classify(path)
			if err != nil {
				continue
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "**Path:** %s  \n**Provider:** %s  \n**Role:** %s  \n**Base:** %s\n",
				path, p.Name(), cls.Role, cls.Base)
			if units := p.UnitsForPath(path); len(units) > 0 {
				sb.WriteString("\nUnits rooted in this file:\n")
				for _, u := range units {
					fmt.Fprintf(&sb, "- %s (%s)\n", u, u.Kind())
				}
			}
			return mcp.NewToolResultText(sb.String()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("path %q does not belong to any loaded provider", path)), nil
	}
}

func makeListProblemsHandler(providers []*provider.Provider, scanProblems []error) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		total := 0
		for _, problem := range scanProblems {
			fmt.Fprintf(&sb, "- (discovery) %v\n", problem)
			total++
		}
		for _, p := range providers {
			for _, problem := range p.Problems() {
				fmt.Fprintf(&sb, "- (%s) %v\n", p.Name(), problem)
				total++
			}
		}
		if total == 0 {
			return mcp.NewToolResultText("No problems. Every provider loaded cleanly."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("## Problems (%d)\n\n%s", total, sb.String())), nil
	}
}

// --- Formatting helpers ---

func formatUnit(p *provider.Provider, u unit.Unit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", u)
	fmt.Fprintf(&sb, "**Kind:** %s  \n**Provider:** %s  \n**Origin:** %s  \n**Virtual:** %t\n\n",
		u.Kind(), p.Name(), u.Origin(), u.Virtual())
	var rec strings.Builder
	if err := rfc822.Write(&rec, u.Record()); err == nil {
		fmt.Fprintf(&sb, "```\n%s```\n", rec.String())
	}
	return sb.String()
}
