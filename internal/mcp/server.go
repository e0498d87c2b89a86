// Package mcp exposes the live session and the set history as MCP tools
// and resources.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("fitcount", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("fitcount repetition counter. Read the live workout session, the exercise catalog, and the history of completed sets."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessionStatus, Handler: h.getSessionStatus},
		server.ServerTool{Tool: toolGetSetHistory, Handler: h.getSetHistory},
		server.ServerTool{Tool: toolGetRecentSessions, Handler: h.getRecentSessions},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentSession, Handler: h.currentSession},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentSession = mcp.NewResource(
	"fitcount://current_session",
	"Current Session",
	mcp.WithResourceDescription("Live snapshot of the workout session: exercise, stage label, reps and sets against their targets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"fitcount://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Exercises the counter recognizes with their joints and angle thresholds"),
	mcp.WithMIMEType("application/json"),
)
