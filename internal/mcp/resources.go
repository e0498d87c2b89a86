package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/fitcount/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) currentSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var body any
	snap, err := h.ds.Session(ctx)
	switch {
	case errors.Is(err, tracker.ErrNoSession):
		body = map[string]any{"state": "not_started"}
	case err != nil:
		return nil, err
	default:
		body = snap
	}
	return jsonContents(req.Params.URI, body)
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	kinds, err := h.ds.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, kinds)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
