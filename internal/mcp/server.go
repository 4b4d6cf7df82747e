package mcp

import (
	"context"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Workspace is what the tools need from a platform.
type Workspace interface {
	Name() string
	Channels(ctx context.Context) ([]types.Channel, error)
	ResolveChannel(ctx context.Context, ref string) (types.Channel, error)
	platform.MessageProvider
}

// NewServer returns an MCP server exposing ws as tools.
func NewServer(ws Workspace, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "tern", Version: version}, nil)
	RegisterTools(server, ws)
	return server
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
func Serve(ctx context.Context, ws Workspace, version string) error {
	logging.Info("mcp", "serving workspace %s over stdio", ws.Name())
	return NewServer(ws, version).Run(ctx, &mcp.StdioTransport{})
}
