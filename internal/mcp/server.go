package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/simpilot/simpilot/internal/catalog"
)

// Server wraps the MCP SDK server around one output directory. Every
// tool it registers is read only; launching runs stays with the CLI.
type Server struct {
	server  *sdk.Server
	catalog *catalog.Catalog
	root    string
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g. "simpilot")
	Version string // Server version
	Root    string // Output directory holding the run directories
}

// NewServer creates an MCP server exposing the runs under cfg.Root.
func NewServer(cfg *Config) (*Server, error) {
	cat, err := catalog.Open(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("opening run catalog: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{server: mcpServer, catalog: cat, root: cfg.Root}
	s.registerTools()
	return s, nil
}

// Run serves over stdio transport. It blocks until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.catalog.Close()

	return err
}

// Close releases the catalog handle.
func (s *Server) Close() error {
	return s.catalog.Close()
}
