package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/internal/sanitize"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/render"
	"github.com/aretw0/canopy/pkg/tree"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	screensURI      = "canopy://screens"
	screenURIPrefix = "canopy://screens/"
)

// PatchResponse is returned by the patching tools.
type PatchResponse struct {
	Screen  string `json:"screen" jsonschema_description:"The patched screen"`
	Matches int    `json:"matches" jsonschema_description:"Number of nodes the patches matched"`
	Version uint64 `json:"version" jsonschema_description:"Screen version after the patch"`
}

// Screens is what the MCP server needs from the screen manager.
type Screens interface {
	Get(ctx context.Context, name string) (*domain.Node, error)
	Patch(ctx context.Context, name string, patches ...domain.Patch) (*domain.Node, int, error)
	List(ctx context.Context) ([]string, error)
	Version(name string) uint64
}

// Server exposes screens to MCP clients.
type Server struct {
	screens     Screens
	logger      *slog.Logger
	maxTextSize int
	readOnly    bool
	mcpServer   *server.MCPServer
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxTextSize limits each content string a tool may write.
func WithMaxTextSize(n int) Option {
	return func(s *Server) { s.maxTextSize = n }
}

// WithReadOnly leaves out the patching tools.
func WithReadOnly() Option {
	return func(s *Server) { s.readOnly = true }
}

// NewServer creates a new MCP Server instance.
func NewServer(screens Screens, opts ...Option) *Server {
	s := &Server{
		screens:   screens,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("canopy-mcp", strings.TrimSpace(canopy.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_screens",
		mcp.WithDescription("List the names of all served screens."),
	), s.handleListScreens)

	s.mcpServer.AddTool(mcp.NewTool("get_screen",
		mcp.WithDescription("Get the full UI tree of a screen as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Screen name")),
	), s.handleGetScreen)

	s.mcpServer.AddTool(mcp.NewTool("find_node",
		mcp.WithDescription("Find the first node with the given id (pre-order) in a screen."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Screen name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), s.handleFindNode)

	s.mcpServer.AddTool(mcp.NewTool("render_screen",
		mcp.WithDescription("Render a screen as plain text, the way a terminal host would show it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Screen name")),
	), s.handleRenderScreen)

	if s.readOnly {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("update_content",
		mcp.WithDescription("Set the content of every node with the given id and store the screen."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Screen name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New content")),
		mcp.WithOutputSchema[PatchResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdateContent))

	s.mcpServer.AddTool(mcp.NewTool("apply_patches",
		mcp.WithDescription(`Apply a JSON array of patches ([{"id": ..., "value": ...}]). An array value replaces children.`),
		mcp.WithString("name", mcp.Required(), mcp.Description("Screen name")),
		mcp.WithString("patches", mcp.Required(), mcp.Description("JSON array of patches")),
		mcp.WithOutputSchema[PatchResponse](),
	), mcp.NewStructuredToolHandler(s.handleApplyPatches))
}

func (s *Server) handleListScreens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.screens.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(map[string][]string{"screens": names})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetScreen(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := s.screens.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	data, err := decoder.EncodeIndent(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleFindNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := s.screens.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	n, ok := tree.FindByID(root, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("node %q not found in %s", id, name)), nil
	}
	jsonBytes, _ := json.Marshal(n)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRenderScreen(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := s.screens.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	out, err := render.NewTerminal().Render(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleUpdateContent(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PatchResponse, error) {
	name, _ := args["name"].(string)
	id, _ := args["id"].(string)
	value, _ := args["value"].(string)
	if name == "" || id == "" {
		return PatchResponse{}, errors.New("name and id are required")
	}
	return s.patch(ctx, name, []domain.Patch{domain.TextPatch(id, value)})
}

func (s *Server) handleApplyPatches(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PatchResponse, error) {
	name, _ := args["name"].(string)
	raw, _ := args["patches"].(string)
	if name == "" {
		return PatchResponse{}, errors.New("name is required")
	}
	patches, err := decoder.ParsePatches([]byte(raw))
	if err != nil {
		return PatchResponse{}, fmt.Errorf("invalid patches: %w", err)
	}
	return s.patch(ctx, name, patches)
}

func (s *Server) patch(ctx context.Context, name string, patches []domain.Patch) (PatchResponse, error) {
	if err := sanitize.Patches(patches, s.maxTextSize); err != nil {
		s.logger.Warn("MCP patch: input rejected", "screen", name, "err", err)
		return PatchResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	_, matches, err := s.screens.Patch(ctx, name, patches...)
	if err != nil {
		return PatchResponse{}, fmt.Errorf("patch failed: %w", err)
	}
	return PatchResponse{Screen: name, Matches: matches, Version: s.screens.Version(name)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(screensURI, "Served screens",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.screens.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list screens: %w", err)
		}
		if names == nil {
			names = []string{}
		}
		jsonBytes, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      screensURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(screenURIPrefix+"{name}", "Screen tree",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name := strings.TrimPrefix(request.Params.URI, screenURIPrefix)
		root, err := s.screens.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		data, err := decoder.Encode(root)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
