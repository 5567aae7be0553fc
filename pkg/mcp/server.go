package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/patsub/pkg/rule"
	"github.com/macropower/patsub/pkg/version"
)

// AddressStdio selects the stdio transport.
const AddressStdio = "stdio"

// RuleSource provides the active rules.
type RuleSource interface {
	Load() *rule.Set
}

// Server implements the MCP server for patsub.
type Server struct {
	rules   RuleSource
	server  *mcp.Server
	tracer  trace.Tracer
	address string
	opts    []rule.Opt
}

// NewServer creates a new MCP server instance. Rules passed to tools are
// compiled with opts.
func NewServer(address string, rules RuleSource, opts ...rule.Opt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		rules:   rules,
		opts:    opts,
		tracer:  otel.Tracer("mcp"),
		server: mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: instructions,
		}),
	}

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "substitute",
		Description: "Run rules over lines of text. Uses the active rules unless 'rules' is given.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"lines": {
					Type:        "array",
					Description: "Input lines, without line terminators.",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"rules": {
					Type:        "array",
					Description: "Rules to use instead of the active rules, in order.",
					Items:       newRuleSchema(),
				},
			},
			Required: []string{"lines"},
		},
	}, WithTracing(s.tracer, s.handleSubstitute))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compile_pattern",
		Description: "Compile a brace-grammar pattern and return its regular expression and group names.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {
					Type:        "string",
					Description: "Brace-grammar pattern.",
				},
			},
			Required: []string{"pattern"},
		},
	}, WithTracing(s.tracer, s.handleCompilePattern))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the active rules, in evaluation order.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, WithTracing(s.tracer, s.handleListRules))
}

func (s *Server) activeSet() (*rule.Set, error) {
	set := s.rules.Load()
	if set == nil {
		return nil, errors.New("no active rules")
	}

	return set, nil
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server. It returns when ctx is done or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" || s.address == AddressStdio {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "shut down MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
