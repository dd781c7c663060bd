package main

import (
	"fmt"
	"os"

	"github.com/ludo-technologies/lshdedup/internal/logger"
	"github.com/ludo-technologies/lshdedup/internal/version"
	"github.com/ludo-technologies/lshdedup/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
)

const serverName = "lshdedup"

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to a configuration file applied to every tool call")
	verbose := pflag.BoolP("verbose", "v", false, "Enable verbose (debug) logging")
	logFormat := pflag.String("log-format", "text", "Log format: text or json")
	pflag.Parse()

	// MCP uses stdout for JSON-RPC
	log := logger.FromOptions(logger.Options{
		Format:  *logFormat,
		Verbose: *verbose,
		Writer:  os.Stderr,
	}).WithComponent("mcp")

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)
	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(*configPath, log)))

	log.Info("starting MCP server",
		"name", serverName,
		"version", version.Short(),
		"tools", []string{"dedupe_records", "query_records", "compare_texts", "index_stats"})

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
