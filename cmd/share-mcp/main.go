package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/share-mcp/internal/common"
)

func main() {
	defer common.RecoverWithCrashFile()

	configPath := flag.String("config", "", "Path to config file (default: $SHARE_API_CONFIG or share-mcp.toml)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Fprintln(os.Stderr, common.GetFullVersion())
		return
	}

	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	config, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	logger.Info().Msg("============================================================")
	logger.Info().Str("version", common.GetFullVersion()).Msg("MCP SERVER STARTING")
	logger.Info().Str("path", common.GetLogFilePath(logger)).Msg("Log file")
	logger.Info().Int("pid", os.Getpid()).Msg("Process ID")
	logger.Info().Msg("Waiting for MCP client connection...")
	logger.Info().Msg("============================================================")

	mcpServer := server.NewMCPServer(
		"share-api",
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
		server.WithRecovery(),
	)

	mcpServer.AddTools(toolDefinitions(newToolEnv(*configPath, logger))...)

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
