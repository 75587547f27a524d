package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kayz/sourcerouter/internal/logger"
	"github.com/kayz/sourcerouter/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the router as MCP tools over stdio",
	Long: `serve exposes route_query, routing_stats and web_search as MCP tools
on stdio, so an agent host can use the router directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		a := buildApp(cfg)
		defer a.close()

		s := server.NewMCPServer("sourcerouter", Version)
		tools.Register(s, tools.Deps{
			Router: a.router,
			Docs:   a.docs,
			Chain:  a.chain,
		})

		logger.Info("serving MCP tools on stdio")
		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
