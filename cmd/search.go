package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/sourcerouter/internal/tools"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the web through the provider fallback chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		a := buildApp(cfg)
		defer a.close()

		results := a.chain.Search(context.Background(), args[0], searchLimit)
		fmt.Print(tools.FormatResults(results))
		return nil
	},
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List search engines in priority order with availability",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		a := buildApp(cfg)
		defer a.close()

		for i, status := range a.chain.Engines() {
			state := "available"
			if !status.Available {
				state = "no credential"
			}
			fmt.Printf("%d. %-12s %s\n", i+1, status.Name, state)
		}
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(enginesCmd)
}
