package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	routeShowSources bool
	routeShowStats   bool
)

var routeCmd = &cobra.Command{
	Use:   "route <query>",
	Short: "Route a query and print the retrieved context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		a := buildApp(cfg)
		defer a.close()

		query := args[0]
		outcome := a.router.Route(context.Background(), query, a.retriever(), a.docs.HasDocuments())

		fmt.Printf("Datasource: %s (confidence %.2f)\n", outcome.Decision.Datasource, outcome.Decision.Confidence)
		fmt.Printf("Reasoning:  %s\n", outcome.Decision.Reasoning)
		if outcome.Err != "" {
			fmt.Printf("Error:      %s\n", outcome.Err)
		}
		fmt.Println()
		fmt.Println(outcome.Context)

		if routeShowSources {
			fmt.Printf("Sources (%d):\n", len(outcome.Sources))
			for i, src := range outcome.Sources {
				switch src.Type {
				case "local":
					fmt.Printf("  %d. [local] %s", i+1, src.SourceID)
					if src.Page != "" {
						fmt.Printf(" p.%s", src.Page)
					}
					fmt.Println()
				default:
					fmt.Printf("  %d. [%s] %s %s\n", i+1, src.Provider, src.Title, src.URL)
				}
			}
		}

		if routeShowStats {
			stats := a.router.Stats()
			fmt.Printf("\nTotal queries: %d | avg confidence %.2f | success rate %.2f\n",
				stats.TotalQueries, stats.AvgConfidence, stats.SuccessRate)
		}

		return nil
	},
}

func init() {
	routeCmd.Flags().BoolVar(&routeShowSources, "sources", false,
		"Print the source list after the context")
	routeCmd.Flags().BoolVar(&routeShowStats, "stats", false,
		"Print routing statistics after the call")
	rootCmd.AddCommand(routeCmd)
}
