// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/owasp-bumper/repolist/internal/gateway"
	"github.com/owasp-bumper/repolist/internal/render"
	"github.com/owasp-bumper/repolist/internal/usecase"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetches, enriches and renders the repository list",
	Long: `Fetches all repositories for the configured organization, enriches each
with activity sparklines, open PR counts and index.md metadata, and writes
the rendered HTML page. Enrichment failures for individual repositories
degrade that repository's record; only listing failures abort the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// .env is optional; real deployments configure via CI environment.
		_ = godotenv.Load()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		org := flagOrEnv(cmd, "org", "GITHUB_ORG", "owasp")
		output := flagOrEnv(cmd, "output", "OUTPUT_FILE", "index.html")
		workers, _ := cmd.Flags().GetInt("workers")
		asJSON, _ := cmd.Flags().GetBool("json")
		sparklines := toggle(cmd, "sparklines", "FETCH_SPARKLINES")
		metadata := toggle(cmd, "metadata", "FETCH_METADATA")
		token := os.Getenv("GITHUB_TOKEN")

		if token == "" && (sparklines || metadata) {
			// Unauthenticated quota cannot cover per-repository calls.
			logger.Info("No GITHUB_TOKEN set, skipping enrichment fetches")
			sparklines, metadata = false, false
		}

		governor := gateway.NewGovernor(logger)
		fetcher, err := gateway.NewGitHubGateway(token, governor, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}

		logger.WithField("org", org).Info("Fetching repository list")
		repos, err := fetcher.ListOrgRepos(ctx, org)
		if err != nil {
			return fmt.Errorf("failed to list repositories: %w", err)
		}

		enricher := usecase.NewEnricher(fetcher, governor, logger, usecase.Options{
			Workers:    workers,
			Sparklines: sparklines,
			Metadata:   metadata,
		})
		records, err := enricher.Enrich(ctx, repos)
		if err != nil {
			return fmt.Errorf("failed to enrich repositories: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"repos":     len(records),
			"api_calls": governor.Calls(),
		}).Info("Enrichment complete")

		if asJSON {
			data, err := render.Records(records)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := render.Page(f, org, records, time.Now()); err != nil {
			return err
		}
		logger.WithField("file", output).Info("Page generated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("org", "o", "", "Target GitHub organization (env GITHUB_ORG, default owasp)")
	generateCmd.Flags().StringP("output", "f", "", "Output HTML file (env OUTPUT_FILE, default index.html)")
	generateCmd.Flags().Int("workers", 10, "Maximum concurrent enrichment workers")
	generateCmd.Flags().Bool("sparklines", true, "Fetch weekly commit activity (env FETCH_SPARKLINES)")
	generateCmd.Flags().Bool("metadata", true, "Fetch index.md metadata and PR counts (env FETCH_METADATA)")
	generateCmd.Flags().Bool("json", false, "Print the enriched records as JSON instead of writing HTML")
}

// flagOrEnv resolves a string setting: explicit flag, then environment
// variable, then default.
func flagOrEnv(cmd *cobra.Command, flag, env, def string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// toggle resolves a boolean feature switch. The flag wins when set on the
// command line; otherwise the environment variable can disable it.
func toggle(cmd *cobra.Command, flag, env string) bool {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	if v := os.Getenv(env); v != "" {
		return strings.EqualFold(v, "true")
	}
	v, _ := cmd.Flags().GetBool(flag)
	return v
}
