package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"dslf/internal/config"
	"dslf/internal/rebrandly"
	"dslf/internal/services"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCommand(a *app) *cobra.Command {
	var output string
	defaults := config.NewConfig()

	cmd := &cobra.Command{
		Use:   "import <provider>",
		Short: "Import links from external providers",
		Long: strings.Join([]string{
			"Import links from external providers into a redirects file.",
			"",
			"Supported providers: " + rebrandly.Name + ".",
			"Requires " + rebrandly.EnvAPIKey + " or " + rebrandly.EnvToken + " for rebrandly; a .env file in the",
			"working directory is read first.",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}

			conf := config.NewConfig()
			if err := config.Init(conf, cmd.Flags()); err != nil {
				return err
			}

			return a.withLogger(func(sugar *zap.SugaredLogger) error {
				svc := services.NewCompositeService(conf, a.newDoer(conf.ProbeTimeout), sugar)

				im, err := svc.Importer(args[0], services.ImporterOptions{})
				if err != nil {
					return err
				}

				result, err := im.Import(cmd.Context(), output)
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				a.printImport(result)
				return nil
			})
		},
	}

	config.RegisterImportFlags(cmd.Flags(), defaults)
	cmd.Flags().StringVarP(&output, "output", "o", services.DefaultImportOutput, "output file path for the imported redirects")
	return cmd
}

func (a *app) printImport(result services.ImportResult) {
	if result.Output == "" {
		color.New(color.FgYellow).Fprintln(a.stdout, "No links found to export.")
		return
	}

	color.New(color.FgGreen).Fprintf(a.stdout, "✓ Exported %d redirects to %s\n", result.Written, result.Output)
	for _, d := range sortedKeys(result.Domains) {
		fmt.Fprintf(a.stdout, "  - %s: %d links\n", d, result.Domains[d])
	}
	if len(result.Skipped) > 0 {
		color.New(color.FgYellow).Fprintf(a.stdout, "  %d links skipped\n", len(result.Skipped))
	}
}
