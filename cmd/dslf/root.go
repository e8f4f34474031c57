package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	internalapp "dslf/internal/app"
	"dslf/internal/config"
	"dslf/internal/logger"
	"dslf/internal/repository"
	"dslf/internal/services"
	"dslf/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand(a *app) *cobra.Command {
	defaults := config.NewConfig()

	cmd := &cobra.Command{
		Use:           "dslf",
		Short:         "A minimal HTTP forwarding service",
		Long:          "dslf answers requests with redirects configured in a CSV file of path,target,status rows.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := config.NewConfig()
			if err := config.Init(conf, cmd.Flags()); err != nil {
				return err
			}
			return a.withLogger(func(sugar *zap.SugaredLogger) error {
				return a.runRoot(cmd.Context(), conf, sugar)
			})
		},
	}
	config.RegisterFlags(cmd.Flags(), defaults)
	cmd.AddCommand(newImportCommand(a))
	return cmd
}

func (a *app) runRoot(ctx context.Context, conf *config.Config, sugar *zap.SugaredLogger) error {
	svc := services.NewCompositeService(conf, a.newDoer(conf.ProbeTimeout), sugar)

	if conf.Check {
		return a.printCheck(svc.Checker.CheckFile(conf.ConfigFile))
	}

	table, err := storage.LoadRouteTable(conf.ConfigFile)
	if err != nil {
		if errs := repository.Errors(err); len(errs) > 0 {
			printConfigErrors(a.stderr, conf.ConfigFile, errs)
			return errReported
		}
		return fmt.Errorf("failed to load redirect rules: %w", err)
	}

	if conf.Validate {
		return a.printValidation(svc.Validator.Validate(ctx, table.Entries()))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return internalapp.Run(ctx, conf, table, sugar)
}

func (a *app) printCheck(report services.CheckReport) error {
	if report.Err != nil {
		return report.Err
	}
	if !report.OK() {
		printConfigErrors(a.stderr, report.File, report.Errors)
		return errReported
	}

	color.New(color.FgGreen).Fprintln(a.stdout, "✓ Configuration file syntax is valid!")
	fmt.Fprintf(a.stdout, "  - File: %s\n", report.File)
	fmt.Fprintf(a.stdout, "  - Rules loaded: %d\n", report.Rules)
	return nil
}

func (a *app) printValidation(report services.ValidationReport) error {
	failures := report.Failures()
	if len(failures) == 0 {
		color.New(color.FgGreen).Fprintf(a.stdout, "✓ All %d destinations are reachable!\n", len(report.Outcomes))
		return nil
	}

	color.New(color.FgRed).Fprintf(a.stderr, "✗ Validation failed for %d of %d URLs:\n", len(failures), len(report.Outcomes))
	for _, f := range failures {
		fmt.Fprintf(a.stderr, "  - %s -> %s: %s\n", f.Path, f.Target, f.Describe())
	}
	return errReported
}

func printConfigErrors(w io.Writer, file string, errs []*repository.ConfigError) {
	color.New(color.FgRed).Fprintf(w, "✗ Configuration file %s has %d error(s):\n", file, len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "  - %s\n", e.Error())
	}
}

// withLogger builds the logger for one command run and flushes it afterwards.
func (a *app) withLogger(fn func(sugar *zap.SugaredLogger) error) error {
	sugar, err := a.newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync(sugar)
	return fn(sugar)
}
