package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RichardKnop/minidb/internal/minidb"
	"github.com/RichardKnop/minidb/internal/parser"
	"github.com/RichardKnop/minidb/internal/pkg/config"
	"github.com/RichardKnop/minidb/internal/pkg/logging"
	"github.com/RichardKnop/minidb/internal/repl"
)

var (
	errMissingFilename = errors.New("Must supply a database filename.")
	// errAborted marks errors the REPL has already reported to the user.
	errAborted = errors.New("session aborted")
)

func newRootCmd() *cobra.Command {
	var (
		configFlag   string
		logLevelFlag string
	)

	cmd := &cobra.Command{
		Use:   "minidb <database file>",
		Short: "minidb - single table database backed by an on-disk B+Tree",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errMissingFilename
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			if logLevelFlag != "" {
				cfg.LogLevel = logLevelFlag
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() // flushes buffer, if any

			return run(cmd, logger, cfg, args[0])
		},
	}

	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "path to a YAML config file (defaults to $"+config.ConfigEnvVar+")")
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "", "log level, overrides the config file and $"+config.LogLevelEnvVar)

	return cmd
}

func run(cmd *cobra.Command, logger *zap.Logger, cfg *config.Config, dbPath string) error {
	ctx := cmd.Context()

	opts, err := cfg.TableOptions()
	if err != nil {
		return err
	}

	aTable, err := minidb.Open(ctx, logger, dbPath, opts...)
	if err != nil {
		return err
	}

	aParser := parser.New(parser.WithCacheSize(cfg.StatementCacheSize))
	runErr := repl.New(logger, aTable, aParser, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)

	// Close is best effort after a failed session, the failure is what gets reported
	if err := aTable.Close(ctx); err != nil {
		if runErr == nil {
			return fmt.Errorf("close database: %w", err)
		}
		logger.Error("error closing database", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("%w: %w", errAborted, runErr)
	}

	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errAborted) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
