package cli

import (
	"context"
	"os"

	"board-tester/internal/config"
	"board-tester/internal/version"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// GUI opens the desktop window, loading layoutPath when it is not empty.
// It blocks until the window closes.
type GUI func(ctx context.Context, cfg config.Config, layoutPath string, logger *log.Logger) error

// Execute runs the board-tester CLI. Without a subcommand the GUI is started.
func Execute(gui GUI) error {
	return newRootCmd(gui).ExecuteContext(context.Background())
}

func newRootCmd(gui GUI) *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "boardtest [layout.json]",
		Short:        "Board test data entry over a layout of positioned fields",
		Long:         `boardtest records measurements typed into fields placed over a board drawing, exports each run to a spreadsheet, logs it, and compares logged runs.`,
		Version:      version.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Debug("config", "layouts", cfg.LayoutsDir, "db", cfg.DBPath)

			ctx := withConfig(withLogger(cmd.Context(), logger), cfg)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var layoutPath string
			if len(args) == 1 {
				layoutPath = args[0]
				if _, err := os.Stat(layoutPath); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			return gui(ctx, configFromContext(ctx), layoutPath, loggerFromContext(ctx))
		},
	}

	root.SetVersionTemplate(version.String())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(newRunsCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newS2PCmd())
	root.AddCommand(newIMCmd())

	return root
}
