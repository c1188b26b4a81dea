package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/distquery/parallelizer/pkg/config"
	"github.com/distquery/parallelizer/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "parallelizer-cli",
	Short: "Distributed query parallelizer demo driver",
	Long: `parallelizer-cli drives the distributed query parallelizer against a
JSON fixture plan: it ingests a fragment tree, builds the dependency
graph, collects stats, decides width and endpoint assignment, and
emits the resulting PlanFragment records.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a parallelizer config file (defaults applied if omitted)")

	binName := BinName()
	rootCmd.Example = `  # Parallelize a fixture plan and print the emitted fragments
  ` + binName + ` run -f ./testdata/plan.json

  # Parallelize using endpoint activity/affinity loaded from a catalog DB
  ` + binName + ` run -f ./testdata/plan.json --catalog ./endpointcatalog.db`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
