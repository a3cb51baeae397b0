package cli

import (
	"fmt"
	"os"

	"ezquiz/internal/config"
	"ezquiz/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ezquiz",
	Short: "Turn plain-text exam documents into quizzes",
	Long: `ezquiz parses plain-text exam documents into multiple-choice quizzes.

A document looks like:

  ### **Đề thi thử**
  **Câu 1: 2+2=?**
  A. 3
  B. 4
  **Đáp án đúng: B**`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log rejected question blocks")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Logger.Level = "debug"
	}
	if err := logger.Initialize(loaded.Logger); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
