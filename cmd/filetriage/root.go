package main

import (
	"github.com/spf13/cobra"

	"github.com/gyeh/filetriage/internal/config"
)

var (
	cfg     config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "filetriage",
	Short: "Content-driven file organizer",
	Long:  "Classifies files against an existing target directory tree and migrates them, keeping a replayable transfer log and a deduplicated result store.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to YAML config file")
	pf.StringVar(&cfg.TargetRoot, "target", "", "Target directory tree root")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	pf.StringVar(&cfg.LogDir, "log-dir", "", "Directory for transfer session documents")
	pf.StringVar(&cfg.ResultFile, "store", "", "Path to the result store file")
}

// loadConfig merges the optional config file under the already-parsed flags
// and applies defaults.
func loadConfig() error {
	if cfgFile != "" {
		if err := cfg.LoadFromFile(cfgFile); err != nil {
			return err
		}
	}
	cfg.ApplyDefaults()
	return nil
}
