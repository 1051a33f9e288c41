package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	storage    string
	state      string
	backendURL string
}

// NewRootCommand creates and returns the root cobra command for talentmap
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "talentmap",
		Short: "Take the talent mapping assessment from the terminal",
		Long: `talentmap administers three psychometric instruments (VIA character
strengths, RIASEC interests and OCEAN personality), keeps your answers
encrypted on disk between sessions, and submits the scored assessment to
the analysis backend.

Configuration is loaded from .talentmap/config.yaml in the current
directory, or from config.yaml in the talentmap home directory
($TALENTMAP_HOME, default ~/.talentmap). CLI flags override both.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to config file")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&g.storage, "storage", "", "Storage backend (memory, file, sqlite, redis)")
	pf.StringVar(&g.state, "state", "", "State directory (file) or database path (sqlite)")
	pf.StringVar(&g.backendURL, "backend-url", "", "Assessment backend base URL")

	cmd.AddCommand(newTakeCommand(g))
	cmd.AddCommand(newStatusCommand(g))
	cmd.AddCommand(newScoresCommand(g))
	cmd.AddCommand(newAutofillCommand(g))
	cmd.AddCommand(newSubmitCommand(g))
	cmd.AddCommand(newResultCommand(g))
	cmd.AddCommand(newMigrateCommand(g))
	cmd.AddCommand(newResetCommand(g))
	cmd.AddCommand(newBankCommand())

	return cmd
}
