package cmd

import (
	"os"

	"curseforge-mod-updater/logger"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	configDir string
	logFile   string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "curseforge-mod-updater",
	Short: "Keeps CurseForge mods, resource packs and shaders up to date",
	Long: `curseforge-mod-updater tracks CurseForge projects for one Minecraft
installation and installs the newest file matching its game version,
mod loader and release channel.

Configuration is read from a .env file and the environment:
CURSEFORGE_API_KEY, MINECRAFT_DIR, MINECRAFT_VERSION, MINECRAFT_LOADER,
RELEASE_CHANNEL, KEEP_OLD_VERSIONS, CURSEFORGE_GAME_ID and USERAGENT.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.InitLogger(logFile, debug); err != nil {
			return err
		}
		// Match GOMAXPROCS to the container CPU quota.
		if _, err := maxprocs.Set(maxprocs.Logger(logger.Log.Debugf)); err != nil {
			logger.Log.Warnw("Failed to set GOMAXPROCS", "error", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		defaultCmd.Run(defaultCmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing the .env file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", logger.DefaultLogFile, "file to write logs to")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log every API request")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
