package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/logger"

	"github.com/spf13/viper"
)

const defaultUserAgent = "curseforge-mod-updater/dev (unknown-user)"

// Subdirectories of the Minecraft directory that content is installed into.
var contentDirs = []string{"mods", "shaderpacks", "resourcepacks"}

// Config holds all configuration for the application.
// Values are loaded by Viper from a .env file and/or environment variables.
type Config struct {
	CurseForgeAPIKey string `mapstructure:"CURSEFORGE_API_KEY"`
	GameID           int    `mapstructure:"CURSEFORGE_GAME_ID"`
	MinecraftLoader  string `mapstructure:"MINECRAFT_LOADER"`
	MinecraftVersion string `mapstructure:"MINECRAFT_VERSION"`
	ReleaseChannel   string `mapstructure:"RELEASE_CHANNEL"`
	UserAgent        string `mapstructure:"USERAGENT"`
	MinecraftDir     string `mapstructure:"MINECRAFT_DIR"`
	DatabasePath     string `mapstructure:"-"` // derived from MinecraftDir
	KeepOldVersions  bool   `mapstructure:"KEEP_OLD_VERSIONS"`
}

var envKeys = []string{
	"CURSEFORGE_API_KEY",
	"CURSEFORGE_GAME_ID",
	"MINECRAFT_LOADER",
	"MINECRAFT_VERSION",
	"RELEASE_CHANNEL",
	"USERAGENT",
	"MINECRAFT_DIR",
	"KEEP_OLD_VERSIONS",
}

// LoadConfig reads configuration from path/.env and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		logger.Log.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(key, key); err != nil {
			logger.Log.Warnw("Unable to bind env var", "key", key, "error", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)
	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// processConfigDefaults fills in every optional setting left empty.
func processConfigDefaults(config *Config) {
	if config.MinecraftLoader == "" {
		config.MinecraftLoader = "fabric"
	}
	if config.GameID == 0 {
		config.GameID = int(curseforge.DefaultGameID)
	}
	if config.ReleaseChannel == "" {
		config.ReleaseChannel = curseforge.ReleaseTypeRelease.String()
	}

	// Viper coerces unparsable booleans silently, so read the raw value.
	keepOldStr := viper.GetString("KEEP_OLD_VERSIONS")
	if keepOldStr != "" {
		keepOld, err := strconv.ParseBool(keepOldStr)
		if err != nil {
			logger.Log.Warnw("Invalid value for KEEP_OLD_VERSIONS, defaulting to false", "value", keepOldStr, "error", err)
			keepOld = false
		}
		config.KeepOldVersions = keepOld
	}

	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
		logger.Log.Warn("USERAGENT not set in config or environment, using default.")
	}
}

// validateAndEnsureDirectories checks the settings that have no default and
// creates the Minecraft directory layout.
func validateAndEnsureDirectories(config *Config) error {
	if config.MinecraftDir == "" {
		return fmt.Errorf("MINECRAFT_DIR is required")
	}
	if _, err := config.Loader(); err != nil {
		return fmt.Errorf("invalid MINECRAFT_LOADER: %w", err)
	}
	if _, err := config.Channel(); err != nil {
		return fmt.Errorf("invalid RELEASE_CHANNEL: %w", err)
	}

	dirs := []string{config.MinecraftDir}
	for _, sub := range contentDirs {
		dirs = append(dirs, filepath.Join(config.MinecraftDir, sub))
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			logger.Log.Infow("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to check directory %s: %w", dir, err)
		}
	}

	config.DatabasePath = filepath.Join(config.MinecraftDir, "mods.db")
	return nil
}

// Loader returns the configured mod loader as its API code.
func (c Config) Loader() (curseforge.ModLoaderType, error) {
	return curseforge.ParseModLoaderType(c.MinecraftLoader)
}

// Channel returns the least stable release type updates may install.
func (c Config) Channel() (curseforge.FileReleaseType, error) {
	return curseforge.ParseReleaseType(c.ReleaseChannel)
}

// ClientConfig returns the API client settings derived from c.
func (c Config) ClientConfig() *curseforge.Config {
	return &curseforge.Config{
		UserAgent: c.UserAgent,
		Logger:    logger.Log,
	}
}
