package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	exportOutput string
	exportFormat string
)

// manifest is the document written by export.
type manifest struct {
	Minecraft manifestTarget `toml:"minecraft" yaml:"minecraft"`
	Generated time.Time      `toml:"generated" yaml:"generated"`
	Mods      []manifestMod  `toml:"mods" yaml:"mods"`
}

type manifestTarget struct {
	Version string `toml:"version" yaml:"version"`
	Loader  string `toml:"loader" yaml:"loader"`
}

type manifestMod struct {
	Name        string `toml:"name" yaml:"name"`
	Slug        string `toml:"slug" yaml:"slug"`
	ModID       int    `toml:"mod_id" yaml:"mod_id"`
	FileID      int    `toml:"file_id" yaml:"file_id"`
	FileName    string `toml:"file_name" yaml:"file_name"`
	Channel     string `toml:"channel" yaml:"channel"`
	Directory   string `toml:"directory" yaml:"directory"`
	Fingerprint uint32 `toml:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a manifest of installed mods",
	Long: `Writes the tracked projects that have a file installed, with the exact file
IDs, so the same set can be reproduced elsewhere. The manifest is TOML by
default; --format yaml writes YAML instead.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := loadConfigAndDB(configDir)

		mods, err := db.TrackedMods(db.DB)
		if err != nil {
			logger.Log.Fatalw("Failed to load tracked mods", zap.Error(err))
		}

		out := io.Writer(os.Stdout)
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				logger.Log.Fatalw("Failed to create manifest", zap.String("path", exportOutput), zap.Error(err))
			}
			defer f.Close()
			out = f
		}
		if err := writeManifest(out, exportFormat, cfg, mods, time.Now()); err != nil {
			logger.Log.Fatalw("Failed to write manifest", zap.Error(err))
		}
		if out != os.Stdout {
			fmt.Printf("Wrote %s\n", exportOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "manifest path, - for stdout")
	exportCmd.Flags().StringVar(&exportFormat, "format", "toml", "manifest format: toml or yaml")
}

func writeManifest(w io.Writer, format string, cfg config.Config, mods []db.Mod, now time.Time) error {
	doc := manifest{
		Minecraft: manifestTarget{Version: cfg.MinecraftVersion, Loader: cfg.MinecraftLoader},
		Generated: now.UTC().Truncate(time.Second),
		Mods:      []manifestMod{},
	}
	for _, mod := range mods {
		if mod.FileID == 0 {
			continue
		}
		doc.Mods = append(doc.Mods, manifestMod{
			Name:        mod.Name,
			Slug:        mod.Slug,
			ModID:       mod.ModID,
			FileID:      mod.FileID,
			FileName:    mod.FileName,
			Channel:     curseforge.FileReleaseType(mod.ReleaseType).String(),
			Directory:   getTargetSubDir(mod.ClassID),
			Fingerprint: mod.Fingerprint,
		})
	}

	switch format {
	case "", "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown manifest format %q", format)
	}
}
