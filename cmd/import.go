package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Track mods already present in the Minecraft directory",
	Long: `Fingerprints every .jar and .zip in the mods, shaderpacks and
resourcepacks directories and asks CurseForge which files they are.
Recognised files are added to the database as tracked mods.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := loadConfigAndDB(configDir)
		client := mustClient(cfg)

		count, err := importInstalledMods(context.Background(), client, db.DB, cfg.MinecraftDir)
		if err != nil {
			logger.Log.Fatalw("Import failed", zap.Error(err))
		}
		fmt.Printf("Imported %d mods\n", count)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// collectFingerprints fingerprints the untracked content files below
// minecraftDir. Archived versions are skipped.
func collectFingerprints(conn *gorm.DB, minecraftDir string) (map[uint32]string, error) {
	found := make(map[uint32]string)

	var lookupErr error
	for _, sub := range []string{"mods", "shaderpacks", "resourcepacks"} {
		dir := filepath.Join(minecraftDir, sub)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if info.Name() == "versions" {
					return filepath.SkipDir
				}
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".jar" && ext != ".zip" {
				return nil
			}

			var count int64
			if err := conn.Model(&db.Mod{}).Where("install_path = ? OR file_name = ?", path, info.Name()).Count(&count).Error; err != nil {
				lookupErr = fmt.Errorf("failed to check whether %s is tracked: %w", path, err)
				return lookupErr
			}
			if count > 0 {
				return nil
			}

			fp, err := curseforge.FingerprintFile(path)
			if err != nil {
				logger.Log.Warnw("Failed to fingerprint file", zap.String("file", path), zap.Error(err))
				return nil
			}
			found[fp] = path
			return nil
		})
		if lookupErr != nil {
			return nil, lookupErr
		}
		if err != nil {
			logger.Log.Errorw("Error scanning directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	return found, nil
}

// importInstalledMods adds every recognised untracked file to the database
// and returns how many were added.
func importInstalledMods(ctx context.Context, client *curseforge.Client, conn *gorm.DB, minecraftDir string) (int, error) {
	logger.Log.Info("Scanning for existing mods...")

	found, err := collectFingerprints(conn, minecraftDir)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return 0, nil
	}

	fingerprints := make([]uint32, 0, len(found))
	for fp := range found {
		fingerprints = append(fingerprints, fp)
	}
	matches, err := client.GetFingerprintMatches(ctx, fingerprints)
	if err != nil {
		return 0, err
	}
	if len(matches.ExactMatches) == 0 {
		return 0, nil
	}

	modIDs := make([]curseforge.ID, 0, len(matches.ExactMatches))
	for _, match := range matches.ExactMatches {
		modIDs = append(modIDs, match.ID)
	}
	mods, err := client.GetMods(ctx, modIDs)
	if err != nil {
		return 0, err
	}
	byID := make(map[curseforge.ID]curseforge.Mod, len(mods))
	for _, mod := range mods {
		byID[mod.ID] = mod
	}

	imported := 0
	for _, match := range matches.ExactMatches {
		path, ok := found[match.File.FileFingerprint]
		if !ok {
			continue
		}
		mod, ok := byID[match.ID]
		if !ok {
			logger.Log.Warnw("Matched file belongs to an unknown mod", zap.Int("mod_id", int(match.ID)))
			continue
		}

		existing, err := db.FindMod(conn, int(mod.ID))
		if err != nil {
			return imported, err
		}
		record := db.Mod{}
		if existing != nil {
			record = *existing
		}
		record.ModID = int(mod.ID)
		record.Slug = mod.Slug
		record.Name = mod.Name
		record.ClassID = classIDOf(mod)
		record.Updated = mod.DateModified
		record.FileID = int(match.File.ID)
		record.FileName = filepath.Base(path)
		record.DisplayName = match.File.DisplayName
		record.ReleaseType = int(match.File.ReleaseType)
		record.Fingerprint = match.File.FileFingerprint
		record.InstallPath = path

		if err := conn.Save(&record).Error; err != nil {
			logger.Log.Errorw("Failed to save imported mod to DB", zap.String("slug", mod.Slug), zap.Error(err))
			continue
		}
		logger.Log.Infow("Imported existing mod", zap.String("name", mod.Name), zap.String("file", match.File.DisplayName))
		imported++
	}
	return imported, nil
}
