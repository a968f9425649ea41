package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback <modId|slug>",
	Short: "Rollback a mod to its previous version",
	Long: `Rollback a mod to its previous version.
Example: curseforge-mod-updater rollback jei

This will remove the current file of the mod and restore the most
recently archived one. Archives exist only with KEEP_OLD_VERSIONS=true.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		loadConfigAndDB(configDir)

		restored, err := rollbackMod(db.DB, args[0])
		if err != nil {
			logger.Log.Fatalw("Rollback failed", zap.String("mod", args[0]), zap.Error(err))
		}
		fmt.Printf("Successfully rolled back %s to %s\n", restored.Name, restored.FileName)
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

// rollbackMod restores the newest archived version of ref and returns the
// updated record.
func rollbackMod(conn *gorm.DB, ref string) (*db.Mod, error) {
	currentMod, err := findTracked(conn, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	if currentMod == nil {
		return nil, fmt.Errorf("mod %s is not tracked", ref)
	}

	log := logger.Log.With(zap.String("mod", currentMod.Name))
	log.Infow("Attempting rollback")

	history, err := db.History(conn, currentMod.ModID)
	if err != nil {
		return nil, fmt.Errorf("failed to query version history: %w", err)
	}
	var previousVersion *db.ModVersion
	for i := range history {
		if history[i].ArchivePath != "" {
			previousVersion = &history[i]
			break
		}
	}
	if previousVersion == nil {
		return nil, fmt.Errorf("no archived versions found for mod %s", currentMod.Name)
	}
	if _, err := os.Stat(previousVersion.ArchivePath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("archive file not found: %s", previousVersion.ArchivePath)
	}

	modsDir := filepath.Join(filepath.Dir(previousVersion.ArchivePath), "..")
	if currentMod.InstallPath != "" {
		modsDir = filepath.Dir(currentMod.InstallPath)
		log.Infow("Removing current version", zap.String("file", currentMod.InstallPath))
		if err := os.Remove(currentMod.InstallPath); err != nil && !os.IsNotExist(err) {
			log.Warnw("Failed to remove current version", zap.String("file", currentMod.InstallPath), zap.Error(err))
		}
	}

	targetPath := filepath.Join(modsDir, previousVersion.FileName)
	log.Infow("Restoring previous version",
		zap.String("file", previousVersion.FileName),
		zap.Int("file_id", previousVersion.FileID),
	)
	if err := os.Rename(previousVersion.ArchivePath, targetPath); err != nil {
		return nil, fmt.Errorf("failed to restore archive: %w", err)
	}

	currentMod.FileID = previousVersion.FileID
	currentMod.FileName = previousVersion.FileName
	currentMod.DisplayName = previousVersion.DisplayName
	currentMod.ReleaseType = previousVersion.ReleaseType
	currentMod.InstallPath = targetPath
	currentMod.Fingerprint = 0
	if fp, err := curseforge.FingerprintFile(targetPath); err == nil {
		currentMod.Fingerprint = fp
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(currentMod).Error; err != nil {
			return err
		}
		return tx.Delete(previousVersion).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update database record: %w", err)
	}

	log.Infow("Rollback successful", zap.Int("restored_file_id", currentMod.FileID), zap.String("restored_file", currentMod.FileName))
	return currentMod, nil
}
