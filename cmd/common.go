package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CurseForge class IDs of the Minecraft content types that get installed.
const (
	classMods          = 6
	classResourcePacks = 12
	classShaders       = 6552
)

// dbMu serialises writes from concurrent downloads; SQLite allows one writer.
var dbMu sync.Mutex

// loadConfigAndDB handles the initialization shared by every command.
func loadConfigAndDB(path string) config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	if err := db.InitDatabase(cfg.DatabasePath); err != nil {
		logger.Log.Fatalw("Failed to initialize database", zap.Error(err))
	}
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))
	return cfg
}

// bootstrap additionally builds the API client and imports mods already on
// disk, for commands that install files.
func bootstrap(path string) (config.Config, *curseforge.Client) {
	cfg := loadConfigAndDB(path)

	if cfg.MinecraftVersion == "" {
		logger.Log.Fatal("Error: MINECRAFT_VERSION must be set.")
	}

	client := mustClient(cfg)
	if _, err := importInstalledMods(context.Background(), client, db.DB, cfg.MinecraftDir); err != nil {
		logger.Log.Warnw("Failed to import installed mods", zap.Error(err))
	}
	return cfg, client
}

func newClient(cfg config.Config) (*curseforge.Client, error) {
	return curseforge.NewClient(cfg.CurseForgeAPIKey, cfg.ClientConfig())
}

func mustClient(cfg config.Config) *curseforge.Client {
	client, err := newClient(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to create CurseForge client", zap.Error(err))
	}
	return client
}

// getTargetSubDir returns the install directory for a CurseForge class.
func getTargetSubDir(classID int) string {
	switch classID {
	case classResourcePacks:
		return "resourcepacks"
	case classShaders:
		return "shaderpacks"
	default:
		return "mods"
	}
}

func classIDOf(mod curseforge.Mod) int {
	if mod.ClassID == nil {
		return classMods
	}
	return int(*mod.ClassID)
}

// loaderFor returns the loader files of mod must target. Resource packs and
// shaders are loader independent.
func loaderFor(mod curseforge.Mod, cfg config.Config) curseforge.ModLoaderType {
	if classIDOf(mod) != classMods {
		return curseforge.ModLoaderAny
	}
	loader, err := cfg.Loader()
	if err != nil {
		return curseforge.ModLoaderAny
	}
	return loader
}

// resolveModRef turns a numeric mod ID or a slug into a mod ID. Slugs are
// looked up through search, which matches them exactly.
func resolveModRef(ctx context.Context, client *curseforge.Client, gameID int, ref string) (curseforge.ID, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return curseforge.ID(id), nil
	}

	q := curseforge.NewSearchQuery()
	q.GameID = curseforge.ID(gameID)
	q.Slug = curseforge.Ptr(ref)
	mods, err := client.SearchMods(ctx, q)
	if err != nil {
		return 0, err
	}
	for _, mod := range mods {
		if mod.Slug == ref {
			return mod.ID, nil
		}
	}
	return 0, fmt.Errorf("no project with slug %q", ref)
}

// findTracked looks a tracked mod up by numeric ID or slug.
func findTracked(conn *gorm.DB, ref string) (*db.Mod, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return db.FindMod(conn, id)
	}
	var mod db.Mod
	err := conn.Where("slug = ?", ref).First(&mod).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// archiveAndCleanupOld moves the installed file of existingMod into the
// versions archive, or deletes it, and records it in the history.
func archiveAndCleanupOld(conn *gorm.DB, existingMod db.Mod, projectBaseDir string, cfg *config.Config, log *zap.SugaredLogger) {
	oldFilePath := existingMod.InstallPath
	if oldFilePath == "" {
		oldFilePath = filepath.Join(projectBaseDir, existingMod.FileName)
	}
	archivePath := ""

	if cfg.KeepOldVersions {
		versionsDir := filepath.Join(projectBaseDir, "versions")
		_ = os.MkdirAll(versionsDir, 0755)

		newPathInVersions := filepath.Join(versionsDir, fmt.Sprintf("%d-%s", existingMod.FileID, existingMod.FileName))
		if err := os.Rename(oldFilePath, newPathInVersions); err == nil {
			archivePath = newPathInVersions
		} else if !os.IsNotExist(err) {
			log.Warnw("Failed to archive old mod version", zap.String("file", existingMod.FileName), zap.Error(err))
		}
	} else {
		if err := os.Remove(oldFilePath); err != nil && !os.IsNotExist(err) {
			log.Warnw("Failed to remove old mod version", zap.String("file", existingMod.FileName), zap.Error(err))
		}
	}

	dbMu.Lock()
	defer dbMu.Unlock()
	if err := conn.Create(&db.ModVersion{
		ModID:       existingMod.ModID,
		FileID:      existingMod.FileID,
		DisplayName: existingMod.DisplayName,
		FileName:    existingMod.FileName,
		ReleaseType: existingMod.ReleaseType,
		ArchivePath: archivePath,
	}).Error; err != nil {
		log.Warnw("Failed to save mod version history to database", zap.Error(err))
	}
}

// installFile downloads file for mod, retires the previously installed file
// and stores the result in tracked, which is created when it has no ID yet.
func installFile(ctx context.Context, client *curseforge.Client, conn *gorm.DB, cfg *config.Config,
	log *zap.SugaredLogger, tracked *db.Mod, mod curseforge.Mod, file curseforge.File) error {
	projectBaseDir := filepath.Join(cfg.MinecraftDir, getTargetSubDir(classIDOf(mod)))
	downloadPath := filepath.Join(projectBaseDir, file.FileName)

	// Keep the old file out of the way while the new one lands on the same name.
	previous := *tracked
	if previous.FileID != 0 && previous.FileName == file.FileName && previous.FileID != int(file.ID) {
		previous.InstallPath = downloadPath + ".old"
		if err := os.Rename(downloadPath, previous.InstallPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to move aside %s: %w", downloadPath, err)
		}
	}

	if err := client.DownloadFile(ctx, log, downloadPath, file); err != nil {
		if previous.InstallPath == downloadPath+".old" {
			_ = os.Rename(previous.InstallPath, downloadPath)
		}
		return err
	}

	if previous.FileID != 0 && previous.FileID != int(file.ID) {
		archiveAndCleanupOld(conn, previous, projectBaseDir, cfg, log)
	}

	tracked.ModID = int(mod.ID)
	tracked.Slug = mod.Slug
	tracked.Name = mod.Name
	tracked.ClassID = classIDOf(mod)
	tracked.Updated = mod.DateModified
	tracked.FileID = int(file.ID)
	tracked.FileName = file.FileName
	tracked.DisplayName = file.DisplayName
	tracked.ReleaseType = int(file.ReleaseType)
	tracked.Fingerprint = file.FileFingerprint
	tracked.InstallPath = downloadPath

	dbMu.Lock()
	defer dbMu.Unlock()
	if tracked.ID == 0 {
		return conn.Create(tracked).Error
	}
	return conn.Save(tracked).Error
}
