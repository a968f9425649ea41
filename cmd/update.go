package cmd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"
	"curseforge-mod-updater/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Checks for and downloads updates for tracked mods",
	Long: `Checks CurseForge for newer compatible files of tracked mods
and downloads them into the mods, resourcepacks or shaderpacks directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Log.Info("Running update command...")

		forceUpdate, _ := cmd.Flags().GetBool("force")
		useTUI, _ := cmd.Flags().GetBool("tui")

		if useTUI {
			p := tea.NewProgram(initialUpdateModel(forceUpdate))
			if _, err := p.Run(); err != nil {
				logger.Log.Fatalw("Failed to run update UI", zap.Error(err))
			}
			return
		}
		summary := runUpdate(forceUpdate, nil)
		fmt.Println(summary)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolP("force", "f", false, "Force redownload of all mods regardless of version")
	updateCmd.Flags().Bool("tui", false, "Show live progress in a terminal UI")
}

// plannedUpdate is a tracked mod paired with the file it should end up on.
type plannedUpdate struct {
	tracked db.Mod
	mod     curseforge.Mod
	fileID  curseforge.ID
}

type updateSummary struct {
	downloaded int64
	updated    int64
	upToDate   int64
	failed     int64
}

func (s updateSummary) String() string {
	return fmt.Sprintf("Finished. Downloaded %d new mods, updated %d existing mods, %d up to date, %d failed.",
		s.downloaded, s.updated, s.upToDate, s.failed)
}

// updater runs one update pass. progress may be nil.
type updater struct {
	client   *curseforge.Client
	conn     *gorm.DB
	cfg      config.Config
	log      *zap.SugaredLogger
	progress chan<- UpdateProgressMsg
}

func (u *updater) report(msg UpdateProgressMsg) {
	if u.progress != nil {
		u.progress <- msg
	}
}

// planUpdates picks the newest compatible file for each tracked mod. mods
// holds the remote records of tracked in any order; mods CurseForge did not
// return, and mods without a compatible file, are skipped.
func planUpdates(tracked []db.Mod, mods []curseforge.Mod, cfg config.Config, force bool) (plans []plannedUpdate, upToDate []db.Mod, skipped []db.Mod) {
	byID := make(map[curseforge.ID]curseforge.Mod, len(mods))
	for _, mod := range mods {
		byID[mod.ID] = mod
	}
	channel, err := cfg.Channel()
	if err != nil {
		channel = curseforge.ReleaseTypeRelease
	}

	for _, t := range tracked {
		mod, ok := byID[curseforge.ID(t.ModID)]
		if !ok {
			skipped = append(skipped, t)
			continue
		}

		var fileID curseforge.ID
		loader := loaderFor(mod, cfg)
		if idx := curseforge.LatestFileIndex(mod, cfg.MinecraftVersion, loader, channel); idx != nil {
			fileID = idx.FileID
		} else if f := curseforge.LatestFile(mod.LatestFiles, cfg.MinecraftVersion, loader, channel); f != nil {
			fileID = f.ID
		} else {
			skipped = append(skipped, t)
			continue
		}

		if !force && t.FileID == int(fileID) {
			upToDate = append(upToDate, t)
			continue
		}
		plans = append(plans, plannedUpdate{tracked: t, mod: mod, fileID: fileID})
	}
	return plans, upToDate, skipped
}

// run checks every tracked mod with two batch requests and downloads the
// chosen files concurrently.
func (u *updater) run(ctx context.Context, force bool) (updateSummary, error) {
	var summary updateSummary

	tracked, err := db.TrackedMods(u.conn)
	if err != nil {
		return summary, fmt.Errorf("failed to load tracked mods: %w", err)
	}
	if len(tracked) == 0 {
		u.report(UpdateProgressMsg{Kind: progressStatus, Message: "No tracked mods found."})
		return summary, nil
	}

	u.log.Infof("Found %d tracked mods. Checking for updates for Minecraft %s (%s)...",
		len(tracked), u.cfg.MinecraftVersion, u.cfg.MinecraftLoader)
	u.report(UpdateProgressMsg{Kind: progressStatus, Message: fmt.Sprintf("Checking %d tracked mods...", len(tracked))})

	modIDs := make([]curseforge.ID, len(tracked))
	for i, t := range tracked {
		modIDs[i] = curseforge.ID(t.ModID)
	}
	mods, err := u.client.GetMods(ctx, modIDs)
	if err != nil {
		return summary, err
	}
	for _, mod := range mods {
		u.report(UpdateProgressMsg{Kind: progressCheck, ProjectName: mod.Name, ModID: int(mod.ID)})
	}

	plans, upToDate, skipped := planUpdates(tracked, mods, u.cfg, force)
	summary.upToDate = int64(len(upToDate))
	for _, t := range upToDate {
		u.log.Infow("Mod is already up to date", zap.String("mod", t.Name), zap.String("file", t.FileName))
	}
	for _, t := range skipped {
		u.log.Warnw("No compatible file found", zap.String("mod", t.Name), zap.Int("mod_id", t.ModID))
		u.report(UpdateProgressMsg{Kind: progressError, ProjectName: t.Name, Message: "no compatible file"})
	}
	if len(plans) == 0 {
		return summary, nil
	}

	fileIDs := make([]curseforge.ID, len(plans))
	for i, p := range plans {
		fileIDs[i] = p.fileID
	}
	files, err := u.client.GetFiles(ctx, fileIDs)
	if err != nil {
		return summary, err
	}
	filesByID := make(map[curseforge.ID]curseforge.File, len(files))
	for _, f := range files {
		filesByID[f.ID] = f
	}

	u.report(UpdateProgressMsg{Kind: progressPlan, Total: len(plans)})

	var downloadedCount, updatedCount, failedCount atomic.Int64
	var wg sync.WaitGroup

	for _, plan := range plans {
		file, ok := filesByID[plan.fileID]
		if !ok {
			u.log.Warnw("File missing from batch response", zap.Int("file_id", int(plan.fileID)))
			u.report(UpdateProgressMsg{Kind: progressError, ProjectName: plan.mod.Name, Message: "file not found"})
			failedCount.Add(1)
			continue
		}

		wg.Add(1)
		go func(p plannedUpdate, f curseforge.File) {
			defer wg.Done()

			log := u.log.With(zap.Int("mod_id", int(p.mod.ID)), zap.String("mod", p.mod.Name))
			isNew := p.tracked.FileID == 0
			u.report(UpdateProgressMsg{Kind: progressDownloadStart, ProjectName: p.mod.Name, Version: f.DisplayName})
			log.Infow("Downloading", zap.String("file", f.FileName), zap.String("channel", ui.ReleaseTag(f.ReleaseType)))

			record := p.tracked
			if err := installFile(ctx, u.client, u.conn, &u.cfg, log, &record, p.mod, f); err != nil {
				log.Errorw("Failed to install file", zap.String("file", f.FileName), zap.Error(err))
				u.report(UpdateProgressMsg{Kind: progressError, ProjectName: p.mod.Name, Message: err.Error()})
				failedCount.Add(1)
				return
			}

			u.report(UpdateProgressMsg{Kind: progressDownloadSuccess, ProjectName: p.mod.Name, Version: f.DisplayName})
			if isNew {
				downloadedCount.Add(1)
			} else {
				updatedCount.Add(1)
			}
		}(plan, file)
	}
	wg.Wait()

	summary.downloaded = downloadedCount.Load()
	summary.updated = updatedCount.Load()
	summary.failed = failedCount.Load()
	return summary, nil
}

// runUpdate performs a full update with the configuration in configDir.
// When progress is non-nil it receives events and a final summary.
func runUpdate(forceUpdate bool, progress chan<- UpdateProgressMsg) string {
	cfg, client := bootstrap(configDir)

	u := &updater{client: client, conn: db.DB, cfg: cfg, log: logger.Log, progress: progress}
	summary, err := u.run(context.Background(), forceUpdate)
	if err != nil {
		logger.Log.Errorw("Update failed", zap.Error(err))
		u.report(UpdateProgressMsg{Kind: progressError, ProjectName: "update", Message: err.Error()})
		return fmt.Sprintf("Update failed: %v", err)
	}

	logger.Log.Info(summary.String())
	u.report(UpdateProgressMsg{Kind: progressSummary, Message: summary.String()})
	return summary.String()
}
