package cmd

import (
	"context"
	"fmt"
	"strconv"

	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"
	"curseforge-mod-updater/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var trackCmd = &cobra.Command{
	Use:   "track <modId|slug>...",
	Short: "Start tracking CurseForge projects",
	Long: `Adds projects to the database. Nothing is downloaded until the next update.
Example: curseforge-mod-updater track jei 306612`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		cfg := loadConfigAndDB(configDir)
		client := mustClient(cfg)
		ctx := context.Background()

		ids := make([]curseforge.ID, 0, len(args))
		for _, ref := range args {
			id, err := resolveModRef(ctx, client, cfg.GameID, ref)
			if err != nil {
				logger.Log.Errorw("Failed to resolve project", zap.String("ref", ref), zap.Error(err))
				fmt.Printf("Skipping %s: %v\n", ref, err)
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return
		}

		added, err := trackMods(ctx, client, db.DB, ids)
		if err != nil {
			logger.Log.Fatalw("Failed to track mods", zap.Error(err))
		}
		for _, mod := range added {
			fmt.Printf("Tracking %s (%d)\n", ui.Colorize(mod.Name, curseforgeOrange), mod.ModID)
		}
	},
}

var untrackCmd = &cobra.Command{
	Use:   "untrack <modId|slug>",
	Short: "Stop tracking a project",
	Long:  `Removes a project and its version history from the database. Installed files are kept.`,
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		loadConfigAndDB(configDir)

		mod, err := findTracked(db.DB, args[0])
		if err != nil {
			logger.Log.Fatalw("Failed to query database", zap.Error(err))
		}
		if mod == nil {
			fmt.Printf("%s is not tracked\n", args[0])
			return
		}
		if err := db.Untrack(db.DB, mod.ModID); err != nil {
			logger.Log.Fatalw("Failed to untrack mod", zap.Error(err))
		}
		fmt.Printf("Stopped tracking %s\n", mod.Name)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(untrackCmd)
}

// trackMods records the mods with ids that are not tracked yet, fetched in
// a single request, and returns the new records.
func trackMods(ctx context.Context, client *curseforge.Client, conn *gorm.DB, ids []curseforge.ID) ([]db.Mod, error) {
	mods, err := client.GetMods(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(mods) < len(ids) {
		logger.Log.Warnw("Some projects were not found", zap.Int("requested", len(ids)), zap.Int("found", len(mods)))
	}

	var added []db.Mod
	for _, mod := range mods {
		existing, err := db.FindMod(conn, int(mod.ID))
		if err != nil {
			return added, err
		}
		if existing != nil {
			logger.Log.Infow("Already tracked", zap.String("mod", mod.Name), zap.String("id", strconv.Itoa(int(mod.ID))))
			continue
		}

		record := db.Mod{
			ModID:   int(mod.ID),
			Slug:    mod.Slug,
			Name:    mod.Name,
			ClassID: classIDOf(mod),
			Updated: mod.DateModified,
		}
		if err := conn.Create(&record).Error; err != nil {
			return added, err
		}
		added = append(added, record)
	}
	return added, nil
}
