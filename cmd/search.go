package cmd

import (
	"context"
	"fmt"
	"strings"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/logger"
	"curseforge-mod-updater/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const curseforgeOrange = 0xf16436

var sortFields = map[string]curseforge.ModsSearchSortField{
	"featured":    curseforge.SortFieldFeatured,
	"popularity":  curseforge.SortFieldPopularity,
	"updated":     curseforge.SortFieldLastUpdated,
	"name":        curseforge.SortFieldName,
	"author":      curseforge.SortFieldAuthor,
	"downloads":   curseforge.SortFieldTotalDownloads,
	"category":    curseforge.SortFieldCategory,
	"gameversion": curseforge.SortFieldGameVersion,
}

type searchOptions struct {
	classID    int
	categoryID int
	sort       string
	order      string
	index      int
	pageSize   int
	anyVersion bool
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search CurseForge for projects",
	Long: `Searches projects matching the text. By default results are limited to the
configured game version and, for mods, the configured loader.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}
		client := mustClient(cfg)

		q, err := buildSearchQuery(cfg, strings.Join(args, " "), searchOpts)
		if err != nil {
			logger.Log.Fatalw("Invalid search options", zap.Error(err))
		}
		mods, page, err := client.SearchModsPage(context.Background(), q)
		if err != nil {
			logger.Log.Fatalw("Search failed", zap.Error(err))
		}

		for _, mod := range mods {
			fmt.Printf("%-10d %-40s %-30s %d downloads\n",
				mod.ID, ui.Colorize(truncate(mod.Name, 40), curseforgeOrange), mod.Slug, mod.DownloadCount)
		}
		if page != nil {
			fmt.Printf("\nShowing %d-%d of %d\n", page.Index+1, page.Index+page.ResultCount, page.TotalCount)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchOpts.classID, "class", 0, "class ID (6 mods, 12 resource packs, 6552 shaders)")
	searchCmd.Flags().IntVar(&searchOpts.categoryID, "category", 0, "category ID")
	searchCmd.Flags().StringVar(&searchOpts.sort, "sort", "popularity", "sort field: featured, popularity, updated, name, author, downloads, category, gameversion")
	searchCmd.Flags().StringVar(&searchOpts.order, "order", "desc", "sort order: asc or desc")
	searchCmd.Flags().IntVar(&searchOpts.index, "index", 0, "index of the first result")
	searchCmd.Flags().IntVar(&searchOpts.pageSize, "page-size", 20, "number of results")
	searchCmd.Flags().BoolVar(&searchOpts.anyVersion, "any-version", false, "do not filter by game version and loader")
}

// buildSearchQuery maps command line options onto a search query. Zero
// valued options are left out of the request.
func buildSearchQuery(cfg config.Config, text string, opts searchOptions) (curseforge.SearchQuery, error) {
	q := curseforge.NewSearchQuery()
	if cfg.GameID != 0 {
		q.GameID = curseforge.ID(cfg.GameID)
	}
	if text != "" {
		q.SearchFilter = curseforge.Ptr(text)
	}
	if opts.classID != 0 {
		q.ClassID = curseforge.Ptr(curseforge.ID(opts.classID))
	}
	if opts.categoryID != 0 {
		q.CategoryID = curseforge.Ptr(curseforge.ID(opts.categoryID))
	}

	if opts.sort != "" {
		field, ok := sortFields[strings.ToLower(opts.sort)]
		if !ok {
			return q, fmt.Errorf("unknown sort field %q", opts.sort)
		}
		q.SortField = curseforge.Ptr(field)
	}
	switch curseforge.SortOrder(opts.order) {
	case "":
	case curseforge.SortAsc, curseforge.SortDesc:
		q.SortOrder = curseforge.Ptr(curseforge.SortOrder(opts.order))
	default:
		return q, fmt.Errorf("unknown sort order %q", opts.order)
	}

	q.Index = opts.index
	if opts.pageSize > 0 {
		q.PageSize = curseforge.Ptr(opts.pageSize)
	}

	if !opts.anyVersion && cfg.MinecraftVersion != "" {
		q.GameVersion = curseforge.Ptr(cfg.MinecraftVersion)
		// The loader filter only applies together with a game version.
		if opts.classID == 0 || opts.classID == classMods {
			if loader, err := cfg.Loader(); err == nil && loader != curseforge.ModLoaderAny {
				q.ModLoaderType = curseforge.Ptr(loader)
			}
		}
	}
	return q, nil
}
