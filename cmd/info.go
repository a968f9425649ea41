package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/logger"
	"curseforge-mod-updater/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	showDescription bool
	filesAll        bool
)

// lineBreaks are the elements that start a new line of plain text.
var lineBreaks = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Blockquote: true, atom.Pre: true, atom.Hr: true,
}

// plainText reduces the HTML descriptions and changelogs the API serves to
// their text. Script and style bodies are dropped.
func plainText(s string) string {
	var b strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.WriteString(tok.Data)
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if lineBreaks[tok.DataAtom] {
				b.WriteByte('\n')
			}
		}
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// apiCommand loads configuration and a client for read-only commands.
func apiCommand() (config.Config, *curseforge.Client) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}
	return cfg, mustClient(cfg)
}

func parseID(arg string) curseforge.ID {
	id, err := strconv.Atoi(arg)
	if err != nil {
		logger.Log.Fatalw("Expected a numeric ID", zap.String("arg", arg))
	}
	return curseforge.ID(id)
}

var infoCmd = &cobra.Command{
	Use:   "info <modId|slug>",
	Short: "Show details of a CurseForge project",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		cfg, client := apiCommand()
		ctx := context.Background()

		id, err := resolveModRef(ctx, client, cfg.GameID, args[0])
		if err != nil {
			logger.Log.Fatalw("Failed to resolve project", zap.Error(err))
		}
		mod, err := client.GetMod(ctx, id)
		if err != nil {
			logger.Log.Fatalw("Failed to get mod", zap.Error(err))
		}
		fmt.Print(formatModInfo(*mod))

		if showDescription {
			description, err := client.GetModDescription(ctx, id)
			if err != nil {
				logger.Log.Fatalw("Failed to get description", zap.Error(err))
			}
			fmt.Printf("\n%s\n", plainText(description))
		}
	},
}

func formatModInfo(mod curseforge.Mod) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n", ui.Colorize(mod.Name, curseforgeOrange), mod.ID)
	fmt.Fprintf(&b, "  slug:       %s\n", mod.Slug)
	fmt.Fprintf(&b, "  summary:    %s\n", mod.Summary)
	fmt.Fprintf(&b, "  downloads:  %d\n", mod.DownloadCount)
	fmt.Fprintf(&b, "  updated:    %s\n", mod.DateModified.Format("2006-01-02"))
	fmt.Fprintf(&b, "  website:    %s\n", mod.Links.WebsiteURL)
	if mod.Links.SourceURL != nil {
		fmt.Fprintf(&b, "  source:     %s\n", mod.Links.SourceURL)
	}
	authors := make([]string, len(mod.Authors))
	for i, a := range mod.Authors {
		authors[i] = a.Name
	}
	fmt.Fprintf(&b, "  authors:    %s\n", strings.Join(authors, ", "))
	if len(mod.LatestFilesIndexes) > 0 {
		fmt.Fprintln(&b, "  latest files:")
		for _, idx := range mod.LatestFilesIndexes {
			loader := "-"
			if idx.ModLoader != nil {
				loader = idx.ModLoader.String()
			}
			fmt.Fprintf(&b, "    %-10s %-10s %-8s %d %s\n", idx.GameVersion, loader, ui.ReleaseTag(idx.ReleaseType), idx.FileID, idx.Filename)
		}
	}
	return b.String()
}

var filesCmd = &cobra.Command{
	Use:   "files <modId>",
	Short: "List files of a project compatible with the configured game version",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		cfg, client := apiCommand()

		files, err := client.GetModFiles(context.Background(), parseID(args[0]))
		if err != nil {
			logger.Log.Fatalw("Failed to get files", zap.Error(err))
		}
		for _, f := range filterFiles(files, cfg, filesAll) {
			fmt.Printf("%-10d %-8s %s  %s\n", f.ID, ui.ReleaseTag(f.ReleaseType), f.FileDate.Format("2006-01-02"), f.DisplayName)
		}
	},
}

// filterFiles keeps the files tagged with the configured game version.
func filterFiles(files []curseforge.File, cfg config.Config, all bool) []curseforge.File {
	if all || cfg.MinecraftVersion == "" {
		return files
	}
	var out []curseforge.File
	for _, f := range files {
		if f.SupportsGameVersion(cfg.MinecraftVersion) {
			out = append(out, f)
		}
	}
	return out
}

var changelogCmd = &cobra.Command{
	Use:   "changelog <modId> <fileId>",
	Short: "Print the changelog of a file",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		_, client := apiCommand()

		changelog, err := client.GetModFileChangelog(context.Background(), parseID(args[0]), parseID(args[1]))
		if err != nil {
			logger.Log.Fatalw("Failed to get changelog", zap.Error(err))
		}
		fmt.Println(plainText(changelog))
	},
}

var downloadURLCmd = &cobra.Command{
	Use:   "download-url <modId> <fileId>",
	Short: "Print the download URL of a file",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		_, client := apiCommand()

		u, err := client.FileDownloadURL(context.Background(), parseID(args[0]), parseID(args[1]))
		if err != nil {
			logger.Log.Fatalw("Failed to get download url", zap.Error(err))
		}
		fmt.Println(u)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(downloadURLCmd)

	infoCmd.Flags().BoolVarP(&showDescription, "description", "d", false, "also print the project description")
	filesCmd.Flags().BoolVarP(&filesAll, "all", "a", false, "list files for every game version")
}
