package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"
	"curseforge-mod-updater/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFilePathConstruction tests that archive paths are constructed correctly
func TestFilePathConstruction(t *testing.T) {
	minecraftDir := "/home/user/.minecraft"
	projectBaseDir := filepath.Join(minecraftDir, getTargetSubDir(classMods))
	fileID := 4587221
	fileName := "example-mod-1.0.jar"

	archivedPath := filepath.Join(projectBaseDir, "versions", fmt.Sprintf("%d-%s", fileID, fileName))

	expectedPath := filepath.Join(minecraftDir, "mods", "versions", "4587221-example-mod-1.0.jar")
	if archivedPath != expectedPath {
		t.Fatalf("Archive path mismatch. Expected: %s, Got: %s", expectedPath, archivedPath)
	}
}

func fileIndex(fileID int, gameVersion string, loader curseforge.ModLoaderType, release curseforge.FileReleaseType) curseforge.FileIndex {
	idx := curseforge.FileIndex{GameVersion: gameVersion, FileID: curseforge.ID(fileID), Filename: fmt.Sprintf("file-%d.jar", fileID), ReleaseType: release}
	if loader != curseforge.ModLoaderAny {
		idx.ModLoader = curseforge.Ptr(loader)
	}
	return idx
}

func TestPlanUpdates(t *testing.T) {
	shaders := curseforge.ID(classShaders)
	remote := []curseforge.Mod{
		{ID: 1, Name: "Outdated", LatestFilesIndexes: []curseforge.FileIndex{
			fileIndex(10, testGameVersion, curseforge.ModLoaderFabric, curseforge.ReleaseTypeRelease),
			fileIndex(11, testGameVersion, curseforge.ModLoaderFabric, curseforge.ReleaseTypeRelease),
			fileIndex(12, testGameVersion, curseforge.ModLoaderFabric, curseforge.ReleaseTypeBeta),
			fileIndex(13, testGameVersion, curseforge.ModLoaderForge, curseforge.ReleaseTypeRelease),
			fileIndex(14, "1.19.2", curseforge.ModLoaderFabric, curseforge.ReleaseTypeRelease),
		}},
		{ID: 2, Name: "Current", LatestFilesIndexes: []curseforge.FileIndex{
			fileIndex(20, testGameVersion, curseforge.ModLoaderFabric, curseforge.ReleaseTypeRelease),
		}},
		{ID: 3, Name: "Shader", ClassID: &shaders, LatestFilesIndexes: []curseforge.FileIndex{
			fileIndex(30, testGameVersion, curseforge.ModLoaderAny, curseforge.ReleaseTypeRelease),
		}},
		{ID: 4, Name: "Forge only", LatestFilesIndexes: []curseforge.FileIndex{
			fileIndex(40, testGameVersion, curseforge.ModLoaderForge, curseforge.ReleaseTypeRelease),
		}},
		{ID: 5, Name: "No indexes", LatestFiles: []curseforge.File{
			{ID: 50, IsAvailable: true, ReleaseType: curseforge.ReleaseTypeRelease, GameVersions: []string{testGameVersion, "Fabric"}},
		}},
	}
	tracked := []db.Mod{
		{ModID: 1, Name: "Outdated", FileID: 10},
		{ModID: 2, Name: "Current", FileID: 20},
		{ModID: 3, Name: "Shader"},
		{ModID: 4, Name: "Forge only", FileID: 1},
		{ModID: 5, Name: "No indexes"},
		{ModID: 6, Name: "Deleted upstream", FileID: 60},
	}

	tests := []struct {
		name     string
		force    bool
		channel  string
		planned  map[int]curseforge.ID
		upToDate []int
		skipped  []int
	}{
		{
			name:     "release channel",
			channel:  "release",
			planned:  map[int]curseforge.ID{1: 11, 3: 30, 5: 50},
			upToDate: []int{2},
			skipped:  []int{4, 6},
		},
		{
			name:     "beta channel",
			channel:  "beta",
			planned:  map[int]curseforge.ID{1: 12, 3: 30, 5: 50},
			upToDate: []int{2},
			skipped:  []int{4, 6},
		},
		{
			name:    "force",
			force:   true,
			channel: "release",
			planned: map[int]curseforge.ID{1: 11, 2: 20, 3: 30, 5: 50},
			skipped: []int{4, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.ReleaseChannel = tt.channel

			plans, upToDate, skipped := planUpdates(tracked, remote, cfg, tt.force)

			got := map[int]curseforge.ID{}
			for _, p := range plans {
				assert.Equal(t, curseforge.ID(p.tracked.ModID), p.mod.ID)
				got[p.tracked.ModID] = p.fileID
			}
			assert.Equal(t, tt.planned, got)
			assert.Equal(t, tt.upToDate, modIDs(upToDate))
			assert.Equal(t, tt.skipped, modIDs(skipped))
		})
	}
}

func modIDs(mods []db.Mod) []int {
	var ids []int
	for _, m := range mods {
		ids = append(ids, m.ModID)
	}
	return ids
}

func TestUpdaterRun(t *testing.T) {
	api := newFakeAPI(t)
	api.addMod(238222, "Just Enough Items", "jei", classMods)
	api.addMod(394468, "Sodium", "sodium", classMods)
	api.addMod(6552001, "Complementary", "complementary", classShaders)
	api.addFile(238222, 100, "jei-1.0.jar", "jei one", testGameVersion, curseforge.ModLoaderFabric)
	api.addFile(238222, 101, "jei-1.1.jar", "jei two", testGameVersion, curseforge.ModLoaderFabric)
	api.addFile(394468, 200, "sodium.jar", "sodium", testGameVersion, curseforge.ModLoaderFabric)
	api.addFile(6552001, 300, "complementary.zip", "shader", testGameVersion, curseforge.ModLoaderAny)

	conn := newTestDB(t)
	cfg := testConfig(t)
	oldJEI := filepath.Join(cfg.MinecraftDir, "mods", "jei-1.0.jar")
	writeFile(t, oldJEI, "jei one")
	for _, m := range []db.Mod{
		{ModID: 238222, Name: "Just Enough Items", ClassID: classMods, FileID: 100, FileName: "jei-1.0.jar", InstallPath: oldJEI},
		{ModID: 394468, Name: "Sodium", ClassID: classMods},
		{ModID: 6552001, Name: "Complementary", ClassID: classShaders, FileID: 300, FileName: "complementary.zip"},
		{ModID: 999, Name: "Gone"},
	} {
		require.NoError(t, conn.Create(&m).Error)
	}

	progress := make(chan UpdateProgressMsg, 100)
	u := &updater{client: api.client(), conn: conn, cfg: cfg, log: logger.Log, progress: progress}
	summary, err := u.run(context.Background(), false)
	require.NoError(t, err)
	close(progress)

	assert.Equal(t, updateSummary{downloaded: 1, updated: 1, upToDate: 1}, summary)

	_, err = os.Stat(oldJEI)
	assert.True(t, os.IsNotExist(err), "old jei file should be removed")
	assert.FileExists(t, filepath.Join(cfg.MinecraftDir, "mods", "jei-1.1.jar"))
	assert.FileExists(t, filepath.Join(cfg.MinecraftDir, "mods", "sodium.jar"))

	jei, err := db.FindMod(conn, 238222)
	require.NoError(t, err)
	assert.Equal(t, 101, jei.FileID)
	sodium, err := db.FindMod(conn, 394468)
	require.NoError(t, err)
	assert.Equal(t, 200, sodium.FileID)
	assert.Equal(t, "sodium", sodium.Slug)

	counts := map[progressKind]int{}
	var planned int
	for msg := range progress {
		counts[msg.Kind]++
		if msg.Kind == progressPlan {
			planned = msg.Total
		}
	}
	assert.Equal(t, 3, counts[progressCheck])
	assert.Equal(t, 2, planned)
	assert.Equal(t, 2, counts[progressDownloadSuccess])
	assert.Equal(t, 1, counts[progressError], "the mod missing upstream is reported")

	// Everything was checked with two batch requests.
	requests := map[string]int{}
	for _, r := range api.requestLog() {
		requests[r]++
	}
	assert.Equal(t, 1, requests["POST /v1/mods"])
	assert.Equal(t, 1, requests["POST /v1/mods/files"])
}

func TestUpdaterRun_NoTrackedMods(t *testing.T) {
	api := newFakeAPI(t)
	progress := make(chan UpdateProgressMsg, 10)
	u := &updater{client: api.client(), conn: newTestDB(t), cfg: testConfig(t), log: logger.Log, progress: progress}

	summary, err := u.run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, updateSummary{}, summary)
	assert.Empty(t, api.requestLog())

	msg := <-progress
	assert.Equal(t, progressStatus, msg.Kind)
	assert.Equal(t, "No tracked mods found.", msg.Message)
}

func TestUpdateSummaryString(t *testing.T) {
	s := updateSummary{downloaded: 2, updated: 1, upToDate: 5, failed: 1}
	assert.Equal(t, "Finished. Downloaded 2 new mods, updated 1 existing mods, 5 up to date, 1 failed.", s.String())
}

func TestUpdateModel(t *testing.T) {
	m := initialUpdateModel(false)
	var model tea.Model = m

	for _, msg := range []UpdateProgressMsg{
		{Kind: progressStatus, Message: "Checking 2 tracked mods..."},
		{Kind: progressCheck, ProjectName: "JEI"},
		{Kind: progressCheck, ProjectName: "Sodium"},
		{Kind: progressDownloadStart, ProjectName: "JEI", Version: "jei-1.1"},
		{Kind: progressDownloadSuccess, ProjectName: "JEI", Version: "jei-1.1"},
		{Kind: progressError, ProjectName: "Sodium", Message: "no compatible file"},
	} {
		model, _ = model.Update(msg)
	}

	um := model.(UpdateModel)
	assert.Equal(t, 2, um.totalChecked)
	assert.Equal(t, 1, um.totalUpdated)
	assert.Equal(t, 1, um.totalErrors)
	assert.Empty(t, um.checking)
	assert.Empty(t, um.downloading)
	assert.Equal(t, []string{"Updated JEI to jei-1.1"}, um.completed)

	view := um.View()
	assert.Contains(t, view, "checked 2, updated 1, errors 1")
	assert.Contains(t, view, "Sodium: no compatible file")

	model, cmd := model.Update(UpdateProgressMsg{Kind: progressDone})
	assert.True(t, model.(UpdateModel).done)
	assert.NotNil(t, cmd)
}

func TestUpdateModel_DownloadProgress(t *testing.T) {
	m := initialUpdateModel(false)
	m.apply(UpdateProgressMsg{Kind: progressError, ProjectName: "Gone", Message: "no compatible file"})
	assert.Zero(t, m.downloadFraction(), "errors before planning are not downloads")

	m.apply(UpdateProgressMsg{Kind: progressPlan, Total: 4})
	m.apply(UpdateProgressMsg{Kind: progressDownloadStart, ProjectName: "JEI", Version: "jei-1.1"})
	m.apply(UpdateProgressMsg{Kind: progressDownloadStart, ProjectName: "Sodium", Version: "sodium-0.5"})
	m.apply(UpdateProgressMsg{Kind: progressDownloadSuccess, ProjectName: "JEI", Version: "jei-1.1"})
	m.apply(UpdateProgressMsg{Kind: progressError, ProjectName: "Sodium", Message: "sha1 mismatch"})

	assert.InDelta(t, 0.5, m.downloadFraction(), 1e-9)
	assert.Empty(t, m.downloading, "failed downloads leave the list")
	assert.Equal(t, "Downloading 4 files...", m.status)
	assert.Equal(t, 2, m.totalErrors)
}
