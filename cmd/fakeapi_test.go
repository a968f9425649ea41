package cmd

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"curseforge-mod-updater/config"
	"curseforge-mod-updater/curseforge"
	"curseforge-mod-updater/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testGameVersion = "1.20.1"

// fakeAPI serves a small in-memory CurseForge catalogue plus the CDN.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	mods     map[curseforge.ID]*curseforge.Mod
	files    map[curseforge.ID]curseforge.File
	content  map[curseforge.ID][]byte
	requests []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:       t,
		mods:    map[curseforge.ID]*curseforge.Mod{},
		files:   map[curseforge.ID]curseforge.File{},
		content: map[curseforge.ID][]byte{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client() *curseforge.Client {
	f.t.Helper()
	c, err := curseforge.NewClient("test-key", &curseforge.Config{BaseURL: f.server.URL + "/v1/"})
	require.NoError(f.t, err)
	return c
}

func (f *fakeAPI) mustURL(raw string) curseforge.URL {
	u, err := curseforge.ParseURL(raw)
	require.NoError(f.t, err)
	return u
}

func (f *fakeAPI) addMod(id int, name, slug string, classID int) *curseforge.Mod {
	cls := curseforge.ID(classID)
	mod := &curseforge.Mod{
		ID:                 curseforge.ID(id),
		GameID:             curseforge.DefaultGameID,
		Name:               name,
		Slug:               slug,
		Links:              curseforge.ModLinks{WebsiteURL: f.mustURL("https://www.curseforge.com/minecraft/mc-mods/" + slug)},
		Summary:            name + " summary",
		Status:             curseforge.ModStatusApproved,
		Categories:         []curseforge.Category{},
		ClassID:            &cls,
		Authors:            []curseforge.ModAuthor{},
		Screenshots:        []curseforge.ModAsset{},
		LatestFiles:        []curseforge.File{},
		LatestFilesIndexes: []curseforge.FileIndex{},
		DateCreated:        time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		DateModified:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateReleased:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsAvailable:        true,
	}
	f.mu.Lock()
	f.mods[mod.ID] = mod
	f.mu.Unlock()
	return mod
}

var testLoaderTags = map[curseforge.ModLoaderType]string{
	curseforge.ModLoaderForge:  "Forge",
	curseforge.ModLoaderFabric: "Fabric",
	curseforge.ModLoaderQuilt:  "Quilt",
}

// addFile publishes a file for modID and lists it in the mod's latest file
// indexes.
func (f *fakeAPI) addFile(modID, fileID int, fileName, body, gameVersion string, loader curseforge.ModLoaderType) curseforge.File {
	f.t.Helper()
	data := []byte(body)
	sum := sha1.Sum(data)
	fp, err := curseforge.Fingerprint(bytes.NewReader(data))
	require.NoError(f.t, err)

	versions := []string{gameVersion}
	if tag, ok := testLoaderTags[loader]; ok {
		versions = append(versions, tag)
	}
	downloadURL := f.mustURL(f.server.URL + "/cdn/" + strconv.Itoa(fileID) + "/" + fileName)
	file := curseforge.File{
		ID:                   curseforge.ID(fileID),
		GameID:               curseforge.DefaultGameID,
		ModID:                curseforge.ID(modID),
		IsAvailable:          true,
		DisplayName:          strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		FileName:             fileName,
		ReleaseType:          curseforge.ReleaseTypeRelease,
		FileStatus:           curseforge.FileStatusApproved,
		Hashes:               []curseforge.FileHash{{Value: hex.EncodeToString(sum[:]), Algo: curseforge.HashAlgoSHA1}},
		FileDate:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(fileID) * time.Minute),
		FileLength:           int64(len(data)),
		DownloadURL:          &downloadURL,
		GameVersions:         versions,
		SortableGameVersions: []curseforge.SortableGameVersion{},
		Dependencies:         []curseforge.FileDependency{},
		FileFingerprint:      fp,
		Modules:              []curseforge.FileModule{},
	}

	idx := curseforge.FileIndex{
		GameVersion: gameVersion,
		FileID:      file.ID,
		Filename:    fileName,
		ReleaseType: file.ReleaseType,
	}
	if loader != curseforge.ModLoaderAny {
		idx.ModLoader = curseforge.Ptr(loader)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[file.ID] = file
	f.content[file.ID] = data
	if mod, ok := f.mods[curseforge.ID(modID)]; ok {
		mod.LatestFiles = append(mod.LatestFiles, file)
		mod.LatestFilesIndexes = append(mod.LatestFilesIndexes, idx)
	}
	return file
}

func (f *fakeAPI) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) reply(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case parts[0] == "cdn" && len(parts) == 3:
		id, _ := strconv.Atoi(parts[1])
		data, ok := f.content[curseforge.ID(id)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)

	case r.Method == http.MethodPost && r.URL.Path == "/v1/mods":
		var body struct {
			ModIDs []curseforge.ID `json:"modIds"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		mods := []curseforge.Mod{}
		for _, id := range body.ModIDs {
			if mod, ok := f.mods[id]; ok {
				mods = append(mods, *mod)
			}
		}
		f.reply(w, mods)

	case r.Method == http.MethodPost && r.URL.Path == "/v1/mods/files":
		var body struct {
			FileIDs []curseforge.ID `json:"fileIds"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		files := []curseforge.File{}
		for _, id := range body.FileIDs {
			if file, ok := f.files[id]; ok {
				files = append(files, file)
			}
		}
		f.reply(w, files)

	case r.Method == http.MethodPost && r.URL.Path == "/v1/fingerprints":
		var body struct {
			Fingerprints []uint32 `json:"fingerprints"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		matches := curseforge.FingerprintMatches{
			IsCacheBuilt:             true,
			ExactMatches:             []curseforge.FingerprintMatch{},
			ExactFingerprints:        []uint32{},
			PartialMatches:           []curseforge.FingerprintMatch{},
			PartialMatchFingerprints: map[string][]uint32{},
			UnmatchedFingerprints:    []uint32{},
		}
		for _, fp := range body.Fingerprints {
			found := false
			for _, file := range f.files {
				if file.FileFingerprint == fp {
					matches.ExactMatches = append(matches.ExactMatches, curseforge.FingerprintMatch{
						ID: file.ModID, File: file, LatestFiles: []curseforge.File{file},
					})
					matches.ExactFingerprints = append(matches.ExactFingerprints, fp)
					found = true
					break
				}
			}
			if !found {
				matches.UnmatchedFingerprints = append(matches.UnmatchedFingerprints, fp)
			}
		}
		f.reply(w, matches)

	case r.Method == http.MethodGet && r.URL.Path == "/v1/mods/search":
		slug := r.URL.Query().Get("slug")
		mods := []curseforge.Mod{}
		for _, mod := range f.mods {
			if slug == "" || mod.Slug == slug {
				mods = append(mods, *mod)
			}
		}
		f.reply(w, mods)

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "mods":
		id, _ := strconv.Atoi(parts[2])
		mod, ok := f.mods[curseforge.ID(id)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.reply(w, mod)

	case r.Method == http.MethodGet && len(parts) == 5 && parts[1] == "mods" && parts[3] == "files":
		id, _ := strconv.Atoi(parts[4])
		file, ok := f.files[curseforge.ID(id)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.reply(w, file)

	default:
		http.NotFound(w, r)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "mods.db"))
	require.NoError(t, err)
	return conn
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		CurseForgeAPIKey: "test-key",
		GameID:           int(curseforge.DefaultGameID),
		MinecraftLoader:  "fabric",
		MinecraftVersion: testGameVersion,
		ReleaseChannel:   "release",
		MinecraftDir:     t.TempDir(),
	}
}
