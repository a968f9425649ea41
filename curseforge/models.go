package curseforge

import (
	"strconv"
	"time"
)

// ID identifies a remote entity (mod, file, category, game, author).
type ID int

func (id ID) String() string { return strconv.Itoa(int(id)) }

// Mod is a project hosted on CurseForge.
type Mod struct {
	ID                   ID          `json:"id"`
	GameID               ID          `json:"gameId"`
	Name                 string      `json:"name"`
	Slug                 string      `json:"slug"`
	Links                ModLinks    `json:"links"`
	Summary              string      `json:"summary"`
	Status               ModStatus   `json:"status"`
	DownloadCount        int64       `json:"downloadCount"`
	IsFeatured           bool        `json:"isFeatured"`
	PrimaryCategoryID    ID          `json:"primaryCategoryId"`
	Categories           []Category  `json:"categories"`
	ClassID              *ID         `json:"classId"`
	Authors              []ModAuthor `json:"authors"`
	Logo                 *ModAsset   `json:"logo"`
	Screenshots          []ModAsset  `json:"screenshots"`
	MainFileID           ID          `json:"mainFileId"`
	LatestFiles          []File      `json:"latestFiles"`
	LatestFilesIndexes   []FileIndex `json:"latestFilesIndexes"`
	DateCreated          time.Time   `json:"dateCreated"`
	DateModified         time.Time   `json:"dateModified"`
	DateReleased         time.Time   `json:"dateReleased"`
	AllowModDistribution *bool       `json:"allowModDistribution"`
	GamePopularityRank   int64       `json:"gamePopularityRank"`
	IsAvailable          bool        `json:"isAvailable"`
	ThumbsUpCount        *int64      `json:"thumbsUpCount"`
}

// ModLinks holds the external pages of a mod.
type ModLinks struct {
	WebsiteURL URL  `json:"websiteUrl"`
	WikiURL    *URL `json:"wikiUrl"`
	IssuesURL  *URL `json:"issuesUrl"`
	SourceURL  *URL `json:"sourceUrl"`
}

type ModAuthor struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	URL  URL    `json:"url"`
}

// ModAsset is an image attached to a mod (logo or screenshot).
type ModAsset struct {
	ID           ID     `json:"id"`
	ModID        ID     `json:"modId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL URL    `json:"thumbnailUrl"`
	URL          URL    `json:"url"`
}

// Category classifies mods. Slug is absent for at least one top level
// category, and DateModified may lack a zone designator.
type Category struct {
	ID               ID          `json:"id"`
	GameID           ID          `json:"gameId"`
	Name             string      `json:"name"`
	Slug             *string     `json:"slug"`
	URL              URL         `json:"url"`
	IconURL          URL         `json:"iconUrl"`
	DateModified     LenientTime `json:"dateModified"`
	IsClass          *bool       `json:"isClass"`
	ClassID          *ID         `json:"classId"`
	ParentCategoryID *ID         `json:"parentCategoryId"`
	DisplayIndex     *int64      `json:"displayIndex"`
}

// Pagination describes the page carried by a list response.
type Pagination struct {
	// Index is the zero based position of the first returned item.
	Index       int64 `json:"index"`
	PageSize    int64 `json:"pageSize"`
	ResultCount int64 `json:"resultCount"`
	TotalCount  int64 `json:"totalCount"`
}

type SortableGameVersion struct {
	// GameVersionName is the original name, e.g. "1.5b".
	GameVersionName string `json:"gameVersionName"`
	// GameVersionPadded sorts lexically, e.g. "0000000001.0000000005".
	GameVersionPadded      string    `json:"gameVersionPadded"`
	GameVersion            string    `json:"gameVersion"`
	GameVersionReleaseDate time.Time `json:"gameVersionReleaseDate"`
	GameVersionTypeID      *ID       `json:"gameVersionTypeId"`
}

// File is a downloadable release artifact of a mod. A nil DownloadURL means
// the author does not allow third party distribution.
type File struct {
	ID                   ID                    `json:"id"`
	GameID               ID                    `json:"gameId"`
	ModID                ID                    `json:"modId"`
	IsAvailable          bool                  `json:"isAvailable"`
	DisplayName          string                `json:"displayName"`
	FileName             string                `json:"fileName"`
	ReleaseType          FileReleaseType       `json:"releaseType"`
	FileStatus           FileStatus            `json:"fileStatus"`
	Hashes               []FileHash            `json:"hashes"`
	FileDate             time.Time             `json:"fileDate"`
	FileLength           int64                 `json:"fileLength"`
	DownloadCount        int64                 `json:"downloadCount"`
	FileSizeOnDisk       *int64                `json:"fileSizeOnDisk"`
	DownloadURL          *URL                  `json:"downloadUrl"`
	GameVersions         []string              `json:"gameVersions"`
	SortableGameVersions []SortableGameVersion `json:"sortableGameVersions"`
	Dependencies         []FileDependency      `json:"dependencies"`
	ExposeAsAlternative  *bool                 `json:"exposeAsAlternative"`
	ParentProjectFileID  *ID                   `json:"parentProjectFileId"`
	AlternateFileID      *ID                   `json:"alternateFileId"`
	IsServerPack         *bool                 `json:"isServerPack"`
	ServerPackFileID     *ID                   `json:"serverPackFileId"`
	IsEarlyAccessContent *bool                 `json:"isEarlyAccessContent"`
	EarlyAccessEndDate   *time.Time            `json:"earlyAccessEndDate"`
	FileFingerprint      uint32                `json:"fileFingerprint"`
	Modules              []FileModule          `json:"modules"`
}

// Hash returns the hash value for algo, or "" if the file has none.
func (f File) Hash(algo HashAlgo) string {
	for _, h := range f.Hashes {
		if h.Algo == algo {
			return h.Value
		}
	}
	return ""
}

// SupportsGameVersion reports whether the file is tagged with version.
// Loader names appear in the same list, e.g. "Fabric".
func (f File) SupportsGameVersion(version string) bool {
	for _, v := range f.GameVersions {
		if v == version {
			return true
		}
	}
	return false
}

type FileHash struct {
	Value string   `json:"value"`
	Algo  HashAlgo `json:"algo"`
}

type FileDependency struct {
	ModID        ID               `json:"modId"`
	RelationType FileRelationType `json:"relationType"`
}

type FileModule struct {
	Name        string `json:"name"`
	Fingerprint uint32 `json:"fingerprint"`
}

// FileIndex summarises one of a mod's latest files per game version.
type FileIndex struct {
	GameVersion       string          `json:"gameVersion"`
	FileID            ID              `json:"fileId"`
	Filename          string          `json:"filename"`
	ReleaseType       FileReleaseType `json:"releaseType"`
	GameVersionTypeID *ID             `json:"gameVersionTypeId"`
	ModLoader         *ModLoaderType  `json:"modLoader"`
}

// FingerprintMatches is the result of a fingerprint lookup.
type FingerprintMatches struct {
	IsCacheBuilt             bool                `json:"isCacheBuilt"`
	ExactMatches             []FingerprintMatch  `json:"exactMatches"`
	ExactFingerprints        []uint32            `json:"exactFingerprints"`
	PartialMatches           []FingerprintMatch  `json:"partialMatches"`
	PartialMatchFingerprints map[string][]uint32 `json:"partialMatchFingerprints"`
	InstalledFingerprints    []uint32            `json:"installedFingerprints,omitempty"`
	UnmatchedFingerprints    []uint32            `json:"unmatchedFingerprints"`
}

type FingerprintMatch struct {
	ID          ID     `json:"id"`
	File        File   `json:"file"`
	LatestFiles []File `json:"latestFiles"`
}
