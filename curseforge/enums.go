package curseforge

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ModStatus is the moderation state of a mod.
type ModStatus int

const (
	ModStatusNew             ModStatus = 1
	ModStatusChangesRequired ModStatus = 2
	ModStatusUnderSoftReview ModStatus = 3
	ModStatusApproved        ModStatus = 4
	ModStatusRejected        ModStatus = 5
	ModStatusChangesMade     ModStatus = 6
	ModStatusInactive        ModStatus = 7
	ModStatusAbandoned       ModStatus = 8
	ModStatusDeleted         ModStatus = 9
	ModStatusUnderReview     ModStatus = 10
)

func (s ModStatus) valid() bool { return s >= ModStatusNew && s <= ModStatusUnderReview }

func (s *ModStatus) UnmarshalJSON(data []byte) error {
	return decodeCode(data, "mod status", s)
}

// ModLoaderType identifies a mod loader on the wire.
type ModLoaderType int

const (
	ModLoaderAny        ModLoaderType = 0
	ModLoaderForge      ModLoaderType = 1
	ModLoaderCauldron   ModLoaderType = 2
	ModLoaderLiteLoader ModLoaderType = 3
	ModLoaderFabric     ModLoaderType = 4
	ModLoaderQuilt      ModLoaderType = 5
)

var modLoaderNames = map[string]ModLoaderType{
	"any":        ModLoaderAny,
	"forge":      ModLoaderForge,
	"cauldron":   ModLoaderCauldron,
	"liteloader": ModLoaderLiteLoader,
	"fabric":     ModLoaderFabric,
	"quilt":      ModLoaderQuilt,
}

func (l ModLoaderType) valid() bool { return l >= ModLoaderAny && l <= ModLoaderQuilt }

func (l ModLoaderType) String() string {
	for name, code := range modLoaderNames {
		if code == l {
			return name
		}
	}
	return "ModLoaderType(" + strconv.Itoa(int(l)) + ")"
}

func (l *ModLoaderType) UnmarshalJSON(data []byte) error {
	return decodeCode(data, "mod loader type", l)
}

// ParseModLoaderType maps a loader name such as "fabric" to its wire code.
func ParseModLoaderType(name string) (ModLoaderType, error) {
	if l, ok := modLoaderNames[name]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown mod loader %q", name)
}

// ModsSearchSortField selects the sort key of a mod search.
type ModsSearchSortField int

const (
	SortFieldFeatured       ModsSearchSortField = 1
	SortFieldPopularity     ModsSearchSortField = 2
	SortFieldLastUpdated    ModsSearchSortField = 3
	SortFieldName           ModsSearchSortField = 4
	SortFieldAuthor         ModsSearchSortField = 5
	SortFieldTotalDownloads ModsSearchSortField = 6
	SortFieldCategory       ModsSearchSortField = 7
	SortFieldGameVersion    ModsSearchSortField = 8
)

// SortOrder is sent as the literal "asc" or "desc".
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FileReleaseType is the release channel of a file.
type FileReleaseType int

const (
	ReleaseTypeRelease FileReleaseType = 1
	ReleaseTypeBeta    FileReleaseType = 2
	ReleaseTypeAlpha   FileReleaseType = 3
)

func (r FileReleaseType) valid() bool { return r >= ReleaseTypeRelease && r <= ReleaseTypeAlpha }

func (r FileReleaseType) String() string {
	switch r {
	case ReleaseTypeRelease:
		return "release"
	case ReleaseTypeBeta:
		return "beta"
	case ReleaseTypeAlpha:
		return "alpha"
	}
	return "FileReleaseType(" + strconv.Itoa(int(r)) + ")"
}

func (r *FileReleaseType) UnmarshalJSON(data []byte) error {
	return decodeCode(data, "file release type", r)
}

// ParseReleaseType maps "release", "beta" or "alpha" to its wire code.
func ParseReleaseType(name string) (FileReleaseType, error) {
	for _, r := range []FileReleaseType{ReleaseTypeRelease, ReleaseTypeBeta, ReleaseTypeAlpha} {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown release type %q", name)
}

// FileStatus is the processing state of a file.
type FileStatus int

const (
	FileStatusProcessing         FileStatus = 1
	FileStatusChangesRequired    FileStatus = 2
	FileStatusUnderReview        FileStatus = 3
	FileStatusApproved           FileStatus = 4
	FileStatusRejected           FileStatus = 5
	FileStatusMalwareDetected    FileStatus = 6
	FileStatusDeleted            FileStatus = 7
	FileStatusArchived           FileStatus = 8
	FileStatusTesting            FileStatus = 9
	FileStatusReleased           FileStatus = 10
	FileStatusReadyForReview     FileStatus = 11
	FileStatusDeprecated         FileStatus = 12
	FileStatusBaking             FileStatus = 13
	FileStatusAwaitingPublishing FileStatus = 14
	FileStatusFailedPublishing   FileStatus = 15
)

func (s FileStatus) valid() bool {
	return s >= FileStatusProcessing && s <= FileStatusFailedPublishing
}

func (s *FileStatus) UnmarshalJSON(data []byte) error {
	return decodeCode(data, "file status", s)
}

// HashAlgo identifies the algorithm of a FileHash.
type HashAlgo int

const (
	HashAlgoSHA1 HashAlgo = 1
	HashAlgoMD5  HashAlgo = 2
)

func (a HashAlgo) valid() bool { return a == HashAlgoSHA1 || a == HashAlgoMD5 }

func (a *HashAlgo) UnmarshalJSON(data []byte) error {
	return decodeCode(data, "hash algorithm", a)
}

// FileRelationType describes how a file depends on another mod.
type FileRelationType int

const (
	RelationEmbeddedLibrary    FileRelationType = 1
	RelationOptionalDependency FileRelationType = 2
	RelationRequiredDependency FileRelationType = 3
	RelationTool               FileRelationType = 4
	RelationIncompatible       FileRelationType = 5
	RelationInclude            FileRelationType = 6
)

func (r FileRelationType) valid() bool {
	return r >= RelationEmbeddedLibrary && r <= RelationInclude
}

func (r *FileRelationType) UnmarshalJSON(data []byte) error {
	return decodeCode(data, "file relation type", r)
}

type wireCode interface {
	~int
	valid() bool
}

// decodeCode decodes an integer wire code and rejects values outside the
// enumeration.
func decodeCode[T wireCode](data []byte, kind string, dst *T) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return &DecodeError{Text: string(data), Err: fmt.Errorf("%s: %w", kind, err)}
	}
	code := T(n)
	if !code.valid() {
		return &DecodeError{Text: string(data), Err: fmt.Errorf("unknown %s code %d", kind, n)}
	}
	*dst = code
	return nil
}
