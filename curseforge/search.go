package curseforge

import (
	"net/url"
	"strconv"
)

// DefaultGameID is the CurseForge game ID of Minecraft.
const DefaultGameID ID = 432

// SearchQuery filters and sorts a mod search. Nil fields are left out of the
// request entirely. A zero GameID means DefaultGameID.
type SearchQuery struct {
	GameID ID
	// ClassID filters by section (discoverable via categories).
	ClassID    *ID
	CategoryID *ID
	// GameVersion filters by a game version string such as "1.20.1".
	GameVersion *string
	// SearchFilter is free text matched against mod name and author.
	SearchFilter *string
	SortField    *ModsSearchSortField
	SortOrder    *SortOrder
	// ModLoaderType must be combined with GameVersion.
	ModLoaderType     *ModLoaderType
	GameVersionTypeID *ID
	// Slug combined with ClassID yields a unique result.
	Slug *string
	// Index is the zero based position of the first item to return.
	Index    int
	PageSize *int
}

// NewSearchQuery returns a query for DefaultGameID starting at index 0.
func NewSearchQuery() SearchQuery {
	return SearchQuery{GameID: DefaultGameID}
}

// Ptr returns a pointer to v, for filling optional query fields.
func Ptr[T any](v T) *T {
	return &v
}

// Values returns the query parameters carried by q.
func (q SearchQuery) Values() url.Values {
	gameID := q.GameID
	if gameID == 0 {
		gameID = DefaultGameID
	}

	values := url.Values{}
	values.Set("gameId", gameID.String())
	if q.ClassID != nil {
		values.Set("classId", q.ClassID.String())
	}
	if q.CategoryID != nil {
		values.Set("categoryId", q.CategoryID.String())
	}
	if q.GameVersion != nil {
		values.Set("gameVersion", *q.GameVersion)
	}
	if q.SearchFilter != nil {
		values.Set("searchFilter", *q.SearchFilter)
	}
	if q.SortField != nil {
		values.Set("sortField", strconv.Itoa(int(*q.SortField)))
	}
	if q.SortOrder != nil {
		values.Set("sortOrder", string(*q.SortOrder))
	}
	if q.ModLoaderType != nil {
		values.Set("modLoaderType", strconv.Itoa(int(*q.ModLoaderType)))
	}
	if q.GameVersionTypeID != nil {
		values.Set("gameVersionTypeId", q.GameVersionTypeID.String())
	}
	if q.Slug != nil {
		values.Set("slug", *q.Slug)
	}
	values.Set("index", strconv.Itoa(q.Index))
	if q.PageSize != nil {
		values.Set("pageSize", strconv.Itoa(*q.PageSize))
	}
	return values
}

// Encode serialises q as a URL query string, keys sorted.
func (q SearchQuery) Encode() string {
	return q.Values().Encode()
}
