package curseforge

import (
	"context"
	"fmt"
)

type getModsBody struct {
	ModIDs []ID `json:"modIds"`
}

// GetMod retrieves the mod with modID.
func (c *Client) GetMod(ctx context.Context, modID ID) (*Mod, error) {
	u, err := c.endpoint("", "mods", modID.String())
	if err != nil {
		return nil, err
	}
	mod, _, err := get[Mod](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("failed to get mod %d: %w", modID, err)
	}
	return &mod, nil
}

// GetMods retrieves several mods in one request. The result follows the
// order of modIDs; IDs the API does not return are omitted.
func (c *Client) GetMods(ctx context.Context, modIDs []ID) ([]Mod, error) {
	u, err := c.endpoint("", "mods")
	if err != nil {
		return nil, err
	}
	mods, _, err := post[[]Mod](ctx, c, u, getModsBody{ModIDs: modIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to get mods %v: %w", modIDs, err)
	}
	return orderByIDs(modIDs, mods, modIDOf), nil
}

// GetModDescription returns the HTML description of a mod.
func (c *Client) GetModDescription(ctx context.Context, modID ID) (string, error) {
	u, err := c.endpoint("", "mods", modID.String(), "description")
	if err != nil {
		return "", err
	}
	description, _, err := get[string](ctx, c, u)
	if err != nil {
		return "", fmt.Errorf("failed to get description of mod %d: %w", modID, err)
	}
	return description, nil
}

// SearchMods returns the mods matching q.
func (c *Client) SearchMods(ctx context.Context, q SearchQuery) ([]Mod, error) {
	mods, _, err := c.SearchModsPage(ctx, q)
	return mods, err
}

// SearchModsPage is SearchMods that also returns the page metadata.
func (c *Client) SearchModsPage(ctx context.Context, q SearchQuery) ([]Mod, *Pagination, error) {
	u, err := c.endpoint(q.Encode(), "mods", "search")
	if err != nil {
		return nil, nil, err
	}
	mods, page, err := get[[]Mod](ctx, c, u)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search mods: %w", err)
	}
	return mods, page, nil
}
