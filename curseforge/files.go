package curseforge

import (
	"context"
	"fmt"
)

// modFilesQuery asks for every file at once instead of paging.
const modFilesQuery = "pageSize=10000"

type getFilesBody struct {
	FileIDs []ID `json:"fileIds"`
}

// GetModFiles retrieves the files of the mod with modID, newest first.
func (c *Client) GetModFiles(ctx context.Context, modID ID) ([]File, error) {
	u, err := c.endpoint(modFilesQuery, "mods", modID.String(), "files")
	if err != nil {
		return nil, err
	}
	files, _, err := get[[]File](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("failed to get files of mod %d: %w", modID, err)
	}
	return files, nil
}

// GetModFile retrieves file fileID of mod modID.
func (c *Client) GetModFile(ctx context.Context, modID, fileID ID) (*File, error) {
	u, err := c.endpoint("", "mods", modID.String(), "files", fileID.String())
	if err != nil {
		return nil, err
	}
	file, _, err := get[File](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %d of mod %d: %w", fileID, modID, err)
	}
	return &file, nil
}

// GetModFileChangelog returns the HTML changelog of a file.
func (c *Client) GetModFileChangelog(ctx context.Context, modID, fileID ID) (string, error) {
	u, err := c.endpoint("", "mods", modID.String(), "files", fileID.String(), "changelog")
	if err != nil {
		return "", err
	}
	changelog, _, err := get[string](ctx, c, u)
	if err != nil {
		return "", fmt.Errorf("failed to get changelog of file %d: %w", fileID, err)
	}
	return changelog, nil
}

// FileDownloadURL returns the download URL of a file.
func (c *Client) FileDownloadURL(ctx context.Context, modID, fileID ID) (URL, error) {
	u, err := c.endpoint("", "mods", modID.String(), "files", fileID.String(), "download-url")
	if err != nil {
		return URL{}, err
	}
	downloadURL, _, err := get[URL](ctx, c, u)
	if err != nil {
		return URL{}, fmt.Errorf("failed to get download url of file %d: %w", fileID, err)
	}
	return downloadURL, nil
}

// GetFiles retrieves several files in one request. The result follows the
// order of fileIDs; IDs the API does not return are omitted.
func (c *Client) GetFiles(ctx context.Context, fileIDs []ID) ([]File, error) {
	u, err := c.endpoint("", "mods", "files")
	if err != nil {
		return nil, err
	}
	files, _, err := post[[]File](ctx, c, u, getFilesBody{FileIDs: fileIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to get files %v: %w", fileIDs, err)
	}
	return orderByIDs(fileIDs, files, fileIDOf), nil
}
