package curseforge

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DownloadFile downloads file to destinationPath and checks its SHA1 hash
// when the API lists one. destinationPath is only replaced once the download
// completed and verified; a partial or mismatching download is removed.
func (c *Client) DownloadFile(ctx context.Context, log *zap.SugaredLogger, destinationPath string, file File) error {
	if file.DownloadURL == nil || file.DownloadURL.URL == nil {
		return fmt.Errorf("%s: %w", file.FileName, ErrNoDownloadURL)
	}

	dir := filepath.Dir(destinationPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warnw("Target directory for download does not exist, attempting to create", zap.String("directory", dir))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory '%s': %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check target directory '%s': %w", dir, err)
	}

	downloadURL := file.DownloadURL.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to start download for '%s' from %s: %w", file.FileName, downloadURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &RequestError{Method: http.MethodGet, URL: downloadURL, StatusCode: resp.StatusCode, Body: body}
	}

	// Stream into a sibling file so an existing destination survives a
	// failed or corrupt transfer.
	partPath := destinationPath + ".part"
	outFile, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", partPath, err)
	}

	hasher := sha1.New()
	_, copyErr := io.Copy(io.MultiWriter(outFile, hasher), resp.Body)
	closeErr := outFile.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(partPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return fmt.Errorf("failed to write downloaded content to '%s': %w", partPath, copyErr)
	}

	if want := file.Hash(HashAlgoSHA1); want != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, want) {
			os.Remove(partPath)
			return fmt.Errorf("%s: expected sha1 %s, got %s: %w", file.FileName, want, got, ErrHashMismatch)
		}
	}

	if err := os.Rename(partPath, destinationPath); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to move download into place at '%s': %w", destinationPath, err)
	}

	log.Debugw("Downloaded file", zap.String("file", file.FileName), zap.String("path", destinationPath))
	return nil
}
