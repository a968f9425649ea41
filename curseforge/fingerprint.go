package curseforge

import (
	"context"
	"fmt"
	"io"
	"os"

	murmur "github.com/aviddiviner/go-murmur"
)

const (
	murmurSeed           = 1
	fingerprintChunkSize = 64 * 1024
)

type getFingerprintsBody struct {
	Fingerprints []uint32 `json:"fingerprints"`
}

// GetFingerprintMatches looks up files by their CurseForge fingerprint.
func (c *Client) GetFingerprintMatches(ctx context.Context, fingerprints []uint32) (*FingerprintMatches, error) {
	u, err := c.endpoint("", "fingerprints")
	if err != nil {
		return nil, err
	}
	matches, _, err := post[FingerprintMatches](ctx, c, u, getFingerprintsBody{Fingerprints: fingerprints})
	if err != nil {
		return nil, fmt.Errorf("failed to match fingerprints: %w", err)
	}
	return &matches, nil
}

// Fingerprint computes the CurseForge fingerprint of r: MurmurHash2 with
// seed 1 over the content with tab, LF, CR and space bytes removed.
func Fingerprint(r io.Reader) (uint32, error) {
	return fingerprint(r, 0)
}

// FingerprintFile computes the fingerprint of the file at path.
func FingerprintFile(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return fingerprint(f, size)
}

// fingerprint normalizes r chunk by chunk. sizeHint, when known, sizes the
// normalized buffer up front.
func fingerprint(r io.Reader, sizeHint int64) (uint32, error) {
	normalized := make([]byte, 0, sizeHint)
	chunk := make([]byte, fingerprintChunkSize)
	for {
		n, err := r.Read(chunk)
		for _, b := range chunk[:n] {
			if !isFingerprintWhitespace(b) {
				normalized = append(normalized, b)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	return murmur.MurmurHash2(normalized, murmurSeed), nil
}

func isFingerprintWhitespace(b byte) bool {
	return b == 9 || b == 10 || b == 13 || b == 32
}
