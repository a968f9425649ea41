package curseforge

import (
	"bytes"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGeneric(t *testing.T, raw []byte) any {
	t.Helper()
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&v))
	return v
}

// injectKey adds an unexpected key to the target-th object of v, counting
// objects depth first in key order. Values under a key in skip are not
// visited. It reports whether the target was reached.
func injectKey(v any, target int, seen *int, skip map[string]bool) bool {
	switch node := v.(type) {
	case map[string]any:
		if *seen == target {
			node["unexpectedKey"] = 1
			return true
		}
		*seen++
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if skip[key] {
				continue
			}
			if injectKey(node[key], target, seen, skip) {
				return true
			}
		}
	case []any:
		for _, item := range node {
			if injectKey(item, target, seen, skip) {
				return true
			}
		}
	}
	return false
}

func assertRejectsExtraKeys[T any](t *testing.T, payload []byte, skip map[string]bool) {
	t.Helper()
	body := envelope(payload)

	var ok Response[T]
	require.NoError(t, decodeStrict(body, &ok))

	objects := 0
	for target := 0; ; target++ {
		doc := parseGeneric(t, body)
		seen := 0
		if !injectKey(doc, target, &seen, skip) {
			break
		}
		mutated, err := json.Marshal(doc)
		require.NoError(t, err)

		var resp Response[T]
		err = decodeStrict(mutated, &resp)
		var decErr *DecodeError
		if assert.ErrorAs(t, err, &decErr, "object %d", target) {
			assert.ErrorIs(t, err, errUnknownField)
		}
		objects++
	}
	assert.Greater(t, objects, 1)
}

func TestDecodeStrict_RejectsExtraKeysEverywhere(t *testing.T) {
	t.Run("mod", func(t *testing.T) {
		assertRejectsExtraKeys[Mod](t, loadFixture(t, "mod.json"), nil)
	})
	t.Run("file", func(t *testing.T) {
		assertRejectsExtraKeys[File](t, loadFixture(t, "file.json"), nil)
	})
	t.Run("fingerprint matches", func(t *testing.T) {
		// partialMatchFingerprints is keyed by fingerprint, not a record.
		assertRejectsExtraKeys[FingerprintMatches](t, loadFixture(t, "fingerprint_matches.json"),
			map[string]bool{"partialMatchFingerprints": true})
	})
	t.Run("pagination", func(t *testing.T) {
		body := []byte(`{"data":[],"pagination":{"index":0,"pageSize":50,"resultCount":0,"totalCount":0,"extra":1}}`)
		var resp Response[[]Mod]
		err := decodeStrict(body, &resp)
		assert.ErrorIs(t, err, errUnknownField)
	})
}

func TestDecodeEnvelope_RoundTrip(t *testing.T) {
	t.Run("mod", func(t *testing.T) {
		mod, page, err := decodeEnvelope[Mod](envelope(loadFixture(t, "mod.json")))
		require.NoError(t, err)
		assert.Nil(t, page)

		encoded, err := json.Marshal(Response[Mod]{Data: mod})
		require.NoError(t, err)
		again, _, err := decodeEnvelope[Mod](encoded)
		require.NoError(t, err)
		assert.Equal(t, mod, again)
	})

	t.Run("file list with pagination", func(t *testing.T) {
		body := []byte(`{"data":` + string(list(loadFixture(t, "file.json"))) +
			`,"pagination":{"index":0,"pageSize":50,"resultCount":1,"totalCount":1}}`)
		files, page, err := decodeEnvelope[[]File](body)
		require.NoError(t, err)
		require.NotNil(t, page)

		encoded, err := json.Marshal(Response[[]File]{Data: files, Pagination: page})
		require.NoError(t, err)
		again, againPage, err := decodeEnvelope[[]File](encoded)
		require.NoError(t, err)
		assert.Equal(t, files, again)
		assert.Equal(t, page, againPage)
	})

	t.Run("string payload", func(t *testing.T) {
		text, _, err := decodeEnvelope[string]([]byte(`{"data":"<p>hi</p>"}`))
		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", text)
	})
}

func TestDecodeStrict_RequiredFields(t *testing.T) {
	mod := loadFixture(t, "mod.json")

	tests := []struct {
		name        string
		payload     []byte
		expectedErr bool
		path        string
	}{
		{name: "required field null", payload: withField(t, mod, "name", nil), expectedErr: true, path: "data.name"},
		{name: "required list null", payload: withField(t, mod, "latestFiles", nil), expectedErr: true, path: "data.latestFiles"},
		{name: "optional field null", payload: withField(t, mod, "logo", nil)},
		{name: "optional field null count", payload: withField(t, mod, "thumbsUpCount", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeEnvelope[Mod](envelope(tt.payload))
			if !tt.expectedErr {
				assert.NoError(t, err)
				return
			}
			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.ErrorIs(t, err, errMissingField)
			assert.Equal(t, tt.path, decErr.Path)
		})
	}
}

func TestDecodeStrict_MissingKeys(t *testing.T) {
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(loadFixture(t, "mod.json"), &obj))

	without := func(key string) []byte {
		copied := make(map[string]json.RawMessage, len(obj))
		for k, v := range obj {
			if k != key {
				copied[k] = v
			}
		}
		out, err := json.Marshal(copied)
		require.NoError(t, err)
		return out
	}

	_, _, err := decodeEnvelope[Mod](envelope(without("slug")))
	assert.ErrorIs(t, err, errMissingField)

	_, _, err = decodeEnvelope[Mod](envelope(without("allowModDistribution")))
	assert.NoError(t, err)

	_, _, err = decodeEnvelope[Mod]([]byte(`{"pagination":null}`))
	assert.ErrorIs(t, err, errMissingField)
}

func TestDecodeStrict_RejectsBadValues(t *testing.T) {
	file := loadFixture(t, "file.json")

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "unknown release type", payload: withField(t, file, "releaseType", 4)},
		{name: "unknown file status", payload: withField(t, file, "fileStatus", 0)},
		{name: "id as string", payload: withField(t, file, "id", "3606078")},
		{name: "relative download url", payload: withField(t, file, "downloadUrl", "/files/3606/78/a.jar")},
		{name: "bad file date", payload: withField(t, file, "fileDate", "yesterday")},
		{name: "null list item", payload: withField(t, file, "hashes", []any{nil})},
		{
			name:    "unknown hash algo",
			payload: withField(t, file, "hashes", []any{map[string]any{"value": "abc", "algo": 3}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeEnvelope[File](envelope(tt.payload))
			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr, "payload %s", tt.payload)
		})
	}
}

func TestDecodeStrict_UnknownLoaderCode(t *testing.T) {
	index := []byte(`{"gameVersion":"1.21.1","fileId":1,"filename":"a.jar","releaseType":1,"modLoader":6}`)
	_, _, err := decodeEnvelope[FileIndex](envelope(index))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, err.Error(), "mod loader type")
}

func TestDecodeError_Path(t *testing.T) {
	file := loadFixture(t, "file.json")
	payload := withField(t, file, "hashes", []any{
		map[string]any{"value": "abc", "algo": 1},
		map[string]any{"value": "abc", "algo": 1, "extra": true},
	})

	_, _, err := decodeEnvelope[File](envelope(payload))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "data.hashes[1].extra", decErr.Path)
	assert.Contains(t, err.Error(), "data.hashes[1].extra")
}
