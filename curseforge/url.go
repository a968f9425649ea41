package curseforge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// apiBaseURL is the v1 API root. It is parsed once and never modified.
var apiBaseURL = mustParseURL("https://api.curseforge.com/v1/")

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// URL is an absolute URL field of a remote record.
type URL struct {
	*url.URL
}

// ParseURL parses raw and requires it to be absolute.
func ParseURL(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, &DecodeError{Text: raw, Err: err}
	}
	if !u.IsAbs() {
		return URL{}, &DecodeError{Text: raw, Err: fmt.Errorf("url is not absolute")}
	}
	return URL{URL: u}, nil
}

func (u URL) String() string {
	if u.URL == nil {
		return ""
	}
	return u.URL.String()
}

func (u *URL) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Text: string(data), Err: fmt.Errorf("url must be a string: %w", err)}
	}
	parsed, err := ParseURL(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u URL) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// buildURL joins path segments onto base and sets the raw query.
func buildURL(base *url.URL, query string, segments ...string) (*url.URL, error) {
	if base == nil {
		return nil, &URLBuildError{Segments: segments, Err: fmt.Errorf("base url is nil")}
	}
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || strings.Contains(seg, "/") {
			return nil, &URLBuildError{Segments: segments, Err: fmt.Errorf("invalid path segment %q", seg)}
		}
	}
	u := base.JoinPath(segments...)
	u.RawQuery = query
	return u, nil
}
