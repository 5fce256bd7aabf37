// Package search queries the Maven Central search API to resolve a
// group:artifact to its latest published version for `jargo add` (spec §6
// "Maven Central HTTP ... Search API").
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jargo-build/jargo/internal/jerr"
)

const defaultBaseURL = "https://search.maven.org/solrsearch/select"

// Client queries the Maven Central search API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client with sane defaults.
func NewClient() *Client {
	return &Client{BaseURL: defaultBaseURL, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type solrResponse struct {
	Response struct {
		Docs []struct {
			Group   string `json:"g"`
			Artifac string `json:"a"`
			Version string `json:"latestVersion"`
		} `json:"docs"`
	} `json:"response"`
}

// LatestVersion returns the newest published version of group:artifact.
func (c *Client) LatestVersion(ctx context.Context, group, artifact string) (string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("g:%s AND a:%s", group, artifact))
	q.Set("rows", "1")
	q.Set("wt", "json")

	coord := group + ":" + artifact
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", &jerr.NetworkError{Coordinate: coord, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &jerr.NetworkError{Coordinate: coord, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &jerr.NetworkError{Coordinate: coord, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var parsed solrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &jerr.NetworkError{Coordinate: coord, Err: err}
	}
	if len(parsed.Response.Docs) == 0 {
		return "", &jerr.MissingArtifactError{Coordinate: coord}
	}
	return parsed.Response.Docs[0].Version, nil
}
