// Package spotify wraps the Spotify Web API for artist and track search.
// Authentication uses the client-credentials grant; the oauth2 token source
// caches the app token until it expires.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultAPIURL   = "https://api.spotify.com/v1"

	defaultLimit = 5
)

// ErrNotConfigured is returned when client credentials are missing.
var ErrNotConfigured = errors.New("spotify credentials not configured")

// Result is one search hit in the shape the frontend autocomplete expects.
type Result struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Display  string `json:"display"`
	Image    string `json:"image,omitempty"`
	Subtitle string `json:"subtitle"`
}

// Client searches the Spotify catalog.
type Client struct {
	httpClient *http.Client
	apiURL     string
	configured bool
}

// New builds a Client. tokenURL and apiURL are overridable for tests; pass
// "" for the real endpoints.
func New(clientID, clientSecret, tokenURL, apiURL string) *Client {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if clientID == "" || clientSecret == "" {
		return &Client{apiURL: apiURL}
	}

	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 10 * time.Second

	return &Client{httpClient: httpClient, apiURL: apiURL, configured: true}
}

// Configured reports whether credentials are available.
func (c *Client) Configured() bool { return c.configured }

// Search queries the catalog for artists or tracks. kind must be "artist"
// or "track".
func (c *Client) Search(ctx context.Context, query, kind string, limit int) ([]Result, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	q := url.Values{
		"q":     {query},
		"type":  {kind},
		"limit": {strconv.Itoa(limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("spotify search returned %d: %s", resp.StatusCode, body)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode spotify response: %w", err)
	}

	switch kind {
	case "artist":
		return mapArtists(payload.Artists.Items), nil
	case "track":
		return mapTracks(payload.Tracks.Items), nil
	default:
		return nil, fmt.Errorf("unsupported search type %q", kind)
	}
}

type image struct {
	URL string `json:"url"`
}

type artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []image  `json:"images"`
}

type track struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []image `json:"images"`
	} `json:"album"`
}

type searchResponse struct {
	Artists struct {
		Items []artist `json:"items"`
	} `json:"artists"`
	Tracks struct {
		Items []track `json:"items"`
	} `json:"tracks"`
}

// smallestImage picks the last image; Spotify orders them largest first.
func smallestImage(images []image) string {
	if len(images) == 0 {
		return ""
	}
	return images[len(images)-1].URL
}

func mapArtists(items []artist) []Result {
	out := make([]Result, 0, len(items))
	for _, a := range items {
		subtitle := "Artist"
		if len(a.Genres) > 0 {
			genres := a.Genres
			if len(genres) > 2 {
				genres = genres[:2]
			}
			titled := make([]string, len(genres))
			for i, g := range genres {
				titled[i] = titleCase(g)
			}
			subtitle = strings.Join(titled, " • ")
		}
		out = append(out, Result{
			ID:       a.ID,
			Name:     a.Name,
			Display:  a.Name,
			Image:    smallestImage(a.Images),
			Subtitle: subtitle,
		})
	}
	return out
}

func mapTracks(items []track) []Result {
	out := make([]Result, 0, len(items))
	for _, t := range items {
		names := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			names = append(names, a.Name)
		}
		subtitle := "Song"
		if len(names) > 0 {
			subtitle = strings.Join(names, ", ")
		}
		out = append(out, Result{
			ID:       t.ID,
			Name:     t.Name,
			Display:  t.Name,
			Image:    smallestImage(t.Album.Images),
			Subtitle: subtitle,
		})
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
