package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/wanderdate/wanderdate/internal/spotify"
)

// SpotifySearchHandler proxies artist/track autocomplete searches so the
// frontend never sees the Spotify credentials.
func SpotifySearchHandler(client *spotify.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			respondError(w, http.StatusBadRequest, `Query parameter "q" is required`)
			return
		}
		kind := r.URL.Query().Get("type")
		if kind != "artist" && kind != "track" {
			respondError(w, http.StatusBadRequest, `Query parameter "type" is required (artist or track)`)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		results, err := client.Search(r.Context(), q, kind, limit)
		if err != nil {
			if errors.Is(err, spotify.ErrNotConfigured) {
				respondError(w, http.StatusServiceUnavailable, "Unable to authenticate with Spotify")
				return
			}
			log.Printf("❌ spotify search: %v", err)
			respondError(w, http.StatusBadGateway, "Spotify search failed")
			return
		}
		respondJSON(w, http.StatusOK, results)
	}
}
