package http

import (
	"encoding/json"
	"net/http"
	"time"

	"linktrack/internal/analytics/usecase"
	"linktrack/pkg/problemdetails"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeProblem writes an RFC 7807 Problem Details response
func writeProblem(w http.ResponseWriter, problem *problemdetails.ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

func writeTrackFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, TrackResponse{Success: false, Error: message})
}

// TrackResponse is the result of a click beacon.
type TrackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ShortURLResponse identifies the short URL a stats response is about.
type ShortURLResponse struct {
	ID         uint64    `json:"id"`
	ShortURI   string    `json:"short_uri"`
	URL1       string    `json:"url1"`
	URL2       *string   `json:"url2"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatsResponse embeds the report fields next to the short URL.
type StatsResponse struct {
	ShortURL ShortURLResponse `json:"short_url"`
	Days     int              `json:"days"`
	*usecase.StatsReport
}

// RecentClicksResponse holds the newest raw click rows.
type RecentClicksResponse struct {
	ShortURL ShortURLResponse `json:"short_url"`
	Clicks   []usecase.Row    `json:"clicks"`
}

func toShortURLResponse(s *usecase.ShortURL) ShortURLResponse {
	return ShortURLResponse{
		ID:         s.ID,
		ShortURI:   s.ShortURI,
		URL1:       s.URL1,
		URL2:       s.URL2,
		ClickCount: s.ClickCount,
		CreatedAt:  s.CreatedAt,
	}
}
