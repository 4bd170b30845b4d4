package http

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"linktrack/internal/analytics/enrichment"
	"linktrack/internal/analytics/usecase"
	"linktrack/internal/conf"
	"linktrack/pkg/problemdetails"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultSessionCookie = "_session_id"
	defaultVisitorCookie = "visitor_id"
	visitorCookieMaxAge  = 2 * 365 * 24 * time.Hour

	defaultRecentLimit = 50
	maxRecentLimit     = 50
)

// ClickTracker records a click synchronously.
type ClickTracker interface {
	TrackClick(ctx context.Context, in usecase.ClickInput) error
}

// ClickSubmitter queues a click for background tracking.
type ClickSubmitter interface {
	Submit(in usecase.ClickInput) error
}

// StatsProvider serves analytics for one short URL.
type StatsProvider interface {
	ComprehensiveStats(ctx context.Context, shortURLID uint64, days int) *usecase.StatsReport
	RecentClicks(ctx context.Context, shortURLID uint64, limit int) []usecase.Row
}

type Handler struct {
	shortURLs     usecase.ShortURLRepository
	tracker       ClickTracker
	dispatcher    ClickSubmitter
	stats         StatsProvider
	sessionCookie string
	visitorCookie string
	log           *log.Helper
}

func NewHandler(
	shortURLs usecase.ShortURLRepository,
	tracker ClickTracker,
	dispatcher ClickSubmitter,
	stats StatsProvider,
	c *conf.Tracking,
	logger log.Logger,
) *Handler {
	h := &Handler{
		shortURLs:     shortURLs,
		tracker:       tracker,
		dispatcher:    dispatcher,
		stats:         stats,
		sessionCookie: defaultSessionCookie,
		visitorCookie: defaultVisitorCookie,
		log:           log.NewHelper(log.With(logger, "module", "delivery/http")),
	}
	if c != nil {
		if c.SessionCookie != "" {
			h.sessionCookie = c.SessionCookie
		}
		if c.VisitorCookie != "" {
			h.visitorCookie = c.VisitorCookie
		}
	}
	return h
}

// TrackRequest is the body of a click beacon, sent as JSON or as a form.
type TrackRequest struct {
	URLType       string `json:"url_type"`
	RedirectedURL string `json:"redirected_url"`
	VisitorID     string `json:"visitor_id"`
}

// TrackClick handles POST /api/track/{short_uri}
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shortURL, err := h.shortURLs.FindByShortURI(ctx, mux.Vars(r)["short_uri"])
	if err != nil {
		if errors.Is(err, usecase.ErrShortURLNotFound) {
			writeTrackFailure(w, http.StatusNotFound, "Short URL not found")
			return
		}
		h.log.WithContext(ctx).Errorf("failed to load short url: %v", err)
		writeTrackFailure(w, http.StatusInternalServerError, "Tracking failed")
		return
	}

	req, err := parseTrackRequest(r)
	if errors.Is(err, errInvalidParameters) {
		writeTrackFailure(w, http.StatusUnprocessableEntity, "Invalid parameters")
		return
	}
	if err != nil {
		writeTrackFailure(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	urlType := usecase.URLType(req.URLType)
	if !urlType.Valid() || strings.TrimSpace(req.RedirectedURL) == "" {
		writeTrackFailure(w, http.StatusUnprocessableEntity, "Invalid parameters")
		return
	}

	in := h.clickInput(r, shortURL, urlType, req.RedirectedURL)
	in.VisitorID = req.VisitorID

	if err := h.tracker.TrackClick(ctx, in); err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			writeTrackFailure(w, http.StatusUnprocessableEntity, "Invalid parameters")
			return
		}
		writeTrackFailure(w, http.StatusInternalServerError, "Tracking failed")
		return
	}

	writeJSON(w, http.StatusOK, TrackResponse{Success: true, Message: "Click tracked successfully"})
}

var (
	errMalformedBody     = errors.New("malformed request body")
	errInvalidParameters = errors.New("invalid parameters")
)

// parseTrackRequest reads the beacon body. Syntactically broken JSON yields
// errMalformedBody; well-formed JSON with non-string fields yields
// errInvalidParameters.
func parseTrackRequest(r *http.Request) (*TrackRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeTrackJSON(r)
	}

	if err := r.ParseForm(); err != nil {
		return nil, errMalformedBody
	}
	return &TrackRequest{
		URLType:       r.Form.Get("url_type"),
		RedirectedURL: r.Form.Get("redirected_url"),
		VisitorID:     r.Form.Get("visitor_id"),
	}, nil
}

func decodeTrackJSON(r *http.Request) (*TrackRequest, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errInvalidParameters
		}
		return nil, errMalformedBody
	}

	var req TrackRequest
	for key, dst := range map[string]*string{
		"url_type":       &req.URLType,
		"redirected_url": &req.RedirectedURL,
		"visitor_id":     &req.VisitorID,
	} {
		switch v := body[key].(type) {
		case nil:
		case string:
			*dst = v
		default:
			return nil, errInvalidParameters
		}
	}
	return &req, nil
}

// Redirect handles GET and HEAD /r/{short_uri}. Only GET is tracked, so link
// previews do not count as clicks. Tracking problems are logged and never
// change the response.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shortURL, err := h.shortURLs.FindByShortURI(ctx, mux.Vars(r)["short_uri"])
	if err != nil {
		if errors.Is(err, usecase.ErrShortURLNotFound) {
			writeProblem(w, problemdetails.New(
				http.StatusNotFound,
				problemdetails.TypeNotFound,
				"Not Found",
				"Short URL not found",
			))
			return
		}
		h.log.WithContext(ctx).Errorf("failed to load short url: %v", err)
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Failed to resolve short URL",
		))
		return
	}

	urlType := usecase.URLTypePrimary
	if r.URL.Query().Get("to") == string(usecase.URLTypeSecondary) {
		if _, ok := shortURL.Destination(usecase.URLTypeSecondary); ok {
			urlType = usecase.URLTypeSecondary
		}
	}
	destination, _ := shortURL.Destination(urlType)

	if r.Method == http.MethodHead {
		http.Redirect(w, r, destination, http.StatusFound)
		return
	}

	if err := h.shortURLs.IncrementClickCount(ctx, shortURL.ID); err != nil {
		h.log.WithContext(ctx).Warnf("failed to increment click count for %q: %v", shortURL.ShortURI, err)
	}

	in := h.clickInput(r, shortURL, urlType, destination)
	in.VisitorID = h.ensureVisitor(w, r)
	if err := h.dispatcher.Submit(in); err != nil {
		h.log.WithContext(ctx).Debugf("click for %q not queued: %v", shortURL.ShortURI, err)
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

// ensureVisitor returns the visitor id cookie, issuing a new one when absent.
func (h *Handler) ensureVisitor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(h.visitorCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) clickInput(r *http.Request, shortURL *usecase.ShortURL, urlType usecase.URLType, destination string) usecase.ClickInput {
	in := usecase.ClickInput{
		ShortURL:      shortURL,
		URLType:       urlType,
		RedirectedURL: destination,
		UserID:        shortURL.UserID,
		UserAgent:     enrichment.UserAgent(r),
		IPAddress:     enrichment.ClientIP(r),
		Referrer:      r.Referer(),
		Query:         r.URL.Query(),
	}
	if c, err := r.Cookie(h.sessionCookie); err == nil {
		in.SessionID = c.Value
	}
	return in
}

// GetStats handles GET /api/short_urls/{id}/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	shortURL, ok := h.loadShortURL(w, r)
	if !ok {
		return
	}

	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Query Parameters",
			"days must be a positive integer",
		))
		return
	}

	report := h.stats.ComprehensiveStats(r.Context(), shortURL.ID, days)
	writeJSON(w, http.StatusOK, StatsResponse{
		ShortURL:    toShortURLResponse(shortURL),
		Days:        days,
		StatsReport: report,
	})
}

// GetRecentClicks handles GET /api/short_urls/{id}/clicks
func (h *Handler) GetRecentClicks(w http.ResponseWriter, r *http.Request) {
	shortURL, ok := h.loadShortURL(w, r)
	if !ok {
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	clicks := h.stats.RecentClicks(r.Context(), shortURL.ID, limit)
	writeJSON(w, http.StatusOK, RecentClicksResponse{
		ShortURL: toShortURLResponse(shortURL),
		Clicks:   clicks,
	})
}

func (h *Handler) loadShortURL(w http.ResponseWriter, r *http.Request) (*usecase.ShortURL, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Path Parameters",
			"id must be a positive integer",
		))
		return nil, false
	}

	shortURL, err := h.shortURLs.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrShortURLNotFound) {
			writeProblem(w, problemdetails.New(
				http.StatusNotFound,
				problemdetails.TypeNotFound,
				"Not Found",
				"Short URL not found",
			))
			return nil, false
		}
		h.log.WithContext(r.Context()).Errorf("failed to load short url %d: %v", id, err)
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Failed to load short URL",
		))
		return nil, false
	}
	return shortURL, true
}

// parseDays parses the days query parameter
func parseDays(s string) (int, error) {
	if s == "" {
		return usecase.DefaultDays, nil
	}
	days, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if days < 1 {
		return 0, errors.New("days must be positive")
	}
	return days, nil
}

// parseLimit parses the limit query parameter
func parseLimit(s string) int {
	if s == "" {
		return defaultRecentLimit
	}
	limit, err := strconv.Atoi(s)
	if err != nil {
		return defaultRecentLimit
	}

	// Clamp to 1-50
	if limit < 1 {
		return 1
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
