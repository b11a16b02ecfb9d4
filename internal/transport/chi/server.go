// Package chi implements the HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/content"
	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/logger"
	"github.com/hemoconnect/hemoconnect/internal/matching"
	"github.com/hemoconnect/hemoconnect/internal/search"
)

// pinger checks database connectivity for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP handlers.
type Server struct {
	content  *content.Service
	search   *search.Service
	matching *matching.Service
	db       pinger
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	contentSvc *content.Service,
	searchSvc *search.Service,
	matchingSvc *matching.Service,
	db pinger,
	logger *zap.Logger,
) *Server {
	return &Server{
		content:  contentSvc,
		search:   searchSvc,
		matching: matchingSvc,
		db:       db,
		logger:   logger,
	}
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/posts", s.handleCreatePost)
		r.Post("/posts/{postID}/comments", s.handleCreateComment)
		r.Post("/posts/{postID}/summary/refresh", s.handleRefreshSummary)
		r.Get("/search", s.handleSearch)
		r.Get("/matches", s.handleMatches)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unhealthy", "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPostRequest struct {
	AuthorID string   `json:"author_id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags,omitempty"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if strings.TrimSpace(req.AuthorID) == "" ||
		strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "author_id, title and body are required")
		return
	}

	post, err := s.content.SubmitPost(r.Context(), req.AuthorID, req.Title, req.Body, req.Tags)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

type createCommentRequest struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if strings.TrimSpace(req.AuthorID) == "" || strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "author_id and body are required")
		return
	}

	comment, err := s.content.SubmitComment(r.Context(), postID, req.AuthorID, req.Body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (s *Server) handleRefreshSummary(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	force := r.URL.Query().Get("force") == "true"

	summary, err := s.content.RefreshSummary(r.Context(), postID, force)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{PostID: postID, Summary: summary})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, method, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchResponse(query, method, results))
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profile")
	if strings.TrimSpace(profileID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "profile query parameter is required")
		return
	}

	matches, err := s.matching.FindMatches(r.Context(), profileID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchesResponse(profileID, matches))
}

// writeServiceError maps domain sentinels to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests for this action")
	case errors.Is(err, domain.ErrContentRejected):
		writeError(w, http.StatusUnprocessableEntity, "content_rejected", "content violates community guidelines")
	case errors.Is(err, domain.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "bad_request", "query must not be empty")
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// --- Response DTOs ---

type postResponse struct {
	ID               string   `json:"id"`
	AuthorID         string   `json:"author_id"`
	Title            string   `json:"title"`
	Body             string   `json:"body"`
	Excerpt          string   `json:"excerpt,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	AutoTags         []string `json:"auto_tags,omitempty"`
	ModerationStatus string   `json:"moderation_status"`
	Summary          string   `json:"summary,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

func toPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:               p.ID,
		AuthorID:         p.AuthorID,
		Title:            p.Title,
		Body:             p.Body,
		Excerpt:          p.Excerpt,
		Tags:             p.Tags,
		AutoTags:         p.AutoTags,
		ModerationStatus: string(p.ModerationStatus),
		Summary:          p.Summary,
		CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type commentResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type summaryResponse struct {
	PostID  string `json:"post_id"`
	Summary string `json:"summary"`
}

type searchResultItem struct {
	Post      postResponse `json:"post"`
	Relevance *float64     `json:"relevance,omitempty"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Method  string             `json:"method"`
	Results []searchResultItem `json:"results"`
}

func toSearchResponse(query string, method domain.SearchMethod, results []domain.SearchResult) searchResponse {
	items := make([]searchResultItem, 0, len(results))
	for _, res := range results {
		p := res.Post
		items = append(items, searchResultItem{
			Post:      toPostResponse(&p),
			Relevance: res.Relevance,
		})
	}
	return searchResponse{Query: query, Method: string(method), Results: items}
}

type matchItem struct {
	CandidateID string   `json:"candidate_id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	RuleScore   int      `json:"rule_score"`
	Similarity  *float64 `json:"similarity,omitempty"`
	FinalScore  int      `json:"final_score"`
	Method      string   `json:"method"`
}

type matchesResponse struct {
	ProfileID string      `json:"profile_id"`
	Matches   []matchItem `json:"matches"`
}

func toMatchesResponse(profileID string, candidates []domain.ScoredCandidate) matchesResponse {
	items := make([]matchItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, matchItem{
			CandidateID: c.CandidateID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			RuleScore:   c.RuleScore,
			Similarity:  c.Similarity,
			FinalScore:  c.FinalScore,
			Method:      string(c.Method),
		})
	}
	return matchesResponse{ProfileID: profileID, Matches: items}
}
