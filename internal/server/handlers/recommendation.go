// internal/server/handlers/recommendation.go

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"creatorpulse/internal/domain/insight"
	"creatorpulse/internal/domain/post"
	"creatorpulse/internal/service/recommendation"
)

// RecommendationService is what the HTTP layer needs from the recommendation service
type RecommendationService interface {
	Get(ctx context.Context, userID string) (*insight.Recommendation, error)
	ClearCache(ctx context.Context, userID string) error
	Analyze(platforms map[string][]insight.RawRecord) insight.Report
	Upload(ctx context.Context, userID, platform string, items []insight.RawRecord) (int, error)
	DeleteData(ctx context.Context, userID string) (int64, error)
	Overview(ctx context.Context, userID string) (*post.Overview, error)
}

var _ RecommendationService = (*recommendation.Service)(nil)

// UploadRequest is the body of an upload
type UploadRequest struct {
	Platform string              `json:"platform" validate:"max=64"`
	Items    []insight.RawRecord `json:"items" validate:"required,min=1,max=10000"`
}

// AnalyzeRequest is the body of a stateless analysis
type AnalyzeRequest struct {
	Platforms map[string][]insight.RawRecord `json:"platforms" validate:"max=32,dive,max=10000"`
}

// RecommendationHandler handles recommendation, upload and analytics requests
type RecommendationHandler struct {
	service RecommendationService
	logger  *logrus.Entry
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service RecommendationService, logger *logrus.Entry) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  logger,
	}
}

// Upload stores a batch of platform posts for the caller
func (h *RecommendationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req UploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	inserted, err := h.service.Upload(r.Context(), userID, req.Platform, req.Items)
	if err != nil {
		h.handleServiceError(w, "Failed to store upload", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"inserted": inserted,
	})
}

// DeleteUploads removes all of the caller's stored posts
func (h *RecommendationHandler) DeleteUploads(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteData(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, "Failed to delete uploads", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

// GetRecommendations returns the caller's recommendation report
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, "Failed to generate recommendations", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"recommendation": rec,
		"cached":         rec.Cached,
	})
}

// ClearCache drops the caller's cached recommendation
func (h *RecommendationHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.ClearCache(r.Context(), userID); err != nil {
		h.handleServiceError(w, "Failed to clear cache", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// Analyze runs the engine over the posted records and returns the report
func (h *RecommendationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Analyze(req.Platforms))
}

// GetOverview returns aggregate analytics over the caller's uploads
func (h *RecommendationHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, "Failed to build overview", err)
		return
	}

	if overview == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"message":  "No analytics data yet",
			"overview": nil,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"overview": overview,
	})
}

func (h *RecommendationHandler) handleServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, recommendation.ErrMissingUser):
		respondWithError(w, h.logger, http.StatusUnauthorized, "Missing user ID", nil)
	case errors.Is(err, recommendation.ErrInvalidUpload):
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
	default:
		respondWithError(w, h.logger, http.StatusInternalServerError, message, err)
	}
}
