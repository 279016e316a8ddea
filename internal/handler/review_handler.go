package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"approvalflow/internal/model"
	"approvalflow/internal/service"
)

// ReviewHandler serves departmental review decisions and the director gate.
type ReviewHandler struct {
	review   *service.ReviewService
	director *service.DirectorService
	logger   *zap.Logger
}

func NewReviewHandler(review *service.ReviewService, director *service.DirectorService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{review: review, director: director, logger: logger}
}

func (h *ReviewHandler) RecordDecision(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var in struct {
		Decision model.ReviewStatus `json:"decision"`
		Comment  string             `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := h.review.RecordDecision(c.Request.Context(), projectID, profile.UserID, in.Decision, in.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("RecordDecision: success",
		zap.Int64("project_id", projectID),
		zap.Int64("reviewer_id", profile.UserID),
		zap.String("decision", string(in.Decision)),
		zap.String("outcome", string(outcome)),
	)
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

func (h *ReviewHandler) DirectorDecision(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var in struct {
		Decision model.ProjectStatus `json:"decision"`
		Comment  string              `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.director.Decide(c.Request.Context(), projectID, profile.UserID, in.Decision, in.Comment); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("DirectorDecision: success",
		zap.Int64("project_id", projectID),
		zap.Int64("director_id", profile.UserID),
		zap.String("decision", string(in.Decision)),
	)
	c.JSON(http.StatusOK, gin.H{"status": in.Decision})
}
