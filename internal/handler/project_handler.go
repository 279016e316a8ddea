package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"approvalflow/internal/service"
)

// ProjectHandler serves submission, listing and detail endpoints.
type ProjectHandler struct {
	submission *service.SubmissionService
	directory  *service.DirectoryService
	execution  *service.ExecutionService
	logger     *zap.Logger
}

func NewProjectHandler(sub *service.SubmissionService, dir *service.DirectoryService, exec *service.ExecutionService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{submission: sub, directory: dir, execution: exec, logger: logger}
}

func (h *ProjectHandler) Submit(c *gin.Context) {
	profile := profileFrom(c)

	var in service.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("Submit: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.submission.Submit(c.Request.Context(), profile, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Submit: success",
		zap.Int64("project_id", p.ID),
		zap.Int64("submitter_id", profile.UserID),
	)
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) List(c *gin.Context) {
	profile := profileFrom(c)

	projects, err := h.directory.ListVisibleProjects(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Detail(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	g, err := h.directory.ProjectDetail(c.Request.Context(), profile, projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":         g,
		"budget_variance": h.execution.Variance(&g.Project),
	})
}
