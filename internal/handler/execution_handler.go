package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"approvalflow/internal/model"
	"approvalflow/internal/service"
)

// ExecutionHandler serves the post-approval tracking surface: lifecycle,
// milestones, issues, updates, discussions and risk edits.
type ExecutionHandler struct {
	execution  *service.ExecutionService
	risk       *service.RiskService
	discussion *service.DiscussionService
	logger     *zap.Logger
}

func NewExecutionHandler(exec *service.ExecutionService, risk *service.RiskService, disc *service.DiscussionService, logger *zap.Logger) *ExecutionHandler {
	return &ExecutionHandler{execution: exec, risk: risk, discussion: disc, logger: logger}
}

func (h *ExecutionHandler) Start(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.execution.Start(c.Request.Context(), projectID, profile.UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Start: success", zap.Int64("project_id", projectID))
	c.JSON(http.StatusOK, gin.H{"status": model.StatusInProgress})
}

func (h *ExecutionHandler) Complete(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.execution.Complete(c.Request.Context(), projectID, profile.UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Complete: success", zap.Int64("project_id", projectID))
	c.JSON(http.StatusOK, gin.H{"status": model.StatusCompleted})
}

func (h *ExecutionHandler) AddMilestone(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var in service.MilestoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	m, err := h.execution.AddMilestone(c.Request.Context(), projectID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"milestone": m})
}

func (h *ExecutionHandler) UpdateMilestoneStatus(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	milestoneID, ok := parseID(c, "mid")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	var in struct {
		Status model.MilestoneStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.execution.UpdateMilestoneStatus(c.Request.Context(), projectID, milestoneID, in.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ExecutionHandler) ReportIssue(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var in struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	issue, err := h.execution.ReportIssue(c.Request.Context(), projectID, in.Description, profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"issue": issue})
}

func (h *ExecutionHandler) ResolveIssue(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	issueID, ok := parseID(c, "iid")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return
	}

	var in struct {
		Resolution string `json:"resolution"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.execution.ResolveIssue(c.Request.Context(), projectID, issueID, in.Resolution); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ExecutionHandler) PostUpdate(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var in struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	u, err := h.execution.PostUpdate(c.Request.Context(), projectID, in.Text, profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"update": u})
}

func (h *ExecutionHandler) AddDiscussion(c *gin.Context) {
	profile := profileFrom(c)
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var in struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.discussion.AddComment(c.Request.Context(), projectID, profile, in.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": entry})
}

func (h *ExecutionHandler) UpdateRisk(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	category := model.RiskCategory(c.Param("category"))

	var in struct {
		Risk       model.RiskLevel `json:"risk"`
		Mitigation string          `json:"mitigation"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.risk.UpdateEntry(c.Request.Context(), projectID, category, in.Risk, in.Mitigation); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
