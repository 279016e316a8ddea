package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"approvalflow/internal/handler"
	"approvalflow/internal/service"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	reviewHandler *handler.ReviewHandler,
	executionHandler *handler.ExecutionHandler,
	jwtSecret string,
	revoker service.TokenRevoker,
	directory *service.DirectoryService,
	logger *zap.Logger,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret, revoker, directory, logger))
	{
		auth.POST("/logout", authHandler.Logout)

		auth.GET("/projects", projectHandler.List)
		auth.POST("/projects", projectHandler.Submit)
		auth.GET("/projects/:id", projectHandler.Detail)

		auth.POST("/projects/:id/review", reviewHandler.RecordDecision)
		auth.POST("/projects/:id/decision", reviewHandler.DirectorDecision)

		auth.POST("/projects/:id/start", executionHandler.Start)
		auth.POST("/projects/:id/complete", executionHandler.Complete)
		auth.POST("/projects/:id/milestones", executionHandler.AddMilestone)
		auth.PUT("/projects/:id/milestones/:mid/status", executionHandler.UpdateMilestoneStatus)
		auth.POST("/projects/:id/issues", executionHandler.ReportIssue)
		auth.POST("/projects/:id/issues/:iid/resolve", executionHandler.ResolveIssue)
		auth.POST("/projects/:id/updates", executionHandler.PostUpdate)
		auth.POST("/projects/:id/discussions", executionHandler.AddDiscussion)
		auth.PUT("/projects/:id/risks/:category", executionHandler.UpdateRisk)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
