package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"approvalflow/internal/cache"
	"approvalflow/internal/config"
	"approvalflow/internal/db"
	"approvalflow/internal/handler"
	"approvalflow/internal/httpserver"
	"approvalflow/internal/repository"
	"approvalflow/internal/service"
	"approvalflow/pkg/logger"
	"approvalflow/pkg/mq"
	"approvalflow/pkg/outbox"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	zlog := logger.NewLogger()
	defer zlog.Sync()

	ctx := context.Background()

	// 2. Init DB and schema
	dbConn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn, zlog); err != nil {
		zlog.Fatal("schema migration failed", zap.Error(err))
	}

	// 3. Init Redis session revocation
	rdb := cache.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	revoker := cache.NewSessionRevoker(rdb)

	// 4. Init RabbitMQ publisher and outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, zlog)
	go dispatcher.Start(ctx)

	// 5. Init store
	st := repository.New(dbConn, cfg.Workflow.TxRetries, zlog)

	// 6. Init services
	authService := service.NewAuthService(st, revoker, cfg.JWT.Secret, zlog)
	directoryService := service.NewDirectoryService(st, zlog)
	submissionService := service.NewSubmissionService(st, cfg.Workflow.StrictAssignment, zlog)
	reviewService := service.NewReviewService(st, zlog)
	directorService := service.NewDirectorService(st, zlog)
	executionService := service.NewExecutionService(st, zlog)
	riskService := service.NewRiskService(st, zlog)
	discussionService := service.NewDiscussionService(st, zlog)

	// 7. Init handlers
	authHandler := handler.NewAuthHandler(authService, zlog)
	projectHandler := handler.NewProjectHandler(submissionService, directoryService, executionService, zlog)
	reviewHandler := handler.NewReviewHandler(reviewService, directorService, zlog)
	executionHandler := handler.NewExecutionHandler(executionService, riskService, discussionService, zlog)

	// 8. Init router
	router := httpserver.NewRouter(
		authHandler,
		projectHandler,
		reviewHandler,
		executionHandler,
		cfg.JWT.Secret,
		revoker,
		directoryService,
		zlog,
	)

	// 9. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		zlog.Fatal("server start failed", zap.Error(err))
	}
}
