package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
)

// DiscussionService appends to the per-project comment log.
type DiscussionService struct {
	store  store.Store
	logger *zap.Logger
}

func NewDiscussionService(st store.Store, logger *zap.Logger) *DiscussionService {
	return &DiscussionService{store: st, logger: logger}
}

// AddComment appends a comment, snapshotting the author's display name at
// write time.
func (s *DiscussionService) AddComment(ctx context.Context, projectID int64, author *model.UserProfile, comment string) (*model.DiscussionEntry, error) {
	const op = "discussion.add_comment"

	if strings.TrimSpace(comment) == "" {
		return nil, apperr.New(apperr.CodeValidation, op, projectID, "comment is required")
	}

	entry := &model.DiscussionEntry{
		AuthorID:   author.UserID,
		AuthorName: author.Name,
		Comment:    comment,
	}
	err := s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		return tx.AddDiscussion(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
