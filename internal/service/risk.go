package service

import (
	"context"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
)

// RiskService maintains the per-project risk register. Entries are editable
// independently of the workflow stage.
type RiskService struct {
	store  store.Store
	logger *zap.Logger
}

func NewRiskService(st store.Store, logger *zap.Logger) *RiskService {
	return &RiskService{store: st, logger: logger}
}

// UpdateEntry replaces the risk level and mitigation text of one of the
// four fixed category entries.
func (s *RiskService) UpdateEntry(ctx context.Context, projectID int64, category model.RiskCategory, risk model.RiskLevel, mitigation string) error {
	const op = "risk.update_entry"

	if !category.Valid() {
		return apperr.New(apperr.CodeValidation, op, projectID, "unknown risk category %q", category)
	}
	if !risk.Valid() {
		return apperr.New(apperr.CodeValidation, op, projectID, "unknown risk level %q", risk)
	}

	return s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		return tx.UpdateRisk(ctx, &model.RiskEntry{
			ProjectID:  projectID,
			Category:   category,
			Risk:       risk,
			Mitigation: mitigation,
		})
	})
}
