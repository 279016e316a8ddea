package model

import "time"

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewNeedsInfo ReviewStatus = "needs_info"
)

// Decision reports whether the status is a value a reviewer may record.
// Pending is the initial slot state, never a recorded decision.
func (s ReviewStatus) Decision() bool {
	switch s {
	case ReviewApproved, ReviewRejected, ReviewNeedsInfo:
		return true
	}
	return false
}

// ReviewerSlot is one per (project, department), created at submission and
// never added or removed afterward.
type ReviewerSlot struct {
	ProjectID  int64        `json:"project_id"`
	ReviewerID int64        `json:"reviewer_id"`
	Department string       `json:"department"`
	Status     ReviewStatus `json:"status"`
	Comment    string       `json:"comment"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type RiskCategory string

const (
	RiskFinancial   RiskCategory = "financial"
	RiskLegal       RiskCategory = "legal"
	RiskTechnical   RiskCategory = "technical"
	RiskOperational RiskCategory = "operational"
)

// RiskCategories is the fixed set; exactly one RiskEntry per category exists
// for every project.
var RiskCategories = []RiskCategory{RiskFinancial, RiskLegal, RiskTechnical, RiskOperational}

func (c RiskCategory) Valid() bool {
	for _, known := range RiskCategories {
		if c == known {
			return true
		}
	}
	return false
}

type RiskLevel string

const (
	RiskLow         RiskLevel = "Low"
	RiskMedium      RiskLevel = "Medium"
	RiskHigh        RiskLevel = "High"
	RiskNotAssessed RiskLevel = "Not assessed"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskNotAssessed:
		return true
	}
	return false
}

type RiskEntry struct {
	ProjectID  int64        `json:"project_id"`
	Category   RiskCategory `json:"category"`
	Risk       RiskLevel    `json:"risk"`
	Mitigation string       `json:"mitigation"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
