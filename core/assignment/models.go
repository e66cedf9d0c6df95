package assignment

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Kind describes what a work item asks of the student; orthogonal to Tier.
type Kind string

const (
	KindCheck     Kind = "CHECK"
	KindTask      Kind = "TASK"
	KindSpecial   Kind = "SPECIAL"
	KindChallenge Kind = "CHALLENGE"
)

// Tier is the lifecycle category governing how a work item is superseded.
type Tier string

const (
	// TierProgress is a slowly-changing per-subject pointer; at most one
	// current item per (student, subject).
	TierProgress Tier = "PROGRESS"
	// TierMethodology and TierGrowth are class-wide daily boards, wholly
	// replaced on every publish.
	TierMethodology Tier = "METHODOLOGY"
	TierGrowth      Tier = "GROWTH"
	// TierPersonalized items are replaced only for students explicitly named
	// in a publish.
	TierPersonalized Tier = "PERSONALIZED"
)

// ActionTiers are the class-wide tiers swept wholesale on every publish.
var ActionTiers = []Tier{TierMethodology, TierGrowth}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusReviewed  Status = "REVIEWED"
	StatusCompleted Status = "COMPLETED"
)

var AllStatuses = []Status{StatusPending, StatusSubmitted, StatusReviewed, StatusCompleted}

func ValidStatus(s Status) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type (
	// ProgressContent is the payload of a TierProgress item: an informational
	// pointer to where the class currently stands in a subject.
	ProgressContent struct {
		Subject string `json:"subject"`
		Text    string `json:"text"`
	}

	// TaskContent is the payload of Methodology/Growth items.
	TaskContent struct {
		Category    string `json:"category,omitempty"`
		Subcategory string `json:"subcategory,omitempty"`
		Note        string `json:"note,omitempty"`
	}

	// PersonalizedContent is the payload of TierPersonalized items.
	PersonalizedContent struct {
		TaskContent
		TargetStudentID string `json:"target_student_id"`
	}

	// Content is a tagged union keyed by the item's Tier: exactly one member
	// is set. It serializes to the work_item.content jsonb column.
	Content struct {
		TaskDate     string               `json:"task_date"` // YYYY-MM-DD in the server timezone
		PublisherID  string               `json:"publisher_id,omitempty"`
		Progress     *ProgressContent     `json:"progress,omitempty"`
		Task         *TaskContent         `json:"task,omitempty"`
		Personalized *PersonalizedContent `json:"personalized,omitempty"`
	}
)

// WorkItem is the atomic unit of assigned work. Items are never physically
// deleted: supersession only flips IsCurrent to false, so the full history
// remains replayable.
type WorkItem struct {
	ID           string    `json:"id"`
	SchoolID     string    `json:"school_id"`
	StudentID    string    `json:"student_id"`
	PlanID       string    `json:"plan_id,omitempty"` // empty for ad-hoc items
	Kind         Kind      `json:"kind"`
	Tier         Tier      `json:"tier"`
	Title        string    `json:"title"`
	Content      Content   `json:"content"`
	Subject      string    `json:"subject,omitempty"`
	Status       Status    `json:"status"`
	IsCurrent    bool      `json:"is_current"`
	ExpAwarded   int       `json:"exp_awarded"`
	AttemptCount int       `json:"attempt_count"`
	CreatedAt    time.Time `json:"created_at"`             // UTC
	SubmittedAt  time.Time `json:"submitted_at,omitempty"` // UTC; zero until submitted
	UpdatedAt    time.Time `json:"updated_at"`             // UTC
}

// TaskDef is an incoming task definition, as supplied by a publish request or
// an ad-hoc creation call.
type TaskDef struct {
	Kind        Kind   `json:"kind" validate:"omitempty,itemkind"`
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Note        string `json:"note"`
	Exp         int    `json:"exp" validate:"gte=0"`
}

// ArchiveFilter selects the current items to archive in one sweep.
// Zero-valued fields are not applied; StudentIDs and Tiers are required.
type ArchiveFilter struct {
	SchoolID   string
	StudentIDs []string
	Tiers      []Tier
	Subject    string // Progress sweeps only
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	SchoolID    string
	StudentID   string
	PlanID      string
	Tiers       []Tier
	OnlyCurrent bool
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
	Ordering    []core.DBOrdering
}

// BatchResult aggregates per-item outcomes of a best-effort batch operation.
type BatchResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors,omitempty"`
}
