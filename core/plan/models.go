package plan

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

// ScopeTeacherRoster marks a plan published to the publisher's own roster;
// the only scope this engine writes.
const ScopeTeacherRoster = "TEACHER_ROSTER"

type (
	// PlanContent is the structured content column of a plan: the per-subject
	// progress text map plus a record of the publish scope.
	PlanContent struct {
		Progress    map[string]string `json:"progress,omitempty"` // subject -> progress text
		Scope       string            `json:"scope"`
		PublisherID string            `json:"publisher_id"`
	}

	// Plan is one teacher's daily lesson plan submission. Immutable after
	// creation except soft-deactivation and the narrow progress patch.
	Plan struct {
		ID         string      `json:"id"`
		SchoolID   string      `json:"school_id"`
		TeacherID  string      `json:"teacher_id"`
		Title      string      `json:"title"`
		Content    PlanContent `json:"content"`
		TargetDate time.Time   `json:"target_date"`
		IsActive   bool        `json:"is_active"`
		CreatedAt  time.Time   `json:"created_at"` // UTC
		UpdatedAt  time.Time   `json:"updated_at"` // UTC
	}
)

// PersonalizedAssignment names one student and the tasks published only to them.
type PersonalizedAssignment struct {
	StudentID string               `json:"student_id" validate:"required"`
	Tasks     []assignment.TaskDef `json:"tasks" validate:"dive"`
}

// PublishRequest carries one publish call.
type PublishRequest struct {
	SchoolID     string                   `json:"school_id"`
	TeacherID    string                   `json:"teacher_id"`
	Title        string                   `json:"title" validate:"required"`
	Progress     map[string]string        `json:"progress"`
	ClassTasks   []assignment.TaskDef     `json:"class_tasks" validate:"dive"`
	Personalized []PersonalizedAssignment `json:"personalized" validate:"dive"`
	TargetDate   time.Time                `json:"target_date"`
}

func (req *PublishRequest) Validate(validate *validator.Validate) error {
	req.SchoolID = core.CleanString(req.SchoolID)
	req.TeacherID = core.CleanString(req.TeacherID)
	req.Title = core.CleanString(req.Title)
	return validate.Struct(req)
}

// PublishStats summarizes what one publish created and superseded.
type PublishStats struct {
	TotalStudents   int                     `json:"total_students"`
	TasksCreated    int                     `json:"tasks_created"`
	CreatedPerTier  map[assignment.Tier]int `json:"created_per_tier"`
	ArchivedCount   int                     `json:"archived_count"`
	TotalExpAwarded int                     `json:"total_exp_awarded"`
}

// SkippedStudent reports a non-fatal personalized-assignment skip.
type SkippedStudent struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

type PublishResult struct {
	Plan            Plan             `json:"plan"`
	Stats           PublishStats     `json:"stats"`
	AffectedClasses []string         `json:"affected_classes"`
	Skipped         []SkippedStudent `json:"skipped,omitempty"`
}

type QueryFilter struct {
	SchoolID string    `query:"-"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
	Page     int       `query:"page"`
	Limit    int       `query:"limit"`
}

func (qf *QueryFilter) Clean() {
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.Limit < 1 || qf.Limit > 100 {
		qf.Limit = 20
	}
}
