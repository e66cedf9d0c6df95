package student

import "time"

type Student struct {
	ID         string    `json:"id"`
	SchoolID   string    `json:"school_id"`
	TeacherID  string    `json:"teacher_id"`
	Name       string    `json:"name"`
	ClassLabel string    `json:"class_label"`
	Exp        int       `json:"exp"`
	Points     int       `json:"points"`
	Level      int       `json:"level"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Roster is the set of active students currently owned by one teacher within
// one school. Ownership is the only sharding key; nothing here guesses.
type Roster struct {
	SchoolID  string
	TeacherID string
	Students  []Student
}

func (r Roster) IDs() []string {
	ids := make([]string, 0, len(r.Students))
	for _, s := range r.Students {
		ids = append(ids, s.ID)
	}
	return ids
}

func (r Roster) Contains(studentID string) bool {
	for _, s := range r.Students {
		if s.ID == studentID {
			return true
		}
	}
	return false
}

// ClassLabels returns the distinct class labels present in the roster.
func (r Roster) ClassLabels() []string {
	seen := make(map[string]struct{}, len(r.Students))
	labels := make([]string, 0, len(r.Students))
	for _, s := range r.Students {
		label := s.ClassLabel
		if label == "" {
			label = "unassigned"
		}
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	return labels
}

type QueryFilter struct {
	SchoolID  string
	TeacherID string
	IsActive  *bool
}
