package ports

import (
	"context"

	"github.com/campusportal/student-records/internal/core/domain"
)

// ReconcileReport summarizes a portal account backfill.
type ReconcileReport struct {
	Total     int `json:"total"`
	Created   int `json:"created"`
	RoleAdded int `json:"role_added"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// StudentService defines use-case operations for student records.
type StudentService interface {
	Save(ctx context.Context, s *domain.Student) (*domain.Student, error)
	SaveAll(ctx context.Context, students []*domain.Student) ([]*domain.Student, error)
	FindAll(ctx context.Context) ([]*domain.Student, error)
	FindByID(ctx context.Context, id string) (*domain.Student, error)
	DeleteByID(ctx context.Context, id string) error
	ReconcileAll(ctx context.Context) (*ReconcileReport, error)
}

// ReconcileOutcome describes what a reconciliation did to the portal account.
type ReconcileOutcome string

const (
	OutcomeCreated   ReconcileOutcome = "created"
	OutcomeRoleAdded ReconcileOutcome = "role_added"
	OutcomeUnchanged ReconcileOutcome = "unchanged"
	OutcomeSkipped   ReconcileOutcome = "skipped"
	OutcomeFailed    ReconcileOutcome = "failed"
)

// AccountReconciler guarantees that a persisted student has a portal account
// carrying the student role.
type AccountReconciler interface {
	Reconcile(ctx context.Context, s *domain.Student) (ReconcileOutcome, error)
}

// Add records one outcome in the report.
func (r *ReconcileReport) Add(o ReconcileOutcome) {
	r.Total++
	switch o {
	case OutcomeCreated:
		r.Created++
	case OutcomeRoleAdded:
		r.RoleAdded++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}
