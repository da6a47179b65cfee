package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
	"github.com/campusportal/student-records/internal/metrics"
)

// Backfill reconciles a batch of students and reports the outcomes.
type Backfill interface {
	Run(ctx context.Context, students []*domain.Student) (*ports.ReconcileReport, error)
}

type StudentService struct {
	repo       ports.StudentRepository
	reconciler ports.AccountReconciler
	backfill   Backfill
	logger     zerolog.Logger
}

// NewStudentService wires the student use cases. backfill may be nil, in which case
// ReconcileAll reconciles sequentially.
func NewStudentService(
	repo ports.StudentRepository,
	reconciler ports.AccountReconciler,
	backfill Backfill,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{repo: repo, reconciler: reconciler, backfill: backfill, logger: logger}
}

// Save normalizes and persists one student, then makes sure its portal account exists.
// A reconciliation failure is returned together with the persisted student.
func (s *StudentService) Save(ctx context.Context, st *domain.Student) (*domain.Student, error) {
	if err := normalize(st); err != nil {
		return nil, err
	}

	stamp(st, time.Now().UTC())
	if err := s.repo.Save(ctx, st); err != nil {
		s.logger.Error().Err(err).Str("email", st.Email).Msg("failed to save student")
		return nil, err
	}
	metrics.StudentsSavedTotal.Inc()
	s.logger.Info().Str("student_id", st.ID).Str("course", st.Course).Msg("student saved")

	if _, err := s.reconciler.Reconcile(ctx, st); err != nil {
		s.logger.Error().Err(err).Str("student_id", st.ID).Msg("portal account reconciliation failed")
		return st, fmt.Errorf("student %s saved, portal account not reconciled: %w", st.ID, err)
	}
	return st, nil
}

// SaveAll normalizes every student before persisting any of them.
func (s *StudentService) SaveAll(ctx context.Context, students []*domain.Student) ([]*domain.Student, error) {
	for i, st := range students {
		if err := normalize(st); err != nil {
			return nil, fmt.Errorf("student %d: %w", i, err)
		}
	}

	now := time.Now().UTC()
	for _, st := range students {
		stamp(st, now)
	}
	if err := s.repo.SaveAll(ctx, students); err != nil {
		s.logger.Error().Err(err).Int("count", len(students)).Msg("failed to save students")
		return nil, err
	}
	metrics.StudentsSavedTotal.Add(float64(len(students)))
	s.logger.Info().Int("count", len(students)).Msg("students saved")

	var errs []error
	for _, st := range students {
		if _, err := s.reconciler.Reconcile(ctx, st); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Error().Int("failed", len(errs)).Msg("portal account reconciliation failed for some students")
		return students, errors.Join(errs...)
	}
	return students, nil
}

func (s *StudentService) FindAll(ctx context.Context) ([]*domain.Student, error) {
	return s.repo.FindAll(ctx)
}

func (s *StudentService) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *StudentService) DeleteByID(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("student_id", id).Msg("student deleted")
	return nil
}

// ReconcileAll runs every persisted student through the account reconciler.
func (s *StudentService) ReconcileAll(ctx context.Context) (*ports.ReconcileReport, error) {
	students, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile all: list students: %w", err)
	}

	if s.backfill != nil {
		return s.backfill.Run(ctx, students)
	}

	report := &ports.ReconcileReport{}
	for _, st := range students {
		outcome, err := s.reconciler.Reconcile(ctx, st)
		if err != nil {
			s.logger.Warn().Err(err).Str("student_id", st.ID).Msg("reconcile failed")
		}
		report.Add(outcome)
	}
	return report, nil
}

func normalize(st *domain.Student) error {
	if err := NormalizeStudent(st); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.NormalizationFailuresTotal.WithLabelValues(ve.Code).Inc()
		}
		return err
	}
	return nil
}

func stamp(st *domain.Student, now time.Time) {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now
}
