package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
)

func validStudent(email string) *domain.Student {
	return &domain.Student{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      email,
		DegreeType: "Science",
		Courses:    []domain.CourseEnrollment{course("Physics", 2020, 2024, false)},
	}
}

func TestStudentService_Save_NormalizesPersistsAndReconciles(t *testing.T) {
	repo := newStubStudentRepo()
	rec := &stubReconciler{}
	svc := NewStudentService(repo, rec, nil, zerolog.Nop())

	saved, err := svc.Save(context.Background(), validStudent("ada@campus.edu"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Physics", saved.Course)
	assert.Equal(t, "2020-2024", saved.AcademicYear)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, []string{"ada@campus.edu"}, rec.seen)

	stored, err := repo.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.True(t, stored.Courses[0].Primary)
}

func TestStudentService_Save_InvalidIsNotPersisted(t *testing.T) {
	repo := newStubStudentRepo()
	rec := &stubReconciler{}
	svc := NewStudentService(repo, rec, nil, zerolog.Nop())

	s := validStudent("ada@campus.edu")
	s.Courses = append(s.Courses, course("Chemistry", 2020, 2024, false))

	_, err := svc.Save(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, repo.students)
	assert.Empty(t, rec.seen)
}

func TestStudentService_Save_ReconcileFailureKeepsStudent(t *testing.T) {
	repo := newStubStudentRepo()
	rec := &stubReconciler{errFor: map[string]error{"ada@campus.edu": errBoom}}
	svc := NewStudentService(repo, rec, nil, zerolog.Nop())

	saved, err := svc.Save(context.Background(), validStudent("ada@campus.edu"))
	assert.ErrorIs(t, err, errBoom)
	require.NotNil(t, saved)
	assert.Len(t, repo.students, 1)
}

func TestStudentService_Save_PreservesCreatedAt(t *testing.T) {
	repo := newStubStudentRepo()
	svc := NewStudentService(repo, &stubReconciler{}, nil, zerolog.Nop())

	first, err := svc.Save(context.Background(), validStudent("ada@campus.edu"))
	require.NoError(t, err)
	created := first.CreatedAt

	update := validStudent("ada@campus.edu")
	update.ID = first.ID
	update.CreatedAt = created
	update.LastName = "King"

	second, err := svc.Save(context.Background(), update)
	require.NoError(t, err)
	assert.Equal(t, created, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(created))
	assert.Len(t, repo.students, 1)
}

func TestStudentService_SaveAll_AbortsBeforePersisting(t *testing.T) {
	repo := newStubStudentRepo()
	rec := &stubReconciler{}
	svc := NewStudentService(repo, rec, nil, zerolog.Nop())

	bad := validStudent("bad@campus.edu")
	bad.DegreeType = ""
	_, err := svc.SaveAll(context.Background(), []*domain.Student{validStudent("a@campus.edu"), bad})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, strings.HasPrefix(err.Error(), "student 1: "), err.Error())
	assert.Zero(t, repo.saveAlls)
	assert.Empty(t, rec.seen)
}

func TestStudentService_SaveAll_ReconcilesEach(t *testing.T) {
	repo := newStubStudentRepo()
	rec := &stubReconciler{errFor: map[string]error{"b@campus.edu": errBoom}}
	svc := NewStudentService(repo, rec, nil, zerolog.Nop())

	saved, err := svc.SaveAll(context.Background(), []*domain.Student{
		validStudent("a@campus.edu"),
		validStudent("b@campus.edu"),
		validStudent("c@campus.edu"),
	})
	assert.ErrorIs(t, err, errBoom)
	require.Len(t, saved, 3)
	assert.Equal(t, []string{"a@campus.edu", "b@campus.edu", "c@campus.edu"}, rec.seen)
	assert.Len(t, repo.students, 3)
}

func TestStudentService_FindAndDelete(t *testing.T) {
	repo := newStubStudentRepo()
	svc := NewStudentService(repo, &stubReconciler{}, nil, zerolog.Nop())

	saved, err := svc.Save(context.Background(), validStudent("a@campus.edu"))
	require.NoError(t, err)

	all, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	found, err := svc.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@campus.edu", found.Email)

	require.NoError(t, svc.DeleteByID(context.Background(), saved.ID))
	_, err = svc.FindByID(context.Background(), saved.ID)
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

type stubBackfill struct {
	got []*domain.Student
}

func (b *stubBackfill) Run(_ context.Context, students []*domain.Student) (*ports.ReconcileReport, error) {
	b.got = students
	report := &ports.ReconcileReport{}
	for range students {
		report.Add(ports.OutcomeUnchanged)
	}
	return report, nil
}

func TestStudentService_ReconcileAll_UsesBackfill(t *testing.T) {
	repo := newStubStudentRepo()
	backfill := &stubBackfill{}
	svc := NewStudentService(repo, &stubReconciler{}, backfill, zerolog.Nop())

	for _, e := range []string{"a@campus.edu", "b@campus.edu"} {
		_, err := svc.Save(context.Background(), validStudent(e))
		require.NoError(t, err)
	}

	report, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, backfill.got, 2)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, 2, report.Total)
}

func TestStudentService_ReconcileAll_Sequential(t *testing.T) {
	repo := newStubStudentRepo()
	rec := &stubReconciler{errFor: map[string]error{"b@campus.edu": errors.New("store down")}}
	svc := NewStudentService(repo, rec, nil, zerolog.Nop())

	_, _ = svc.Save(context.Background(), validStudent("a@campus.edu"))
	_, _ = svc.Save(context.Background(), validStudent("b@campus.edu"))
	rec.seen = nil

	report, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.ReconcileReport{Total: 2, Created: 1, Failed: 1}, *report)
}
