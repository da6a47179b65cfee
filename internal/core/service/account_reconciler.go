package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
	"github.com/campusportal/student-records/internal/metrics"
)

// DefaultStudentPassword is the credential given to auto-provisioned accounts when
// no other value is configured.
const DefaultStudentPassword = "FeeM@2025"

const lockKeyPrefix = "reconcile:email:"

// AccountReconciler provisions portal accounts for persisted students.
type AccountReconciler struct {
	users           ports.UserRepository
	hasher          ports.PasswordHasher
	locker          ports.KeyLocker
	defaultPassword string
	log             zerolog.Logger
}

// NewAccountReconciler builds a reconciler. locker may be nil, in which case the unique
// email index of the store is the only guard against concurrent provisioning.
func NewAccountReconciler(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	locker ports.KeyLocker,
	defaultPassword string,
	log zerolog.Logger,
) *AccountReconciler {
	if defaultPassword == "" {
		defaultPassword = DefaultStudentPassword
	}
	return &AccountReconciler{
		users:           users,
		hasher:          hasher,
		locker:          locker,
		defaultPassword: defaultPassword,
		log:             log,
	}
}

// Reconcile ensures the student's email maps to exactly one identity bearing the
// student role. Students without an email are skipped.
func (r *AccountReconciler) Reconcile(ctx context.Context, s *domain.Student) (ports.ReconcileOutcome, error) {
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	outcome, err := r.reconcile(ctx, s)
	if err != nil {
		outcome = ports.OutcomeFailed
	}
	metrics.AccountsReconciledTotal.WithLabelValues(string(outcome)).Inc()
	return outcome, err
}

func (r *AccountReconciler) reconcile(ctx context.Context, s *domain.Student) (ports.ReconcileOutcome, error) {
	if !s.HasEmail() {
		return ports.OutcomeSkipped, nil
	}
	email := s.Email

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, lockKeyPrefix+strings.ToLower(email))
		if err != nil {
			return ports.OutcomeFailed, fmt.Errorf("reconcile %s: lock: %w", email, err)
		}
		defer unlock()
	}

	existing, err := r.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return r.ensureStudentRole(ctx, existing)
	case !errors.Is(err, domain.ErrUserNotFound):
		return ports.OutcomeFailed, fmt.Errorf("reconcile %s: find user: %w", email, err)
	}

	hash, err := r.hasher.Encode(r.defaultPassword)
	if err != nil {
		return ports.OutcomeFailed, fmt.Errorf("reconcile %s: hash default password: %w", email, err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:               s.DisplayName(),
		Username:           email,
		Email:              email,
		PasswordHash:       hash,
		Roles:              domain.NewRoleSet(domain.RoleStudent),
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = r.users.Save(ctx, user)
	if err == nil {
		r.log.Info().Str("email", email).Str("user_id", user.ID).Msg("student portal account created")
		return ports.OutcomeCreated, nil
	}
	if !errors.Is(err, domain.ErrDuplicateUser) {
		return ports.OutcomeFailed, fmt.Errorf("reconcile %s: create user: %w", email, err)
	}

	// A unique index rejected the insert: usually another writer created the identity first.
	r.log.Warn().Str("email", email).Msg("portal account created concurrently, re-reading")
	existing, err = r.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		// The clash was on username: another identity already uses this email as its login.
		return ports.OutcomeFailed, fmt.Errorf("reconcile %s: username held by another identity: %w", email, domain.ErrDuplicateUser)
	case err != nil:
		return ports.OutcomeFailed, fmt.Errorf("reconcile %s: re-read user: %w", email, err)
	}
	return r.ensureStudentRole(ctx, existing)
}

func (r *AccountReconciler) ensureStudentRole(ctx context.Context, u *domain.User) (ports.ReconcileOutcome, error) {
	if u.Roles.Has(domain.RoleStudent) {
		return ports.OutcomeUnchanged, nil
	}

	u.Roles = u.Roles.With(domain.RoleStudent)
	if err := r.users.Save(ctx, u); err != nil {
		return ports.OutcomeFailed, fmt.Errorf("reconcile %s: add student role: %w", u.Email, err)
	}

	r.log.Info().Str("email", u.Email).Str("user_id", u.ID).Msg("student role added to existing account")
	return ports.OutcomeRoleAdded, nil
}
