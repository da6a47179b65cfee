package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User // keyed by ID
	nextID  int
	saveErr error
	findErr error
	saves   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append(domain.RoleSet(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = fmt.Sprintf("u-%d", r.nextID)
	r.users[u.ID] = cloneUser(u)
	return u
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.match(func(u *domain.User) bool { return u.Email == email })
	return err == nil, nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := r.match(func(u *domain.User) bool { return u.Username == username })
	return err == nil, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.match(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, identifier string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.match(func(u *domain.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (r *stubUserRepo) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email || existing.Username == u.Username {
			return domain.ErrDuplicateUser
		}
	}
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("u-%d", r.nextID)
	}
	r.users[u.ID] = cloneUser(u)
	r.saves++
	return nil
}

func (r *stubUserRepo) match(pred func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if pred(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// stubHasher is reversible so tests can assert which password was stored.
type stubHasher struct {
	mu      sync.Mutex
	checked []string
}

func (h *stubHasher) Encode(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (h *stubHasher) Matches(plaintext, hash string) bool {
	h.mu.Lock()
	h.checked = append(h.checked, hash)
	h.mu.Unlock()
	return hash == "hashed:"+plaintext
}

type stubTokens struct {
	issued  []*domain.User
	claims  map[string]*ports.TokenClaims
	issueFn func(*domain.User) (ports.IssuedToken, error)
}

func (s *stubTokens) Issue(u *domain.User) (ports.IssuedToken, error) {
	s.issued = append(s.issued, u)
	if s.issueFn != nil {
		return s.issueFn(u)
	}
	return ports.IssuedToken{Token: "token-" + u.ID, ID: "jti-" + u.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubTokens) Validate(_ context.Context, token string) (*ports.TokenClaims, error) {
	c, ok := s.claims[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

type stubRevocations struct {
	revoked map[string]time.Duration
}

func (r *stubRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if r.revoked == nil {
		r.revoked = make(map[string]time.Duration)
	}
	r.revoked[id] = ttl
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := r.revoked[id]
	return ok, nil
}

type stubLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
	err   error
}

func (l *stubLocker) Lock(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.keys = append(l.keys, key)
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

type stubStudentRepo struct {
	students map[string]*domain.Student
	order    []string
	nextID   int
	saveErr  error
	saveAlls int
}

func newStubStudentRepo() *stubStudentRepo {
	return &stubStudentRepo{students: make(map[string]*domain.Student)}
}

func (r *stubStudentRepo) Save(_ context.Context, s *domain.Student) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if s.ID == "" {
		r.nextID++
		s.ID = fmt.Sprintf("s-%d", r.nextID)
		r.order = append(r.order, s.ID)
	}
	clone := *s
	r.students[s.ID] = &clone
	return nil
}

func (r *stubStudentRepo) SaveAll(ctx context.Context, students []*domain.Student) error {
	r.saveAlls++
	for _, s := range students {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubStudentRepo) FindAll(context.Context) ([]*domain.Student, error) {
	out := make([]*domain.Student, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.students[id]; ok {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubStudentRepo) FindByID(_ context.Context, id string) (*domain.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubStudentRepo) DeleteByID(_ context.Context, id string) error {
	delete(r.students, id)
	return nil
}

type stubReconciler struct {
	seen    []string
	outcome ports.ReconcileOutcome
	errFor  map[string]error
}

func (r *stubReconciler) Reconcile(_ context.Context, s *domain.Student) (ports.ReconcileOutcome, error) {
	r.seen = append(r.seen, s.Email)
	if err := r.errFor[strings.ToLower(s.Email)]; err != nil {
		return ports.OutcomeFailed, err
	}
	if r.outcome == "" {
		return ports.OutcomeCreated, nil
	}
	return r.outcome, nil
}

var errBoom = errors.New("boom")

func intPtr(v int) *int { return &v }
