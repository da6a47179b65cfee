package ports

import (
	"context"

	"github.com/campusportal/student-records/internal/core/domain"
)

// UserRepository is the credential store. Find methods return domain.ErrUserNotFound
// when nothing matches. Save is an upsert keyed by User.ID; an empty ID inserts a new
// record and populates it. Save returns domain.ErrDuplicateUser when a unique index on
// username or email rejects the write.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}
