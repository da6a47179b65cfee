package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusportal/student-records/internal/core/domain"
)

type memRevocations map[string]bool

func (m memRevocations) Revoke(_ context.Context, id string, _ time.Duration) error {
	m[id] = true
	return nil
}

func (m memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return m[id], nil
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "65f1c0ffee",
		Username: "ada",
		Email:    "ada@campus.edu",
		Roles:    domain.NewRoleSet(domain.RoleStudent, domain.RoleAdmin),
	}
}

func newIssuer(t *testing.T, rev memRevocations) *JWTIssuer {
	t.Helper()
	i, err := NewJWTIssuer(TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "student-records"}, rev)
	require.NoError(t, err)
	return i
}

func TestJWTIssuer_IssueAndValidate(t *testing.T) {
	i := newIssuer(t, nil)

	issued, err := i.Issue(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := i.Validate(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "65f1c0ffee", claims.Subject)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "ada@campus.edu", claims.Email)
	assert.Equal(t, domain.NewRoleSet(domain.RoleAdmin, domain.RoleStudent), claims.Roles)
	assert.False(t, claims.IssuedAt.IsZero())
}

func TestJWTIssuer_UniqueTokenIDs(t *testing.T) {
	i := newIssuer(t, nil)
	a, err := i.Issue(testUser())
	require.NoError(t, err)
	b, err := i.Issue(testUser())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWTIssuer_RejectsExpired(t *testing.T) {
	i := newIssuer(t, nil)
	i.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	issued, err := i.Issue(testUser())
	require.NoError(t, err)

	i.now = time.Now
	_, err = i.Validate(context.Background(), issued.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTIssuer_RejectsWrongSecret(t *testing.T) {
	other, err := NewJWTIssuer(TokenConfig{Secret: []byte("other-secret"), TTL: time.Hour}, nil)
	require.NoError(t, err)
	issued, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Validate(context.Background(), issued.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTIssuer_RejectsWrongAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "65f1c0ffee",
		Issuer:    "student-records",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Validate(context.Background(), signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTIssuer_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "65f1c0ffee",
		Issuer:    "student-records",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Validate(context.Background(), signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTIssuer_RejectsWrongIssuer(t *testing.T) {
	other, err := NewJWTIssuer(TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "someone-else"}, nil)
	require.NoError(t, err)
	issued, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Validate(context.Background(), issued.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTIssuer_RejectsRevoked(t *testing.T) {
	rev := memRevocations{}
	i := newIssuer(t, rev)
	issued, err := i.Issue(testUser())
	require.NoError(t, err)

	require.NoError(t, rev.Revoke(context.Background(), issued.ID, time.Hour))
	_, err = i.Validate(context.Background(), issued.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTIssuer_RejectsGarbage(t *testing.T) {
	_, err := newIssuer(t, nil).Validate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestNewJWTIssuer_RequiresSecretAndTTL(t *testing.T) {
	_, err := NewJWTIssuer(TokenConfig{TTL: time.Hour}, nil)
	assert.Error(t, err)
	_, err = NewJWTIssuer(TokenConfig{Secret: []byte("s")}, nil)
	assert.Error(t, err)
}

func TestNewJWTIssuer_CopiesSecret(t *testing.T) {
	secret := []byte("test-secret")
	i, err := NewJWTIssuer(TokenConfig{Secret: secret, TTL: time.Hour}, nil)
	require.NoError(t, err)
	issued, err := i.Issue(testUser())
	require.NoError(t, err)

	secret[0] = 'X'
	_, err = i.Validate(context.Background(), issued.Token)
	assert.NoError(t, err)
}
