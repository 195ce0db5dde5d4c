package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/backend/internal/config"
)

var testAuthConfig = AuthConfig{
	SecretKey: "test-secret",
	TokenTTL:  7 * 24 * time.Hour,
	Argon2:    config.Argon2Config{Time: 1, Memory: 1024, Threads: 1, KeyLength: 32, SaltLength: 16},
}

func newTestAuth(t *testing.T, rdb *redis.Client) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewAuthService(db, rdb, testAuthConfig)
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }
	return svc, mock
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		svc, mock := newTestAuth(t, nil)
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("test@example.com", sqlmock.AnyArg(), "Sara").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

		res, err := svc.Register(ctx, RegisterInput{Email: " Test@Example.com ", Password: "password123", Name: "Sara"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "test@example.com", res.User.Email)
		assert.Equal(t, int64(1), res.User.ID)

		owner, err := svc.ParseToken(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), owner)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, mock := newTestAuth(t, nil)
		mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

		_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "password123", Name: "Sara"})
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("short password", func(t *testing.T) {
		svc, _ := newTestAuth(t, nil)
		_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "12345", Name: "Sara"})
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestAuth(t, nil)
	hashed, err := svc.hashPassword("password123")
	require.NoError(t, err)

	t.Run("successful login", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, name, password, created_at FROM users WHERE email = \$1`).
			WithArgs("a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "created_at"}).
				AddRow(4, "a@b.com", "Sara", hashed, time.Now()))

		res, err := svc.Login(ctx, LoginInput{Email: "A@b.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.User.ID)
		assert.Equal(t, svc.now().Add(testAuthConfig.TokenTTL), res.ExpiresAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		mock.ExpectQuery(`FROM users WHERE email`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "created_at"}).
				AddRow(4, "a@b.com", "Sara", hashed, time.Now()))

		_, err := svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, KindAuthRequired, KindOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		mock.ExpectQuery(`FROM users WHERE email`).WillReturnError(sql.ErrNoRows)

		_, err := svc.Login(ctx, LoginInput{Email: "x@b.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordHashing(t *testing.T) {
	svc := NewAuthService(nil, nil, testAuthConfig)

	hashed, err := svc.hashPassword("testpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword", hashed)

	assert.True(t, svc.verifyPassword("testpassword", hashed))
	assert.False(t, svc.verifyPassword("wrongpassword", hashed))
	assert.False(t, svc.verifyPassword("testpassword", "not-a-hash"))
}

func TestAuthService_ParseToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects blacklisted token", func(t *testing.T) {
		rdb, cacheMock := redismock.NewClientMock()
		svc, _ := newTestAuth(t, rdb)
		token, _, err := svc.issueToken(3)
		require.NoError(t, err)

		cacheMock.ExpectExists("blacklist:" + token).SetVal(1)

		_, err = svc.ParseToken(ctx, token)
		assert.Equal(t, KindAuthRequired, KindOf(err))
		assert.NoError(t, cacheMock.ExpectationsWereMet())
	})

	t.Run("rejects expired token", func(t *testing.T) {
		svc, _ := newTestAuth(t, nil)
		token, _, err := svc.issueToken(3)
		require.NoError(t, err)

		later := svc.now().Add(testAuthConfig.TokenTTL + time.Minute)
		svc.now = func() time.Time { return later }

		_, err = svc.ParseToken(ctx, token)
		assert.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("rejects foreign signature and algorithm", func(t *testing.T) {
		svc, _ := newTestAuth(t, nil)

		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
			UserID:           3,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		signed, err := forged.SignedString([]byte("other-secret"))
		require.NoError(t, err)
		_, err = svc.ParseToken(ctx, signed)
		assert.Equal(t, KindAuthRequired, KindOf(err))

		none := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{UserID: 3})
		unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ParseToken(ctx, unsigned)
		assert.Equal(t, KindAuthRequired, KindOf(err))

		_, err = svc.ParseToken(ctx, "")
		assert.Equal(t, KindAuthRequired, KindOf(err))
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	rdb, cacheMock := redismock.NewClientMock()
	svc, _ := newTestAuth(t, rdb)
	token, _, err := svc.issueToken(3)
	require.NoError(t, err)

	cacheMock.ExpectSet("blacklist:"+token, "1", testAuthConfig.TokenTTL).SetVal("OK")
	require.NoError(t, svc.Logout(ctx, token))

	// garbage tokens need no blacklisting
	require.NoError(t, svc.Logout(ctx, "garbage"))
	assert.NoError(t, cacheMock.ExpectationsWereMet())
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestAuth(t, nil)
	cols := []string{"id", "email", "name", "created_at"}

	t.Run("me", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, name, created_at FROM users WHERE id = \$1`).WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(4, "a@b.com", "Sara", time.Now()))

		user, err := svc.Me(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "Sara", user.Name)
	})

	t.Run("update trims name", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users SET name = \$1`).WithArgs("Sara A", int64(4)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(4, "a@b.com", "Sara A", time.Now()))

		user, err := svc.UpdateProfile(ctx, 4, "  Sara A ")
		require.NoError(t, err)
		assert.Equal(t, "Sara A", user.Name)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, 4, "   ")
		assert.Equal(t, KindValidation, KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, mock := newTestAuth(t, nil)
	hashed, err := svc.hashPassword("old-password")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		mock.ExpectQuery(`SELECT password FROM users WHERE id = \$1`).WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow(hashed))

		err := svc.ChangePassword(ctx, 4, ChangePasswordInput{CurrentPassword: "nope", NewPassword: "new-password"})
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("changes password", func(t *testing.T) {
		mock.ExpectQuery(`SELECT password FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow(hashed))
		mock.ExpectExec(`UPDATE users SET password = \$1`).WithArgs(sqlmock.AnyArg(), int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.ChangePassword(ctx, 4, ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"})
		assert.NoError(t, err)
	})

	t.Run("new password too short", func(t *testing.T) {
		err := svc.ChangePassword(ctx, 4, ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "123"})
		assert.Equal(t, KindValidation, KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
