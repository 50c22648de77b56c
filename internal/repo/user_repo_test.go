package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
	"github.com/voyagent/voyagent/internal/repo"
	"github.com/voyagent/voyagent/internal/testutil"
)

func TestUserRepoCreateAndConflict(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	suffix := timeutil.NowMillis()
	email := fmt.Sprintf("traveler-%d@example.com", suffix)
	defer func() {
		_, _ = db.Exec("DELETE FROM users WHERE email = $1", email)
	}()

	now := timeutil.NowUnix()
	user := &model.User{
		ID:           fmt.Sprintf("user-%d", suffix),
		Email:        email,
		PasswordHash: "hash",
		Ctime:        now,
		Mtime:        now,
	}
	require.NoError(t, users.Create(context.Background(), user))

	dup := &model.User{
		ID:           fmt.Sprintf("user-%d-dup", suffix),
		Email:        email,
		PasswordHash: "other",
		Ctime:        now,
		Mtime:        now,
	}
	require.ErrorIs(t, users.Create(context.Background(), dup), appErr.ErrConflict)

	fetched, err := users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.Equal(t, user.ID, fetched.ID)

	_, err = users.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
