package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-directory-api/internal/domain"
	"user-directory-api/internal/storage"
	"user-directory-api/internal/testutil"
)

func newTestService(t *testing.T) (*UserService, *testutil.MemStore, *storage.ImageStore) {
	t.Helper()
	store := testutil.NewMemStore()
	images, err := storage.NewImageStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return NewUserService(store, images, zap.NewNop()), store, images
}

func strp(s string) *string { return &s }

func validInput() UserInput {
	return UserInput{
		FirstName: strp("A"),
		LastName:  strp("B"),
		Email:     strp("a@b.com"),
		Mobile:    strp("1234567890"),
		Gender:    strp("Male"),
		Status:    strp("Active"),
		Location:  strp("Pune"),
	}
}

func pngUpload(data []byte) *storage.Upload {
	return &storage.Upload{
		Reader:      bytes.NewReader(data),
		Name:        "avatar.png",
		Size:        int64(len(data)),
		ContentType: "image/png",
	}
}

func TestCreateThenGetRoundTrips(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Email = strp("  A@B.Com ")
	in.FirstName = strp("  A ")

	created, err := svc.Create(ctx, in, nil)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email, "email is trimmed and lowercased")
	assert.Equal(t, "A", got.FirstName)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestCreateDefaultsStatusToActive(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := validInput()
	in.Status = nil
	u, err := svc.Create(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, u.Status)
}

func TestCreateListsEveryMissingField(t *testing.T) {
	svc, store, _ := newTestService(t)

	in := validInput()
	in.LastName = nil
	in.Mobile = strp(" ")

	_, err := svc.Create(context.Background(), in, nil)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"lastName is required", "mobile is required"}, vErr.Violations)

	all, err := store.FindAllForExport(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all, "no record may be persisted on validation failure")
}

func TestCreateDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput(), nil)
	require.NoError(t, err)

	dup := validInput()
	dup.Email = strp("A@B.COM")
	_, err = svc.Create(ctx, dup, nil)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestCreateRejectsOversizedUploadWithoutMutation(t *testing.T) {
	svc, store, _ := newTestService(t)

	up := pngUpload([]byte("tiny"))
	up.Size = 3 * 1024 * 1024
	_, err := svc.Create(context.Background(), validInput(), up)
	assert.ErrorIs(t, err, storage.ErrTooLarge)

	all, err := store.FindAllForExport(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateCleansUpImageWhenValidationFails(t *testing.T) {
	svc, _, images := newTestService(t)

	in := validInput()
	in.Email = strp("broken")
	_, err := svc.Create(context.Background(), in, pngUpload([]byte("img")))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(images.Dir())
		return err == nil && len(entries) == 0
	}, time.Second, 10*time.Millisecond, "stored image must be cleaned up")
}

func TestUpdateEmptyPayloadOnlyBumpsUpdatedAt(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput(), nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UserInput{}, nil)
	require.NoError(t, err)

	assert.Equal(t, created.FirstName, updated.FirstName)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updatedAt strictly increases")
}

func TestUpdateIsPartial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput(), nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UserInput{Location: strp("Mumbai")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.Location)
	assert.Equal(t, created.Email, updated.Email)
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput(), nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UserInput{Mobile: strp("12")}, nil)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Mobile must be a 10 digit number"}, vErr.Violations)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got.Mobile, "record unchanged on rejected update")
}

func TestUpdateEmailUniquenessExcludesSelf(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, validInput(), nil)
	require.NoError(t, err)

	other := validInput()
	other.Email = strp("c@d.com")
	_, err = svc.Create(ctx, other, nil)
	require.NoError(t, err)

	// same email, same record: fine
	_, err = svc.Update(ctx, a.ID, UserInput{Email: strp("A@B.com")}, nil)
	assert.NoError(t, err)

	// someone else's email: rejected
	_, err = svc.Update(ctx, a.ID, UserInput{Email: strp("c@d.com")}, nil)
	assert.ErrorIs(t, err, domain.ErrEmailTakenByOther)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", UserInput{}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateReplacesImageAndRemovesOldFile(t *testing.T) {
	svc, _, images := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput(), pngUpload([]byte("old")))
	require.NoError(t, err)
	oldName := created.ProfileImage
	require.NotEmpty(t, oldName)

	updated, err := svc.Update(ctx, created.ID, UserInput{}, pngUpload([]byte("new")))
	require.NoError(t, err)
	require.NotEmpty(t, updated.ProfileImage)
	assert.NotEqual(t, oldName, updated.ProfileImage)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ProfileImage, got.ProfileImage)

	// old file removal is fire-and-forget
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(images.Dir(), oldName))
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}

func TestDeleteRemovesRecordAndImage(t *testing.T) {
	svc, _, images := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput(), pngUpload([]byte("img")))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoFileExists(t, filepath.Join(images.Dir(), created.ProfileImage))

	res, err := svc.List(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.Empty(t, res.Users)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestListPaginates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	emails := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		in := validInput()
		email := string(rune('a'+i)) + "@pages.com"
		in.Email = strp(email)
		_, err := svc.Create(ctx, in, nil)
		require.NoError(t, err)
		emails = append(emails, email)
	}

	res, err := svc.List(ctx, 2, 5, "")
	require.NoError(t, err)
	require.Len(t, res.Users, 5)
	assert.Equal(t, int64(12), res.Total)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 5, res.Limit)

	// createdAt descending: page 2 holds records 6..10 counted from newest
	for i, u := range res.Users {
		assert.Equal(t, emails[len(emails)-6-i], u.Email)
	}
}

func TestListDefaultsPageAndLimit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		in := validInput()
		in.Email = strp(string(rune('a'+i)) + "@defaults.com")
		_, err := svc.Create(ctx, in, nil)
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, 0, -3, "")
	require.NoError(t, err)
	assert.Len(t, res.Users, 5)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 2, res.Pages)
}

func TestListSearchFiltersCaseInsensitively(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pune := validInput()
	_, err := svc.Create(ctx, pune, nil)
	require.NoError(t, err)

	delhi := validInput()
	delhi.Email = strp("d@e.com")
	delhi.Location = strp("Delhi")
	_, err = svc.Create(ctx, delhi, nil)
	require.NoError(t, err)

	res, err := svc.List(ctx, 1, 10, "PUNE")
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Pune", res.Users[0].Location)
	assert.Equal(t, int64(1), res.Total)
}
