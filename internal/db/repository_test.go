package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/db/dbtest"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/config"
)

type fixture struct {
	ctx      context.Context
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	follows  *db.FollowRepository
}

func newFixture(t *testing.T) *fixture {
	database := dbtest.New(t)
	repo := db.NewRepository(database.DB)
	return &fixture{
		ctx:      context.Background(),
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		follows:  db.NewFollowRepository(repo),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	u := &models.User{Username: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, group *models.Group, text string, at time.Time) *models.Post {
	p := &models.Post{Text: text, AuthorID: author.ID, PubDate: at}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, f.posts.Create(f.ctx, p))
	return p
}

func TestUserRepository_GetByUsername(t *testing.T) {
	f := newFixture(t)
	created := f.user(t, "leo")

	got, err := f.users.GetByUsername(f.ctx, "leo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	missing, err := f.users.GetByUsername(f.ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, f.users.Create(f.ctx, &models.User{Username: "leo"}), "duplicate username must be rejected")
}

func TestPostRepository_Pagination(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "leo")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		f.post(t, author, nil, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.posts.PageAll(f.ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(15), first.Total)
	assert.Equal(t, 2, first.NumPages())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, "post 14", first.Items[0].Text, "newest post comes first")
	require.NotNil(t, first.Items[0].Author)
	assert.Equal(t, "leo", first.Items[0].Author.Username)

	second, err := f.posts.PageAll(f.ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)
	assert.Equal(t, "post 4", second.Items[0].Text)

	tests := []struct {
		name      string
		requested int
		resolved  int
	}{
		{"zero resolves to first", 0, 1},
		{"negative resolves to first", -3, 1},
		{"past end resolves to last", 99, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.posts.PageAll(f.ctx, tt.requested, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, page.Number)
		})
	}
}

func TestPostRepository_EmptyPage(t *testing.T) {
	f := newFixture(t)

	page, err := f.posts.PageAll(f.ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages())
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestPostRepository_PageByGroupAndAuthor(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	group := &models.Group{Title: "Test", Slug: "test"}
	require.NoError(t, f.groups.Create(f.ctx, group))

	now := time.Now().UTC()
	inGroup := f.post(t, leo, group, "in group", now)
	f.post(t, ann, nil, "no group", now.Add(time.Second))

	byGroup, err := f.posts.PageByGroup(f.ctx, group.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, byGroup.Items, 1)
	assert.Equal(t, inGroup.ID, byGroup.Items[0].ID)
	require.NotNil(t, byGroup.Items[0].Group)
	assert.Equal(t, "test", byGroup.Items[0].Group.Slug)

	byAuthor, err := f.posts.PageByAuthor(f.ctx, ann.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, byAuthor.Items, 1)
	assert.Equal(t, "no group", byAuthor.Items[0].Text)

	count, err := f.posts.CountByAuthor(f.ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostRepository_GetByAuthorAndID(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	p := f.post(t, leo, nil, "hello", time.Now().UTC())

	got, err := f.posts.GetByAuthorAndID(f.ctx, leo.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Text)

	mismatch, err := f.posts.GetByAuthorAndID(f.ctx, ann.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, mismatch)
}

func TestPostRepository_UpdateContentKeepsAuthorAndDate(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	pubDate := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	p := f.post(t, leo, nil, "before", pubDate)

	p.Text = "after"
	p.Image = "posts/x.png"
	p.AuthorID = ann.ID
	p.PubDate = time.Now().UTC()
	require.NoError(t, f.posts.UpdateContent(f.ctx, p))

	got, err := f.posts.GetByAuthorAndID(f.ctx, leo.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "after", got.Text)
	assert.Equal(t, "posts/x.png", got.Image)
	assert.True(t, got.PubDate.Equal(pubDate))
}

func TestGroupRepository_DeleteKeepsPosts(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	group := &models.Group{Title: "Test", Slug: "test", Description: sql.NullString{String: "about", Valid: true}}
	require.NoError(t, f.groups.Create(f.ctx, group))
	p := f.post(t, leo, group, "kept", time.Now().UTC())

	require.NoError(t, f.groups.Delete(f.ctx, group.ID))

	got, err := f.posts.GetByAuthorAndID(f.ctx, leo.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.GroupID)
}

func TestGroupRepository_DeleteOnSQLiteFile(t *testing.T) {
	database, err := db.New(&config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "yatube.db"),
	}, "ERROR")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background()))

	ctx := context.Background()
	repo := db.NewRepository(database.DB)
	users, groups, posts := db.NewUserRepository(repo), db.NewGroupRepository(repo), db.NewPostRepository(repo)

	leo := &models.User{Username: "leo", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, leo))
	group := &models.Group{Title: "Test", Slug: "test"}
	require.NoError(t, groups.Create(ctx, group))
	p := &models.Post{Text: "kept", AuthorID: leo.ID, GroupID: &group.ID, PubDate: time.Now().UTC()}
	require.NoError(t, posts.Create(ctx, p))

	require.NoError(t, groups.Delete(ctx, group.ID))

	got, err := posts.GetByAuthorAndID(ctx, leo.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.GroupID, "deleting a group clears the reference")
	assert.Nil(t, got.Group)
}

func TestCommentRepository_ListByPost(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	p := f.post(t, leo, nil, "hello", time.Now().UTC())
	base := time.Now().UTC()

	for i, text := range []string{"first", "second"} {
		require.NoError(t, f.comments.Create(f.ctx, &models.Comment{
			PostID:    p.ID,
			AuthorID:  leo.ID,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	comments, err := f.comments.ListByPost(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "leo", comments[0].Author.Username)
}

func TestFollowRepository(t *testing.T) {
	f := newFixture(t)
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")

	inserted, err := f.follows.Create(f.ctx, &models.Follow{UserID: leo.ID, AuthorID: ann.ID, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = f.follows.Create(f.ctx, &models.Follow{UserID: leo.ID, AuthorID: ann.ID, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, inserted, "second insert of the same edge is a no-op")

	followers, err := f.follows.CountFollowers(f.ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	following, err := f.follows.CountFollowing(f.ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)

	exists, err := f.follows.Exists(f.ctx, leo.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := f.follows.Delete(f.ctx, leo.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.follows.Delete(f.ctx, leo.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostRepository_PageByFollower(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader")
	ann := f.user(t, "ann")
	bob := f.user(t, "bob")
	carl := f.user(t, "carl")
	base := time.Now().UTC()

	f.post(t, ann, nil, "ann 1", base)
	f.post(t, bob, nil, "bob 1", base.Add(time.Second))
	f.post(t, carl, nil, "carl 1", base.Add(2*time.Second))
	f.post(t, ann, nil, "ann 2", base.Add(3*time.Second))

	empty, err := f.posts.PageByFollower(f.ctx, reader.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	for _, author := range []*models.User{ann, bob} {
		_, err := f.follows.Create(f.ctx, &models.Follow{UserID: reader.ID, AuthorID: author.ID, CreatedAt: base})
		require.NoError(t, err)
	}

	feed, err := f.posts.PageByFollower(f.ctx, reader.ID, 1, 10)
	require.NoError(t, err)
	texts := make([]string, 0, len(feed.Items))
	for _, p := range feed.Items {
		texts = append(texts, p.Text)
	}
	assert.Equal(t, []string{"ann 2", "bob 1", "ann 1"}, texts)
}
