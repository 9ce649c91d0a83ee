package reader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyreads/easyreads/internal/entities"
)

func importSample(t *testing.T, env *testEnv) {
	t.Helper()
	env.catalog.add(84, "Frankenstein", "You will rejoice to hear\nthat no disaster\nhas accompanied")
	_, err := env.service.EnsureBookImported(context.Background(), 84)
	require.NoError(t, err)
}

func TestCreateAnnotation(t *testing.T) {
	env := setupService(t, 2)
	importSample(t, env)
	ctx := context.Background()

	a, err := env.service.CreateAnnotation(ctx, AnnotationInput{
		Username: "alice", BookID: 84, PageNumber: 1, StartIndex: 4, EndIndex: 8,
	})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	rows, err := env.service.ListAnnotationsForPage(ctx, 84, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Username)
	assert.Equal(t, "Frankenstein", rows[0].BookTitle)
}

func TestListAnnotationsForPage_Bounds(t *testing.T) {
	env := setupService(t, 2)
	ctx := context.Background()

	_, err := env.service.ListAnnotationsForPage(ctx, 84, 1)
	assert.ErrorIs(t, err, ErrNotFound, "book not imported yet")

	importSample(t, env)

	rows, err := env.service.ListAnnotationsForPage(ctx, 84, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = env.service.ListAnnotationsForPage(ctx, 84, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.service.ListAnnotationsForPage(ctx, 84, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateAnnotation_Validation(t *testing.T) {
	env := setupService(t, 2)
	importSample(t, env)
	ctx := context.Background()

	// Page 1 is "You will rejoice to hear\nthat no disaster" = 41 characters.
	cases := []struct {
		name  string
		input AnnotationInput
		want  error
	}{
		{"missing user", AnnotationInput{BookID: 84, PageNumber: 1, StartIndex: 0, EndIndex: 3}, ErrValidation},
		{"negative start", AnnotationInput{Username: "a", BookID: 84, PageNumber: 1, StartIndex: -1, EndIndex: 3}, ErrValidation},
		{"empty range", AnnotationInput{Username: "a", BookID: 84, PageNumber: 1, StartIndex: 3, EndIndex: 3}, ErrValidation},
		{"reversed range", AnnotationInput{Username: "a", BookID: 84, PageNumber: 1, StartIndex: 5, EndIndex: 2}, ErrValidation},
		{"past end", AnnotationInput{Username: "a", BookID: 84, PageNumber: 1, StartIndex: 0, EndIndex: 42}, ErrValidation},
		{"page zero", AnnotationInput{Username: "a", BookID: 84, PageNumber: 0, StartIndex: 0, EndIndex: 1}, ErrValidation},
		{"page past end", AnnotationInput{Username: "a", BookID: 84, PageNumber: 3, StartIndex: 0, EndIndex: 1}, ErrNotFound},
		{"unknown book", AnnotationInput{Username: "a", BookID: 1, PageNumber: 1, StartIndex: 0, EndIndex: 1}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.CreateAnnotation(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: "a", BookID: 84, PageNumber: 1, StartIndex: 0, EndIndex: 41})
	assert.NoError(t, err, "whole page is a valid range")
}

func TestCreateAnnotation_CountsCharactersNotBytes(t *testing.T) {
	env := setupService(t, 60)
	env.catalog.add(5, "Accents", "café")
	_, err := env.service.EnsureBookImported(context.Background(), 5)
	require.NoError(t, err)

	_, err = env.service.CreateAnnotation(context.Background(), AnnotationInput{
		Username: "a", BookID: 5, PageNumber: 1, StartIndex: 0, EndIndex: 4,
	})
	assert.NoError(t, err)

	_, err = env.service.CreateAnnotation(context.Background(), AnnotationInput{
		Username: "a", BookID: 5, PageNumber: 1, StartIndex: 0, EndIndex: 5,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteAnnotation(t *testing.T) {
	env := setupService(t, 2)
	importSample(t, env)
	ctx := context.Background()

	a, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: "alice", BookID: 84, PageNumber: 1, StartIndex: 0, EndIndex: 3})
	require.NoError(t, err)
	_, err = env.service.CreateComment(ctx, a.ID, "bob", "agreed")
	require.NoError(t, err)

	err = env.service.DeleteAnnotation(ctx, a.ID, "bob")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.service.DeleteAnnotation(ctx, a.ID, "alice"))

	_, err = env.service.GetAnnotation(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.service.ListComments(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.service.DeleteAnnotation(ctx, a.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuotedTextRoundTrips(t *testing.T) {
	env := setupService(t, 60)
	ctx := context.Background()

	const (
		title = `Mary's "Modern" Prometheus; DROP TABLE books;--`
		text  = `It's "alive"; he said'--` + "\n" + `'; DELETE FROM comments;--`
		user  = "o'neil"
		note  = `don't "break"`
	)
	env.catalog.add(41, title, text)

	book, err := env.service.EnsureBookImported(ctx, 41)
	require.NoError(t, err)
	assert.Equal(t, title, book.Title)

	page, err := env.service.GetPage(ctx, 41, 1)
	require.NoError(t, err)
	assert.Equal(t, text, page.PageContent)

	a, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: user, BookID: 41, PageNumber: 1, StartIndex: 0, EndIndex: 4})
	require.NoError(t, err)

	row, err := env.service.GetAnnotation(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, user, row.Username)
	assert.Equal(t, title, row.BookTitle)

	_, err = env.service.CreateComment(ctx, a.ID, user, note)
	require.NoError(t, err)

	comments, err := env.service.ListComments(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, note, comments[0].Comment)
	assert.Equal(t, user, comments[0].Username)

	require.NoError(t, env.service.DeleteAnnotation(ctx, a.ID, user))

	var remaining int64
	require.NoError(t, env.db.Model(&entities.Comment{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestComments(t *testing.T) {
	env := setupService(t, 2)
	importSample(t, env)
	ctx := context.Background()

	a, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: "alice", BookID: 84, PageNumber: 2, StartIndex: 0, EndIndex: 3})
	require.NoError(t, err)

	c, err := env.service.CreateComment(ctx, a.ID, "bob", "   spaced out   ")
	require.NoError(t, err)
	assert.Equal(t, "spaced out", c.Comment)

	list, err := env.service.ListComments(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Username)

	grouped, err := env.service.ListCommentsForAnnotations(ctx, []uint{a.ID, 4242})
	require.NoError(t, err)
	assert.Len(t, grouped[a.ID], 1)

	empty, err := env.service.ListCommentsForAnnotations(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCreateComment_Validation(t *testing.T) {
	env := setupService(t, 2)
	importSample(t, env)
	ctx := context.Background()

	a, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: "alice", BookID: 84, PageNumber: 1, StartIndex: 0, EndIndex: 3})
	require.NoError(t, err)

	_, err = env.service.CreateComment(ctx, a.ID, "bob", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.service.CreateComment(ctx, a.ID, "", "hello")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.service.CreateComment(ctx, a.ID, "bob", strings.Repeat("é", MaxCommentLength+1))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.service.CreateComment(ctx, a.ID, "bob", strings.Repeat("é", MaxCommentLength))
	assert.NoError(t, err)

	_, err = env.service.CreateComment(ctx, 9999, "bob", "orphan")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavourites(t *testing.T) {
	env := setupService(t, 60)
	env.catalog.add(84, "Frankenstein", lines(3))
	sched := &fakeScheduler{}
	env.service.SetScheduler(sched)
	ctx := context.Background()

	fav, err := env.service.AddFavourite(ctx, "alice", 84)
	require.NoError(t, err)
	assert.Equal(t, "Frankenstein", fav.Title)
	assert.Equal(t, []uint{84}, sched.ids)

	_, err = env.service.AddFavourite(ctx, "alice", 84)
	require.NoError(t, err, "adding twice is idempotent")

	favs, err := env.service.ListFavourites(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	_, err = env.service.AddFavourite(ctx, "alice", 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.service.AddFavourite(ctx, "", 84)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.service.RemoveFavourite(ctx, "alice", 84))
	assert.ErrorIs(t, env.service.RemoveFavourite(ctx, "alice", 84), ErrNotFound)
}

func TestAddFavourite_UsesStoredTitle(t *testing.T) {
	env := setupService(t, 60)
	env.catalog.add(84, "Frankenstein", lines(3))
	ctx := context.Background()

	_, err := env.service.EnsureBookImported(ctx, 84)
	require.NoError(t, err)
	calls := env.catalog.metaCalls.Load()

	fav, err := env.service.AddFavourite(ctx, "alice", 84)
	require.NoError(t, err)
	assert.Equal(t, "Frankenstein", fav.Title)
	assert.Equal(t, calls, env.catalog.metaCalls.Load(), "no catalog lookup for imported books")
}
