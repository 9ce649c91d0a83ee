package reader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/entities"
)

func TestProfileView_Empty(t *testing.T) {
	env := setupService(t, 60)

	profile, err := env.service.ProfileView(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", profile.Username)
	assert.NotNil(t, profile.FavoriteBooks)
	assert.NotNil(t, profile.Annotations)
	assert.Empty(t, profile.FavoriteBooks)
	assert.Empty(t, profile.Annotations)
}

func TestProfileView(t *testing.T) {
	env := setupService(t, 2)
	importSample(t, env)
	ctx := context.Background()

	_, err := env.service.AddFavourite(ctx, "alice", 84)
	require.NoError(t, err)

	mine, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: "alice", BookID: 84, PageNumber: 1, StartIndex: 0, EndIndex: 3})
	require.NoError(t, err)
	_, err = env.service.CreateAnnotation(ctx, AnnotationInput{Username: "bob", BookID: 84, PageNumber: 1, StartIndex: 4, EndIndex: 8})
	require.NoError(t, err)
	_, err = env.service.CreateComment(ctx, mine.ID, "bob", "nice")
	require.NoError(t, err)

	profile, err := env.service.ProfileView(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, profile.FavoriteBooks, 1)
	require.Len(t, profile.Annotations, 1)
	assert.Equal(t, mine.ID, profile.Annotations[0].ID)
	assert.Equal(t, "Frankenstein", profile.Annotations[0].BookTitle)
	require.Len(t, profile.Annotations[0].Comments, 1)
	assert.Equal(t, "nice", profile.Annotations[0].Comments[0].Comment)
}

func TestPageView(t *testing.T) {
	env := setupService(t, 2)
	env.catalog.add(84, "Frankenstein", "You will rejoice to hear\nthat no disaster\nhas accompanied")
	ctx := context.Background()

	// First view triggers the import.
	view, err := env.service.PageView(ctx, 84, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Book.PagesInBook)
	assert.Zero(t, view.PrevPage)
	assert.Equal(t, 2, view.NextPage)
	assert.Empty(t, view.PageAnnotations)
	assert.Equal(t, []Segment{{Text: view.PageContent}}, view.Segments)

	a, err := env.service.CreateAnnotation(ctx, AnnotationInput{Username: "alice", BookID: 84, PageNumber: 1, StartIndex: 4, EndIndex: 8})
	require.NoError(t, err)
	_, err = env.service.CreateAnnotation(ctx, AnnotationInput{Username: "alice", BookID: 84, PageNumber: 2, StartIndex: 0, EndIndex: 3})
	require.NoError(t, err)
	_, err = env.service.CreateComment(ctx, a.ID, "bob", "why will?")
	require.NoError(t, err)

	view, err = env.service.PageView(ctx, 84, 1)
	require.NoError(t, err)
	require.Len(t, view.PageAnnotations, 1)
	assert.Equal(t, "will", view.PageAnnotations[0].Text)
	require.Len(t, view.PageAnnotations[0].Comments, 1)
	assert.Len(t, view.Annotations, 2, "whole-book annotations are included")

	view, err = env.service.PageView(ctx, 84, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, view.PrevPage)
	assert.Zero(t, view.NextPage)
	assert.Equal(t, "has accompanied", view.PageContent)

	_, err = env.service.PageView(ctx, 84, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func annView(id uint, start, end int) AnnotationView {
	return AnnotationView{Row: annotations.Row{Annotation: entities.Annotation{ID: id, StartIndex: start, EndIndex: end}}}
}

func TestHighlightSegments(t *testing.T) {
	content := "abcdefghij"

	t.Run("no annotations", func(t *testing.T) {
		assert.Equal(t, []Segment{{Text: content}}, HighlightSegments(content, nil))
	})

	t.Run("single range", func(t *testing.T) {
		segs := HighlightSegments(content, []AnnotationView{annView(1, 2, 5)})
		assert.Equal(t, []Segment{
			{Text: "ab"},
			{Text: "cde", AnnotationIDs: []uint{1}},
			{Text: "fghij"},
		}, segs)
	})

	t.Run("overlapping ranges", func(t *testing.T) {
		segs := HighlightSegments(content, []AnnotationView{annView(1, 0, 4), annView(2, 2, 6)})
		assert.Equal(t, []Segment{
			{Text: "ab", AnnotationIDs: []uint{1}},
			{Text: "cd", AnnotationIDs: []uint{1, 2}},
			{Text: "ef", AnnotationIDs: []uint{2}},
			{Text: "ghij"},
		}, segs)
	})

	t.Run("clipped range", func(t *testing.T) {
		segs := HighlightSegments(content, []AnnotationView{annView(1, 8, 50)})
		require.Len(t, segs, 2)
		assert.Equal(t, "ij", segs[1].Text)
		assert.True(t, segs[1].Highlighted())
	})

	t.Run("multibyte content", func(t *testing.T) {
		segs := HighlightSegments("naïve café", []AnnotationView{annView(1, 6, 10)})
		require.Len(t, segs, 2)
		assert.Equal(t, "café", segs[1].Text)
	})

	t.Run("segments rebuild content", func(t *testing.T) {
		segs := HighlightSegments(content, []AnnotationView{annView(1, 1, 3), annView(2, 5, 9), annView(3, 2, 7)})
		var b strings.Builder
		for _, s := range segs {
			b.WriteString(s.Text)
		}
		assert.Equal(t, content, b.String())
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Empty(t, HighlightSegments("", []AnnotationView{annView(1, 0, 2)}))
	})
}
