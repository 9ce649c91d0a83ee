package reader

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/easyreads/easyreads/internal/database/annotations"
	"github.com/easyreads/easyreads/internal/entities"
)

// AnnotationView is an annotation ready for display.
type AnnotationView struct {
	annotations.Row
	Text     string             `json:"text,omitempty"`
	Comments []entities.Comment `json:"comments"`
}

// Profile aggregates what a user has collected.
type Profile struct {
	Username      string                  `json:"username"`
	FavoriteBooks []entities.FavoriteBook `json:"favorite_books"`
	Annotations   []AnnotationView        `json:"annotations"`
}

// PageView is everything the reader screen needs for one page.
type PageView struct {
	Book            *entities.Book   `json:"book"`
	PageNumber      int              `json:"page_number"`
	PageContent     string           `json:"page_content"`
	PrevPage        int              `json:"prev_page,omitempty"`
	NextPage        int              `json:"next_page,omitempty"`
	Segments        []Segment        `json:"segments"`
	PageAnnotations []AnnotationView `json:"page_annotations"`
	Annotations     []AnnotationView `json:"annotations"`
}

// Segment is a run of page text that is either plain or covered by one or
// more annotations.
type Segment struct {
	Text          string `json:"text"`
	AnnotationIDs []uint `json:"annotation_ids,omitempty"`
}

func (s Segment) Highlighted() bool {
	return len(s.AnnotationIDs) > 0
}

// ProfileView loads a user's favourites and annotations. Each annotation
// carries its comments. Slices are empty, not nil, when there is nothing.
func (s *Service) ProfileView(ctx context.Context, username string) (*Profile, error) {
	profile := &Profile{Username: username}

	var rows []annotations.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		favs, err := s.favourites.ListForUser(gctx, username)
		if err != nil {
			return fmt.Errorf("list favourites of %s: %w", username, err)
		}
		profile.FavoriteBooks = favs
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = s.annotations.ListForUser(gctx, username)
		if err != nil {
			return fmt.Errorf("list annotations of %s: %w", username, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views, err := s.attachComments(ctx, rows)
	if err != nil {
		return nil, err
	}
	profile.Annotations = views
	if profile.FavoriteBooks == nil {
		profile.FavoriteBooks = []entities.FavoriteBook{}
	}
	return profile, nil
}

// PageView imports the book if needed and assembles one reader page.
func (s *Service) PageView(ctx context.Context, bookID uint, pageNumber int) (*PageView, error) {
	book, err := s.EnsureBookImported(ctx, bookID)
	if err != nil {
		return nil, err
	}

	page, err := s.GetPage(ctx, bookID, pageNumber)
	if err != nil {
		return nil, err
	}

	rows, err := s.annotations.ListForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list annotations for book %d: %w", bookID, err)
	}
	all, err := s.attachComments(ctx, rows)
	if err != nil {
		return nil, err
	}

	onPage := []AnnotationView{}
	for _, v := range all {
		if v.PageNumber == pageNumber {
			v.Text = sliceRunes(page.PageContent, v.StartIndex, v.EndIndex)
			onPage = append(onPage, v)
		}
	}
	sort.SliceStable(onPage, func(i, j int) bool {
		if onPage[i].StartIndex != onPage[j].StartIndex {
			return onPage[i].StartIndex < onPage[j].StartIndex
		}
		return onPage[i].ID < onPage[j].ID
	})

	view := &PageView{
		Book:            book,
		PageNumber:      pageNumber,
		PageContent:     page.PageContent,
		Segments:        HighlightSegments(page.PageContent, onPage),
		PageAnnotations: onPage,
		Annotations:     all,
	}
	if pageNumber > 1 {
		view.PrevPage = pageNumber - 1
	}
	if pageNumber < book.PagesInBook {
		view.NextPage = pageNumber + 1
	}
	return view, nil
}

func (s *Service) attachComments(ctx context.Context, rows []annotations.Row) ([]AnnotationView, error) {
	views := make([]AnnotationView, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}

	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	grouped, err := s.comments.ListForAnnotations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	for _, r := range rows {
		comments := grouped[r.ID]
		if comments == nil {
			comments = []entities.Comment{}
		}
		views = append(views, AnnotationView{Row: r, Comments: comments})
	}
	return views, nil
}

// HighlightSegments cuts content at every annotation boundary so each segment
// is covered by a fixed set of annotations. Ranges outside the content are
// clipped. Concatenating the segment texts yields content.
func HighlightSegments(content string, views []AnnotationView) []Segment {
	runes := []rune(content)
	n := len(runes)

	cuts := map[int]struct{}{0: {}, n: {}}
	for _, v := range views {
		start, end := clamp(v.StartIndex, n), clamp(v.EndIndex, n)
		if start < end {
			cuts[start] = struct{}{}
			cuts[end] = struct{}{}
		}
	}
	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		bounds = append(bounds, c)
	}
	sort.Ints(bounds)

	segments := []Segment{}
	for i := 0; i+1 < len(bounds); i++ {
		from, to := bounds[i], bounds[i+1]
		var ids []uint
		for _, v := range views {
			if v.StartIndex <= from && to <= v.EndIndex {
				ids = append(ids, v.ID)
			}
		}
		// Merge neighbours with the same coverage.
		if last := len(segments) - 1; last >= 0 && sameIDs(segments[last].AnnotationIDs, ids) {
			segments[last].Text += string(runes[from:to])
			continue
		}
		segments = append(segments, Segment{Text: string(runes[from:to]), AnnotationIDs: ids})
	}
	return segments
}

func sliceRunes(s string, start, end int) string {
	runes := []rune(s)
	start, end = clamp(start, len(runes)), clamp(end, len(runes))
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

func sameIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
