package paging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itd-social/itd-client/internal/client/api"
)

type item struct {
	ID   string
	Body string
}

func itemID(it item) string { return it.ID }

// pageFetcher replays scripted pages and records the cursors it was asked
// for.
type pageFetcher struct {
	pages   [][]item
	cursors []string
	asked   []string
	calls   int
	err     error
}

func (f *pageFetcher) fetch(ctx context.Context, cursor string, limit int) ([]item, string, error) {
	f.asked = append(f.asked, cursor)
	if f.err != nil {
		return nil, "", f.err
	}
	i := f.calls
	f.calls++
	if i >= len(f.pages) {
		return nil, "", nil
	}
	return f.pages[i], f.cursors[i], nil
}

func TestNext_CursorRoundTrip(t *testing.T) {
	f := &pageFetcher{
		pages:   [][]item{{{ID: "1"}, {ID: "2"}}, {{ID: "3"}}},
		cursors: []string{"c1", ""},
	}
	p := New(f.fetch, itemID, 20)

	first, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.False(t, p.Exhausted())

	second, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.True(t, p.Exhausted())

	// first page asks with no cursor, second with the returned one
	require.Equal(t, []string{"", "c1"}, f.asked)
	require.Equal(t, 3, p.Len())
}

func TestNext_DeduplicatesOverlappingPages(t *testing.T) {
	f := &pageFetcher{
		pages: [][]item{
			{{ID: "1", Body: "a"}, {ID: "2", Body: "b"}},
			// the list shifted server-side, page two re-serves id 2
			{{ID: "2", Body: "b2"}, {ID: "3", Body: "c"}},
		},
		cursors: []string{"c1", "c2"},
	}
	p := New(f.fetch, itemID, 20)

	_, err := p.Next(context.Background())
	require.NoError(t, err)
	appended, err := p.Next(context.Background())
	require.NoError(t, err)

	require.Len(t, appended, 1)
	require.Equal(t, "3", appended[0].ID)

	items := p.Items()
	require.Len(t, items, 3)
	// the first occurrence wins
	require.Equal(t, "b", items[1].Body)
}

func TestNext_EmptyPageExhausts(t *testing.T) {
	f := &pageFetcher{
		pages:   [][]item{{{ID: "1"}}, {}},
		cursors: []string{"c1", "c2"},
	}
	p := New(f.fetch, itemID, 20)

	_, err := p.Next(context.Background())
	require.NoError(t, err)
	_, err = p.Next(context.Background())
	require.NoError(t, err)
	require.True(t, p.Exhausted())

	// exhausted paginator stops hitting the network
	out, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Nil(t, out)
	require.Equal(t, 2, f.calls)
}

func TestNext_ErrorDoesNotAdvance(t *testing.T) {
	f := &pageFetcher{err: api.ErrUnavailable}
	p := New(f.fetch, itemID, 20)

	_, err := p.Next(context.Background())
	require.ErrorIs(t, err, api.ErrUnavailable)
	require.False(t, p.Exhausted())

	// a retry starts from the same cursor
	f.err = nil
	f.pages = [][]item{{{ID: "1"}}}
	f.cursors = []string{""}
	_, err = p.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"", ""}, f.asked)
}

func TestReset_StartsOver(t *testing.T) {
	f := &pageFetcher{
		pages:   [][]item{{{ID: "1"}}, {{ID: "1"}, {ID: "2"}}},
		cursors: []string{"", ""},
	}
	p := New(f.fetch, itemID, 20)

	_, err := p.Next(context.Background())
	require.NoError(t, err)
	require.True(t, p.Exhausted())

	p.Reset()
	require.False(t, p.Exhausted())
	require.Zero(t, p.Len())

	// id 1 is not a duplicate after a reset
	appended, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, appended, 2)
}

func TestReset_DiscardsInFlightPage(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(ctx context.Context, cursor string, limit int) ([]item, string, error) {
		close(started)
		<-release
		return []item{{ID: "stale"}}, "c1", nil
	}
	p := New(fetch, itemID, 20)

	done := make(chan struct{})
	go func() {
		defer close(done)
		out, err := p.Next(context.Background())
		require.NoError(t, err)
		require.Nil(t, out)
	}()

	<-started
	p.Reset()
	close(release)
	<-done

	// the stale page never lands
	require.Zero(t, p.Len())
	require.False(t, p.Exhausted())
}

func TestItems_ReturnsCopy(t *testing.T) {
	f := &pageFetcher{pages: [][]item{{{ID: "1", Body: "a"}}}, cursors: []string{""}}
	p := New(f.fetch, itemID, 20)

	_, err := p.Next(context.Background())
	require.NoError(t, err)

	items := p.Items()
	items[0].Body = "mutated"
	require.Equal(t, "a", p.Items()[0].Body)
}
