package history

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func pageOf(page models.PageQuery) api.Paged[string] {
	return api.Paged[string]{
		Items:      []string{fmt.Sprintf("page-%d", page.Page)},
		Pagination: models.Pagination{Current: page.Page, Pages: 5, Total: 100, Limit: 20},
	}
}

func TestLoadUpdatesState(t *testing.T) {
	fetch := func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[string], error) {
		return pageOf(page), nil
	}
	view := NewListView(fetch, testLogger(t))

	state, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"page-1"}, state.Items)
	assert.Equal(t, 1, state.Pagination.Current)
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
}

func TestStaleResponseDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	firstRelease := make(chan struct{})

	fetch := func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[string], error) {
		if page.Page == 1 {
			close(firstStarted)
			<-firstRelease
		}
		return pageOf(page), nil
	}
	view := NewListView(fetch, testLogger(t))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		view.Load(context.Background()) // page 1, will finish last
	}()

	<-firstStarted
	view.SetPage(2)
	state, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"page-2"}, state.Items)

	close(firstRelease)
	wg.Wait()

	// the late page-1 response must not overwrite the newer page-2 state
	final := view.State()
	assert.Equal(t, []string{"page-2"}, final.Items)
	assert.Equal(t, 2, final.Pagination.Current)
}

func TestSetFilterResetsToFirstPage(t *testing.T) {
	var gotPage models.PageQuery
	var gotFilter *models.HistoryFilter
	fetch := func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[string], error) {
		gotPage, gotFilter = page, filter
		return pageOf(page), nil
	}
	view := NewListView(fetch, testLogger(t))

	view.SetPage(4)
	_, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, gotPage.Page)

	filter := &models.HistoryFilter{Status: models.RequestStatusCompleted}
	view.SetFilter(filter)
	_, err = view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gotPage.Page, "filter change resets pagination")
	assert.Equal(t, filter, gotFilter)
}

func TestSetPageAndLimitClamped(t *testing.T) {
	var gotPage models.PageQuery
	fetch := func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[string], error) {
		gotPage = page
		return pageOf(page), nil
	}
	view := NewListView(fetch, testLogger(t))

	view.SetPage(-3)
	view.SetLimit(9999)
	_, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gotPage.Page)
	assert.Equal(t, models.MaxPageSize, gotPage.Limit)
}

func TestLoadErrorSurfacedInState(t *testing.T) {
	boom := fmt.Errorf("backend down")
	fetch := func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[string], error) {
		return api.Paged[string]{}, boom
	}
	view := NewListView(fetch, testLogger(t))

	state, err := view.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, state.Err, boom)
	assert.False(t, state.Loading)

	// a later successful load clears the error
	ok := func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[string], error) {
		return pageOf(page), nil
	}
	view.fetch = ok
	state, err = view.Load(context.Background())
	require.NoError(t, err)
	assert.NoError(t, state.Err)
	assert.NotEmpty(t, state.Items)
}
