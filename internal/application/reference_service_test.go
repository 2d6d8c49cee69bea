package application

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureCategoriesFetchesOnce(t *testing.T) {
	api := mocks.NewMockReferenceAPI(t)
	stores := NewReferenceStores()
	service := NewReferenceService(api, stores, signedIn("u1"))

	table := domain.NewReferenceTable(map[int]string{1: "Electronics", 2: "Fashion"})
	api.EXPECT().Categories(mockAnyContext()).Return(table, nil).Once()

	first, err := service.EnsureCategories(context.Background())
	require.NoError(t, err)
	second, err := service.EnsureCategories(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.False(t, stores.Categories.Loading())
}

func TestRefreshStatusesReplacesTable(t *testing.T) {
	api := mocks.NewMockReferenceAPI(t)
	stores := NewReferenceStores()
	stores.Statuses.Set(domain.NewReferenceTable(map[int]string{1: "Old"}))
	service := NewReferenceService(api, stores, signedIn("u1"))

	api.EXPECT().ProductStatuses(mockAnyContext()).Return(domain.NewReferenceTable(map[int]string{1: "Available", 2: "Sold"}), nil)

	table, err := service.RefreshStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sold", table.Label(2, ""))

	cached, ok := stores.Statuses.Get()
	require.True(t, ok)
	assert.Same(t, table, cached)
}

func TestConcurrentLoadsConverge(t *testing.T) {
	api := mocks.NewMockReferenceAPI(t)
	stores := NewReferenceStores()
	service := NewReferenceService(api, stores, signedIn("u1"))

	api.EXPECT().Categories(mockAnyContext()).Return(domain.NewReferenceTable(map[int]string{1: "Electronics"}), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.LoadCategories(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	table, ok := stores.Categories.Get()
	require.True(t, ok)
	assert.Equal(t, map[int]string{1: "Electronics"}, table.Map())
}

func TestLoadUnauthorizedClearsSession(t *testing.T) {
	api := mocks.NewMockReferenceAPI(t)
	session := signedIn("u1")
	stores := NewReferenceStores()
	service := NewReferenceService(api, stores, session)

	api.EXPECT().Categories(mockAnyContext()).Return(nil, &domain.AuthError{Status: http.StatusUnauthorized})

	_, err := service.LoadCategories(context.Background())
	assert.True(t, domain.IsUnauthorized(err))
	assert.False(t, session.Get().Authenticated)
	_, ok := stores.Categories.Get()
	assert.False(t, ok)
}

func TestEnsureAllStopsAtFirstError(t *testing.T) {
	api := mocks.NewMockReferenceAPI(t)
	service := NewReferenceService(api, NewReferenceStores(), signedIn("u1"))

	api.EXPECT().Categories(mockAnyContext()).Return(nil, &domain.HTTPError{Status: http.StatusInternalServerError})

	err := service.EnsureAll(context.Background())
	assert.ErrorContains(t, err, "load categories")
}

func TestCategoriesStayLoadingUntilEveryLoadFinishes(t *testing.T) {
	api := mocks.NewMockReferenceAPI(t)
	stores := NewReferenceStores()
	service := NewReferenceService(api, stores, signedIn("u1"))

	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	started := make(chan struct{}, 2)
	var mu sync.Mutex
	calls := 0
	api.EXPECT().Categories(mockAnyContext()).
		Return(domain.NewReferenceTable(map[int]string{1: "Electronics"}), nil).
		Times(2).
		Run(func(mock.Arguments) {
			mu.Lock()
			gate := gates[calls]
			calls++
			mu.Unlock()
			started <- struct{}{}
			<-gate
		})

	finished := make(chan struct{}, 2)
	for range 2 {
		go func() {
			_, err := service.LoadCategories(context.Background())
			assert.NoError(t, err)
			finished <- struct{}{}
		}()
	}
	<-started
	<-started
	assert.True(t, stores.Categories.Loading())

	close(gates[0])
	<-finished
	assert.True(t, stores.Categories.Loading())

	close(gates[1])
	<-finished
	assert.False(t, stores.Categories.Loading())
}
