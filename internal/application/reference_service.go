package application

import (
	"context"
	"fmt"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
)

type ReferenceService struct {
	api     ports.ReferenceAPI
	stores  ReferenceStores
	session *SessionStore
}

func NewReferenceService(api ports.ReferenceAPI, stores ReferenceStores, session *SessionStore) *ReferenceService {
	return &ReferenceService{api: api, stores: stores, session: session}
}

func (s *ReferenceService) LoadCategories(ctx context.Context) (*domain.CategoryTable, error) {
	return loadInto(ctx, s.stores.Categories, s.session, "categories", s.api.Categories)
}

func (s *ReferenceService) LoadStatuses(ctx context.Context) (*domain.StatusTable, error) {
	return loadInto(ctx, s.stores.Statuses, s.session, "product statuses", s.api.ProductStatuses)
}

// EnsureCategories returns the cached table, fetching it only when absent.
func (s *ReferenceService) EnsureCategories(ctx context.Context) (*domain.CategoryTable, error) {
	if table, ok := s.stores.Categories.Get(); ok {
		return table, nil
	}
	return s.LoadCategories(ctx)
}

func (s *ReferenceService) EnsureStatuses(ctx context.Context) (*domain.StatusTable, error) {
	if table, ok := s.stores.Statuses.Get(); ok {
		return table, nil
	}
	return s.LoadStatuses(ctx)
}

func (s *ReferenceService) RefreshCategories(ctx context.Context) (*domain.CategoryTable, error) {
	s.stores.Categories.Clear()
	return s.LoadCategories(ctx)
}

func (s *ReferenceService) RefreshStatuses(ctx context.Context) (*domain.StatusTable, error) {
	s.stores.Statuses.Clear()
	return s.LoadStatuses(ctx)
}

// EnsureAll loads both tables, returning the first error.
func (s *ReferenceService) EnsureAll(ctx context.Context) error {
	if _, err := s.EnsureCategories(ctx); err != nil {
		return err
	}
	_, err := s.EnsureStatuses(ctx)
	return err
}

func loadInto(
	ctx context.Context,
	store *ReferenceStore[int, string],
	session *SessionStore,
	what string,
	fetch func(context.Context) (*domain.ReferenceTable[int, string], error),
) (*domain.ReferenceTable[int, string], error) {
	done := store.BeginLoad()
	defer done()

	table, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", what, clearOnUnauthorized(session, err))
	}
	store.Set(table)
	return table, nil
}
