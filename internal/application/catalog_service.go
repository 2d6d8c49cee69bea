package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
)

const maxProductImages = 10

type CatalogService struct {
	catalog    ports.CatalogAPI
	chats      ports.ChatAPI
	categories *CategoryStore
	session    *SessionStore
}

func NewCatalogService(catalog ports.CatalogAPI, chats ports.ChatAPI, categories *CategoryStore, session *SessionStore) *CatalogService {
	return &CatalogService{catalog: catalog, chats: chats, categories: categories, session: session}
}

// Products lists the signed-in user's listings, or userID's when set.
func (s *CatalogService) Products(ctx context.Context, userID string) ([]domain.Product, error) {
	products, err := s.catalog.Products(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", clearOnUnauthorized(s.session, err))
	}
	return products, nil
}

func (s *CatalogService) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	if strings.TrimSpace(string(id)) == "" {
		return domain.Product{}, &domain.ValidationError{Field: "id", Message: "product id is required"}
	}

	product, err := s.catalog.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", clearOnUnauthorized(s.session, err))
	}
	return product, nil
}

// AddProduct validates the listing locally and posts it. Validation failures
// never reach the backend.
func (s *CatalogService) AddProduct(ctx context.Context, product domain.NewProduct) (string, error) {
	product.Name = strings.TrimSpace(product.Name)
	product.Description = strings.TrimSpace(product.Description)
	product.Location = strings.TrimSpace(product.Location)
	product.Condition = canonicalCondition(product.Condition)

	if err := s.validate(product); err != nil {
		return "", err
	}

	token, err := s.catalog.AddProduct(ctx, product)
	if err != nil {
		return "", fmt.Errorf("add product: %w", clearOnUnauthorized(s.session, err))
	}
	return token, nil
}

func (s *CatalogService) Chats(ctx context.Context) ([]domain.ChatSummary, error) {
	chats, err := s.chats.Chats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", clearOnUnauthorized(s.session, err))
	}
	return chats, nil
}

func (s *CatalogService) validate(product domain.NewProduct) error {
	if product.Name == "" {
		return &domain.ValidationError{Field: "name", Message: "name is required"}
	}
	if product.Price <= 0 {
		return &domain.ValidationError{Field: "price", Message: "price must be greater than 0"}
	}
	if !domain.ValidCondition(product.Condition) {
		return &domain.ValidationError{
			Field:   "condition",
			Message: fmt.Sprintf("condition must be one of %s", strings.Join(domain.Conditions, ", ")),
		}
	}
	if s.categories != nil {
		if table, ok := s.categories.Get(); ok {
			if _, known := table.Lookup(product.Category); !known {
				return &domain.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %d", product.Category)}
			}
		}
	}
	if product.Location == "" {
		return &domain.ValidationError{Field: "location", Message: "location is required"}
	}
	if len(product.Images) > maxProductImages {
		return &domain.ValidationError{Field: "images", Message: fmt.Sprintf("at most %d images are allowed", maxProductImages)}
	}
	for _, image := range product.Images {
		if len(image.Data) == 0 {
			return &domain.ValidationError{Field: "images", Message: fmt.Sprintf("image %q is empty", image.Filename)}
		}
	}
	return nil
}

func canonicalCondition(condition string) string {
	condition = strings.TrimSpace(condition)
	for _, known := range domain.Conditions {
		if strings.EqualFold(known, condition) {
			return known
		}
	}
	return condition
}
