package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() domain.NewProduct {
	return domain.NewProduct{
		Name:        "Desk lamp",
		Description: "Brass, works",
		Price:       25,
		Category:    1,
		Condition:   "like new",
		Location:    "Lyon",
		Images:      []domain.ImageUpload{{Filename: "lamp.jpg", Data: []byte{0xff, 0xd8}}},
	}
}

func TestAddProductValidationNeverReachesBackend(t *testing.T) {
	catalog := mocks.NewMockCatalogAPI(t)
	categories := &CategoryStore{}
	categories.Set(domain.NewReferenceTable(map[int]string{1: "Electronics"}))
	service := NewCatalogService(catalog, mocks.NewMockChatAPI(t), categories, signedIn("u1"))

	cases := map[string]func(*domain.NewProduct){
		"name":      func(p *domain.NewProduct) { p.Name = "  " },
		"price":     func(p *domain.NewProduct) { p.Price = 0 },
		"condition": func(p *domain.NewProduct) { p.Condition = "Broken" },
		"category":  func(p *domain.NewProduct) { p.Category = 99 },
		"location":  func(p *domain.NewProduct) { p.Location = "" },
		"images":    func(p *domain.NewProduct) { p.Images = []domain.ImageUpload{{Filename: "empty.png"}} },
	}
	for field, mutate := range cases {
		product := validProduct()
		mutate(&product)

		_, err := service.AddProduct(context.Background(), product)
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation, field)
		assert.Equal(t, field, validation.Field)
	}
}

func TestAddProductNormalisesAndPosts(t *testing.T) {
	catalog := mocks.NewMockCatalogAPI(t)
	service := NewCatalogService(catalog, mocks.NewMockChatAPI(t), &CategoryStore{}, signedIn("u1"))

	expected := validProduct()
	expected.Condition = "Like New"
	catalog.EXPECT().AddProduct(mockAnyContext(), expected).Return("created", nil)

	product := validProduct()
	product.Name = "  Desk lamp "
	token, err := service.AddProduct(context.Background(), product)
	require.NoError(t, err)
	assert.Equal(t, "created", token)
}

func TestCatalogUnauthorizedClearsSession(t *testing.T) {
	catalog := mocks.NewMockCatalogAPI(t)
	session := signedIn("u1")
	service := NewCatalogService(catalog, mocks.NewMockChatAPI(t), nil, session)

	catalog.EXPECT().Products(mockAnyContext(), "").Return(nil, &domain.AuthError{Status: http.StatusUnauthorized})

	_, err := service.Products(context.Background(), "")
	assert.True(t, domain.IsUnauthorized(err))
	assert.False(t, session.Get().Authenticated)
}

func TestProductRequiresID(t *testing.T) {
	service := NewCatalogService(mocks.NewMockCatalogAPI(t), mocks.NewMockChatAPI(t), nil, signedIn("u1"))

	_, err := service.Product(context.Background(), " ")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestChatsPassesThrough(t *testing.T) {
	chats := mocks.NewMockChatAPI(t)
	service := NewCatalogService(mocks.NewMockCatalogAPI(t), chats, nil, signedIn("u1"))

	summaries := []domain.ChatSummary{{ProductID: "p1", ProductTitle: "Lamp", UnseenCount: 2}}
	chats.EXPECT().Chats(mockAnyContext()).Return(summaries, nil)

	got, err := service.Chats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summaries, got)
}
