package ports

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/domain"
)

type AuthAPI interface {
	Session(ctx context.Context) (domain.User, error)
	Login(ctx context.Context, data domain.LoginData) (domain.User, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, registration domain.Registration) (string, error)
}

type ReferenceAPI interface {
	Categories(ctx context.Context) (*domain.CategoryTable, error)
	ProductStatuses(ctx context.Context) (*domain.StatusTable, error)
}

type CatalogAPI interface {
	Products(ctx context.Context, userID string) ([]domain.Product, error)
	Product(ctx context.Context, id domain.ProductID) (domain.Product, error)
	AddProduct(ctx context.Context, product domain.NewProduct) (string, error)
}

type ChatAPI interface {
	Chats(ctx context.Context) ([]domain.ChatSummary, error)
	Messages(ctx context.Context, productID domain.ProductID, userID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, req domain.SendMessageRequest) (domain.Message, error)
	MarkSeen(ctx context.Context, senderID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
}

type MarketplaceAPI interface {
	AuthAPI
	ReferenceAPI
	CatalogAPI
	ChatAPI
}
