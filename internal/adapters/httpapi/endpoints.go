package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
)

var _ ports.MarketplaceAPI = (*Client)(nil)

func (c *Client) Session(ctx context.Context) (domain.User, error) {
	return Get[domain.User](ctx, c, "auth/session")
}

func (c *Client) Login(ctx context.Context, data domain.LoginData) (domain.User, error) {
	return Mutate[domain.User](ctx, c, "login", MutateOptions{Method: http.MethodPost, Body: data})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := Mutate[struct{}](ctx, c, "logout", MutateOptions{Method: http.MethodPut, Body: struct{}{}})
	return err
}

func (c *Client) Register(ctx context.Context, registration domain.Registration) (string, error) {
	return Mutate[string](ctx, c, "register", MutateOptions{Method: http.MethodPost, Body: registration})
}

func (c *Client) Categories(ctx context.Context) (*domain.CategoryTable, error) {
	raw, err := Get[map[int]string](ctx, c, "category")
	if err != nil {
		return nil, err
	}
	return domain.NewReferenceTable(raw), nil
}

func (c *Client) ProductStatuses(ctx context.Context) (*domain.StatusTable, error) {
	raw, err := Get[map[int]string](ctx, c, "productstatus")
	if err != nil {
		return nil, err
	}
	return domain.NewReferenceTable(raw), nil
}

// Products lists the signed-in user's products, or another user's when
// userID is set.
func (c *Client) Products(ctx context.Context, userID string) ([]domain.Product, error) {
	path := "product"
	if userID != "" {
		path += "?" + url.Values{"id": {userID}}.Encode()
	}

	products, err := Get[[]domain.Product](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	product, err := Get[domain.Product](ctx, c, "product/"+url.PathEscape(string(id)))
	if err != nil {
		var httpErr *domain.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return domain.Product{}, fmt.Errorf("product %s: %w", id, errors.Join(domain.ErrProductNotFound, err))
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (c *Client) AddProduct(ctx context.Context, product domain.NewProduct) (string, error) {
	body := &Multipart{}
	body.AddField("name", product.Name)
	body.AddField("description", product.Description)
	body.AddField("price", strconv.FormatFloat(product.Price, 'f', -1, 64))
	body.AddField("category", strconv.Itoa(product.Category))
	body.AddField("condition", product.Condition)
	body.AddField("location", product.Location)
	for _, image := range product.Images {
		body.AddFile("images", image.Filename, image.Data)
	}

	return Mutate[string](ctx, c, "product", MutateOptions{Method: http.MethodPost, Body: body})
}

func (c *Client) Chats(ctx context.Context) ([]domain.ChatSummary, error) {
	chats, err := Get[[]domain.ChatSummary](ctx, c, "chats")
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []domain.ChatSummary{}
	}
	return chats, nil
}

func (c *Client) Messages(ctx context.Context, productID domain.ProductID, userID string) ([]domain.Message, error) {
	query := url.Values{}
	query.Set("product_id", string(productID))
	query.Set("user_id", userID)

	messages, err := Get[[]domain.Message](ctx, c, "chat/messages?"+query.Encode())
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, req domain.SendMessageRequest) (domain.Message, error) {
	return Mutate[domain.Message](ctx, c, "chat/send", MutateOptions{Method: http.MethodPost, Body: req})
}

func (c *Client) MarkSeen(ctx context.Context, senderID string) error {
	path := "chat/seen?" + url.Values{"sender_id": {senderID}}.Encode()
	_, err := Mutate[struct{}](ctx, c, path, MutateOptions{Method: http.MethodPut})
	return err
}

func (c *Client) OnlineUsers(ctx context.Context) ([]string, error) {
	payload, err := Get[struct {
		OnlineUsers []string `json:"online_users"`
	}](ctx, c, "chat/online")
	if err != nil {
		return nil, err
	}
	return payload.OnlineUsers, nil
}
