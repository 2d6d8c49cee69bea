package domain

import "time"

type Message struct {
	ID        string    `json:"m_id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	ProductID ProductID `json:"productId,omitempty"`
	CreatedAt time.Time `json:"created"`
	Seen      bool      `json:"seen"`
}

type SendMessageRequest struct {
	Content   string    `json:"content"`
	Receiver  string    `json:"receiver"`
	ProductID ProductID `json:"productId"`
}

type ChatSummary struct {
	SenderFirstName string    `json:"senderFirstName"`
	SenderLastName  string    `json:"senderLastName"`
	ProductID       ProductID `json:"productId"`
	ProductTitle    string    `json:"productTitle"`
	ProductImage    string    `json:"productImage"`
	UnseenCount     int       `json:"unseenCount"`
}

// ConversationKey identifies one buyer/seller conversation about a product.
type ConversationKey struct {
	ProductID     ProductID
	CounterpartID string
}

// Involves reports whether a message exchanged between self and the
// counterpart, in either direction, belongs to this conversation.
func (k ConversationKey) Involves(self string, productID ProductID, sender, receiver string) bool {
	if productID != k.ProductID {
		return false
	}
	if sender == k.CounterpartID && receiver == self {
		return true
	}
	return sender == self && receiver == k.CounterpartID
}
