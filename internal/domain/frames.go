package domain

import (
	"encoding/json"
	"fmt"
)

type FrameType string

const (
	FrameMessage      FrameType = "message"
	FrameNotification FrameType = "notification"
	FrameUpdateView   FrameType = "update_view"
)

// MessageFrame is pushed to a receiver that is viewing the conversation's
// product.
type MessageFrame struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	ProductID ProductID `json:"productId"`
	MessageID string    `json:"m_id"`
}

func (f MessageFrame) Message() Message {
	return Message{
		ID:        f.MessageID,
		Content:   f.Content,
		Sender:    f.Sender,
		Receiver:  f.Receiver,
		ProductID: f.ProductID,
	}
}

// NotificationFrame is pushed to an online receiver that is not viewing the
// conversation's product.
type NotificationFrame struct {
	ProductID ProductID `json:"productId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	MessageID string    `json:"m_id"`
}

// InboundFrame is the decoded form of a server push. Exactly one of Message
// and Notification is set, matching Type.
type InboundFrame struct {
	Type         FrameType
	Message      *MessageFrame
	Notification *NotificationFrame
}

type UpdateViewFrame struct {
	Type      FrameType `json:"type"`
	ProductID ProductID `json:"productId"`
}

func NewUpdateViewFrame(productID ProductID) UpdateViewFrame {
	return UpdateViewFrame{Type: FrameUpdateView, ProductID: productID}
}

// DecodeInboundFrame parses a raw socket frame. Unknown frame types are
// reported with known == false and a nil error.
func DecodeInboundFrame(data []byte) (frame InboundFrame, known bool, err error) {
	var envelope struct {
		Type FrameType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return InboundFrame{}, false, &ParseError{Err: err}
	}

	switch envelope.Type {
	case FrameMessage:
		var payload MessageFrame
		if err := json.Unmarshal(data, &payload); err != nil {
			return InboundFrame{}, false, &ParseError{Err: fmt.Errorf("decode message frame: %w", err)}
		}
		return InboundFrame{Type: FrameMessage, Message: &payload}, true, nil
	case FrameNotification:
		var payload NotificationFrame
		if err := json.Unmarshal(data, &payload); err != nil {
			return InboundFrame{}, false, &ParseError{Err: fmt.Errorf("decode notification frame: %w", err)}
		}
		return InboundFrame{Type: FrameNotification, Notification: &payload}, true, nil
	default:
		return InboundFrame{Type: envelope.Type}, false, nil
	}
}
