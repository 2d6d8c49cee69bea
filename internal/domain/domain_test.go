package domain

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceTableDecodesNumericKeys(t *testing.T) {
	var raw map[int]string
	require.NoError(t, json.Unmarshal([]byte(`{"1":"Electronics","2":"Fashion"}`), &raw))

	table := NewReferenceTable(raw)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []int{1, 2}, table.Keys())
	label, ok := table.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Electronics", label)
	assert.Equal(t, "Other", table.Label(99, "Other"))
}

func TestReferenceTableIsImmutableAfterConstruction(t *testing.T) {
	source := map[int]string{1: "Active"}
	table := NewReferenceTable(source)

	source[1] = "Changed"
	copied := table.Map()
	copied[2] = "Added"

	assert.Equal(t, map[int]string{1: "Active"}, table.Map())
}

func TestReferenceTableNilIsEmpty(t *testing.T) {
	var table *CategoryTable

	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Entries())
	_, ok := table.Lookup(1)
	assert.False(t, ok)
}

func TestDecodeInboundFrame(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  FrameType
		wantKnown bool
		wantErr   bool
	}{
		{name: "message", raw: `{"type":"message","content":"hi","sender":"u2","receiver":"u1","productId":"p1","m_id":"m1"}`, wantType: FrameMessage, wantKnown: true},
		{name: "notification", raw: `{"type":"notification","productId":"p1","sender":"u2","content":"hi","m_id":"m1"}`, wantType: FrameNotification, wantKnown: true},
		{name: "unknown type is ignored", raw: `{"type":"presence","user":"u2"}`, wantType: "presence"},
		{name: "malformed json", raw: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, known, err := DecodeInboundFrame([]byte(tt.raw))
			if tt.wantErr {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.wantType, frame.Type)
		})
	}
}

func TestMessageFrameToMessage(t *testing.T) {
	frame, _, err := DecodeInboundFrame([]byte(`{"type":"message","content":"hi","sender":"u2","receiver":"u1","productId":"p1","m_id":"m1"}`))
	require.NoError(t, err)

	msg := frame.Message.Message()
	assert.Equal(t, Message{ID: "m1", Content: "hi", Sender: "u2", Receiver: "u1", ProductID: "p1"}, msg)
}

func TestConversationKeyInvolves(t *testing.T) {
	key := ConversationKey{ProductID: "p1", CounterpartID: "seller"}

	assert.True(t, key.Involves("me", "p1", "seller", "me"))
	assert.True(t, key.Involves("me", "p1", "me", "seller"))
	assert.False(t, key.Involves("me", "p2", "seller", "me"))
	assert.False(t, key.Involves("me", "p1", "stranger", "me"))
}

func TestUpdateViewFrameEncoding(t *testing.T) {
	data, err := json.Marshal(NewUpdateViewFrame("p1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"update_view","productId":"p1"}`, string(data))
}

func TestErrorClassification(t *testing.T) {
	unauthorized := &AuthError{Status: http.StatusUnauthorized}
	forbidden := &AuthError{Status: http.StatusForbidden}

	assert.True(t, IsUnauthorized(errors.Join(errors.New("wrapped"), unauthorized)))
	assert.False(t, IsUnauthorized(forbidden))
	assert.True(t, IsForbidden(forbidden))
	assert.Equal(t, "HTTP 500", (&HTTPError{Status: 500}).Error())
	assert.Equal(t, "boom", (&HTTPError{Status: 500, Message: "boom"}).Error())
	assert.Equal(t, "price: must be greater than zero", (&ValidationError{Field: "price", Message: "must be greater than zero"}).Error())
}

func TestValidCondition(t *testing.T) {
	assert.True(t, ValidCondition("like new"))
	assert.True(t, ValidCondition(" Poor "))
	assert.False(t, ValidCondition("Broken"))
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "a@b.com", User{Email: "a@b.com"}.DisplayName())
}

func TestUserUnmarshalAcceptsBackendNameField(t *testing.T) {
	var user User
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u1","name":"Ada","lastName":"Lovelace","email":"a@b.com"}`), &user))
	assert.Equal(t, User{UserID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "a@b.com"}, user)

	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u2","firstName":"Grace"}`), &user))
	assert.Equal(t, "Grace", user.FirstName)
}
