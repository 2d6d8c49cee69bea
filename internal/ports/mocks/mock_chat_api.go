package mocks

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockChatAPI struct {
	mock.Mock
}

type MockChatAPI_Expecter struct {
	mock *mock.Mock
}

func NewMockChatAPI(t testingT) *MockChatAPI {
	m := &MockChatAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockChatAPI) EXPECT() *MockChatAPI_Expecter {
	return &MockChatAPI_Expecter{mock: &_m.Mock}
}

func (_m *MockChatAPI) Chats(ctx context.Context) ([]domain.ChatSummary, error) {
	ret := _m.Called(ctx)
	chats, _ := ret.Get(0).([]domain.ChatSummary)
	return chats, ret.Error(1)
}

func (_e *MockChatAPI_Expecter) Chats(ctx interface{}) *mock.Call {
	return _e.mock.On("Chats", ctx)
}

func (_m *MockChatAPI) Messages(ctx context.Context, productID domain.ProductID, userID string) ([]domain.Message, error) {
	ret := _m.Called(ctx, productID, userID)
	messages, _ := ret.Get(0).([]domain.Message)
	return messages, ret.Error(1)
}

func (_e *MockChatAPI_Expecter) Messages(ctx interface{}, productID interface{}, userID interface{}) *mock.Call {
	return _e.mock.On("Messages", ctx, productID, userID)
}

func (_m *MockChatAPI) SendMessage(ctx context.Context, req domain.SendMessageRequest) (domain.Message, error) {
	ret := _m.Called(ctx, req)
	return ret.Get(0).(domain.Message), ret.Error(1)
}

func (_e *MockChatAPI_Expecter) SendMessage(ctx interface{}, req interface{}) *mock.Call {
	return _e.mock.On("SendMessage", ctx, req)
}

func (_m *MockChatAPI) MarkSeen(ctx context.Context, senderID string) error {
	ret := _m.Called(ctx, senderID)
	return ret.Error(0)
}

func (_e *MockChatAPI_Expecter) MarkSeen(ctx interface{}, senderID interface{}) *mock.Call {
	return _e.mock.On("MarkSeen", ctx, senderID)
}

func (_m *MockChatAPI) OnlineUsers(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)
	users, _ := ret.Get(0).([]string)
	return users, ret.Error(1)
}

func (_e *MockChatAPI_Expecter) OnlineUsers(ctx interface{}) *mock.Call {
	return _e.mock.On("OnlineUsers", ctx)
}
