package mocks

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MockAuthAPI struct {
	mock.Mock
}

type MockAuthAPI_Expecter struct {
	mock *mock.Mock
}

func NewMockAuthAPI(t testingT) *MockAuthAPI {
	m := &MockAuthAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockAuthAPI) EXPECT() *MockAuthAPI_Expecter {
	return &MockAuthAPI_Expecter{mock: &_m.Mock}
}

func (_m *MockAuthAPI) Session(ctx context.Context) (domain.User, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(domain.User), ret.Error(1)
}

func (_e *MockAuthAPI_Expecter) Session(ctx interface{}) *mock.Call {
	return _e.mock.On("Session", ctx)
}

func (_m *MockAuthAPI) Login(ctx context.Context, data domain.LoginData) (domain.User, error) {
	ret := _m.Called(ctx, data)
	return ret.Get(0).(domain.User), ret.Error(1)
}

func (_e *MockAuthAPI_Expecter) Login(ctx interface{}, data interface{}) *mock.Call {
	return _e.mock.On("Login", ctx, data)
}

func (_m *MockAuthAPI) Logout(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

func (_e *MockAuthAPI_Expecter) Logout(ctx interface{}) *mock.Call {
	return _e.mock.On("Logout", ctx)
}

func (_m *MockAuthAPI) Register(ctx context.Context, registration domain.Registration) (string, error) {
	ret := _m.Called(ctx, registration)
	return ret.String(0), ret.Error(1)
}

func (_e *MockAuthAPI_Expecter) Register(ctx interface{}, registration interface{}) *mock.Call {
	return _e.mock.On("Register", ctx, registration)
}
