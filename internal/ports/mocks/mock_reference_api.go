package mocks

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReferenceAPI struct {
	mock.Mock
}

type MockReferenceAPI_Expecter struct {
	mock *mock.Mock
}

func NewMockReferenceAPI(t testingT) *MockReferenceAPI {
	m := &MockReferenceAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockReferenceAPI) EXPECT() *MockReferenceAPI_Expecter {
	return &MockReferenceAPI_Expecter{mock: &_m.Mock}
}

func (_m *MockReferenceAPI) Categories(ctx context.Context) (*domain.CategoryTable, error) {
	ret := _m.Called(ctx)
	table, _ := ret.Get(0).(*domain.CategoryTable)
	return table, ret.Error(1)
}

func (_e *MockReferenceAPI_Expecter) Categories(ctx interface{}) *mock.Call {
	return _e.mock.On("Categories", ctx)
}

func (_m *MockReferenceAPI) ProductStatuses(ctx context.Context) (*domain.StatusTable, error) {
	ret := _m.Called(ctx)
	table, _ := ret.Get(0).(*domain.StatusTable)
	return table, ret.Error(1)
}

func (_e *MockReferenceAPI_Expecter) ProductStatuses(ctx interface{}) *mock.Call {
	return _e.mock.On("ProductStatuses", ctx)
}
