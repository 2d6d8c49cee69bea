package mocks

import (
	"context"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalogAPI struct {
	mock.Mock
}

type MockCatalogAPI_Expecter struct {
	mock *mock.Mock
}

func NewMockCatalogAPI(t testingT) *MockCatalogAPI {
	m := &MockCatalogAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockCatalogAPI) EXPECT() *MockCatalogAPI_Expecter {
	return &MockCatalogAPI_Expecter{mock: &_m.Mock}
}

func (_m *MockCatalogAPI) Products(ctx context.Context, userID string) ([]domain.Product, error) {
	ret := _m.Called(ctx, userID)
	products, _ := ret.Get(0).([]domain.Product)
	return products, ret.Error(1)
}

func (_e *MockCatalogAPI_Expecter) Products(ctx interface{}, userID interface{}) *mock.Call {
	return _e.mock.On("Products", ctx, userID)
}

func (_m *MockCatalogAPI) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(domain.Product), ret.Error(1)
}

func (_e *MockCatalogAPI_Expecter) Product(ctx interface{}, id interface{}) *mock.Call {
	return _e.mock.On("Product", ctx, id)
}

func (_m *MockCatalogAPI) AddProduct(ctx context.Context, product domain.NewProduct) (string, error) {
	ret := _m.Called(ctx, product)
	return ret.String(0), ret.Error(1)
}

func (_e *MockCatalogAPI_Expecter) AddProduct(ctx interface{}, product interface{}) *mock.Call {
	return _e.mock.On("AddProduct", ctx, product)
}
