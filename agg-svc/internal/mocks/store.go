package mocks

import (
	"context"

	"flash-delivery/events"

	"github.com/stretchr/testify/mock"
)

type StoreInterface struct {
	mock.Mock
}

func (m *StoreInterface) RecordOrderCreated(ctx context.Context, day string, event events.OrderEvent) (bool, error) {
	args := m.Called(ctx, day, event)
	return args.Bool(0), args.Error(1)
}

func (m *StoreInterface) RecordStatusChange(ctx context.Context, day string, event events.OrderEvent) (bool, error) {
	args := m.Called(ctx, day, event)
	return args.Bool(0), args.Error(1)
}

func NewStoreInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
