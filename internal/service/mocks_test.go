package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/audit"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

type mockCatalog struct {
	getFn     func(ctx context.Context) (*catalog.Snapshot, error)
	callCount int
}

func (m *mockCatalog) Get(ctx context.Context) (*catalog.Snapshot, error) {
	m.callCount++
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return nil, errors.New("mock not configured")
}

type mockDeriver struct {
	deriveFn  func(ctx context.Context, facts model.UserFacts) ([]string, error)
	callCount int
}

func (m *mockDeriver) Derive(ctx context.Context, facts model.UserFacts) ([]string, error) {
	m.callCount++
	if m.deriveFn != nil {
		return m.deriveFn(ctx, facts)
	}
	return nil, errors.New("mock not configured")
}

type mockSink struct {
	mu       sync.Mutex
	appendFn func(ctx context.Context, e audit.Entry) error
	entries  []audit.Entry
}

func (m *mockSink) Append(ctx context.Context, e audit.Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	if m.appendFn != nil {
		return m.appendFn(ctx, e)
	}
	return nil
}

func (m *mockSink) Close() error { return nil }
