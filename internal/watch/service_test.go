package watch

import (
	"context"
	"errors"
	"testing"

	"trend-radar/internal/model"
)

func TestServiceValidatesAndCreatesWatch(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := NewService(store, Config{AllowedSources: []string{"LinkedIn", "Indeed"}})

	req := Request{Keyword: "golang", Location: "Remote", Sources: []string{"linkedin"}, Email: "user@example.com"}
	w, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected store Create called once, got %d", store.calls)
	}
	if w.Keyword != "golang" || w.Location != "Remote" || w.Email != req.Email {
		t.Fatalf("unexpected watch returned: %+v", w)
	}
	if _, ok := w.Sources["LinkedIn"]; !ok {
		t.Fatalf("expected canonical source spelling, got %+v", w.Sources)
	}
}

func TestServiceEmailIsOptional(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := NewService(store, Config{})

	if _, err := svc.Create(context.Background(), Request{Keyword: "golang"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected store Create called once, got %d", store.calls)
	}
}

func TestServiceRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := NewService(store, Config{AllowedSources: []string{"LinkedIn"}})

	cases := []Request{
		{Keyword: ""},
		{Keyword: "   "},
		{Keyword: "golang", Email: "bad"},
		{Keyword: "golang", Sources: []string{"Indeed"}},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
	if store.calls != 0 {
		t.Fatalf("expected store not called on invalid input")
	}
}

func TestServicePropagatesStoreError(t *testing.T) {
	t.Parallel()

	store := &stubStore{err: errors.New("boom")}
	svc := NewService(store, Config{})

	_, err := svc.Create(context.Background(), Request{Keyword: "golang"})
	if err == nil {
		t.Fatalf("expected error when store fails")
	}
}

type stubStore struct {
	calls int
	err   error
}

func (s *stubStore) CreateWatch(ctx context.Context, w *model.Watch) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	w.ID = 1
	return nil
}
