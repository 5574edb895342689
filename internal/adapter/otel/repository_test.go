package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/alquipy/notifier/internal/adapter/otel"
	"github.com/alquipy/notifier/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// --- Mock repository ---

type mockRepo struct {
	waitlist map[string][]domain.WaitlistFilter
	alerts   []domain.AlertFilter
	failWith error
}

func newMockRepo() *mockRepo {
	return &mockRepo{waitlist: make(map[string][]domain.WaitlistFilter)}
}

func (m *mockRepo) WaitlistByListing(_ context.Context, listingID string) ([]domain.WaitlistFilter, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.waitlist[listingID], nil
}

func (m *mockRepo) ActiveAlerts(_ context.Context) ([]domain.AlertFilter, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.alerts, nil
}

func (m *mockRepo) CreateWaitlistEntry(_ context.Context, entry domain.WaitlistFilter) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.waitlist[entry.ListingID] = append(m.waitlist[entry.ListingID], entry)
	return nil
}

func (m *mockRepo) CreateAlert(_ context.Context, alert domain.AlertFilter) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

// --- Tests ---

func TestTracingRepository_WaitlistByListing_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	inner.waitlist["p1"] = []domain.WaitlistFilter{{ListingID: "p1", Email: "ana@test.com"}}
	repo := adapter.NewTracingRepository(inner)

	entries, err := repo.WaitlistByListing(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "FilterRepository.WaitlistByListing" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "FilterRepository.WaitlistByListing")
	}

	assertAttribute(t, spans[0], "listing.id", "p1")
	assertAttribute(t, spans[0], "result.count", "1")
}

func TestTracingRepository_ActiveAlerts_RecordsResultCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	inner.alerts = []domain.AlertFilter{
		{ID: "a1", Email: "a@test.com", Active: true},
		{ID: "a2", Email: "b@test.com", Active: true},
	}
	repo := adapter.NewTracingRepository(inner)

	alerts, err := repo.ActiveAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("got %d alerts, want 2", len(alerts))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	assertAttribute(t, spans[0], "result.count", "2")
}

func TestTracingRepository_WaitlistByListing_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	inner.failWith = errors.New("connection refused")
	repo := adapter.NewTracingRepository(inner)

	_, err := repo.WaitlistByListing(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}

	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestTracingRepository_CreateWaitlistEntry_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	repo := adapter.NewTracingRepository(inner)

	err := repo.CreateWaitlistEntry(context.Background(), domain.WaitlistFilter{ListingID: "p1", Email: "ana@test.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "FilterRepository.CreateWaitlistEntry" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "FilterRepository.CreateWaitlistEntry")
	}

	assertAttribute(t, spans[0], "listing.id", "p1")
}

func TestTracingRepository_CreateAlert_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	repo := adapter.NewTracingRepository(inner)

	err := repo.CreateAlert(context.Background(), domain.AlertFilter{ID: "a1", Email: "ana@test.com", Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	assertAttribute(t, spans[0], "alert.id", "a1")
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
