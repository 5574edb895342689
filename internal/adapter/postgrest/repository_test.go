package postgrest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alquipy/notifier/internal/domain"
)

// fakeDataService mimics the hosted tables' REST interface for the two
// tables the repository touches.
func fakeDataService(t *testing.T) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = append(captured, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query().Encode(),
			apiKey: r.Header.Get("apikey"),
			auth:   r.Header.Get("Authorization"),
		})

		switch r.URL.Path {
		case "/rest/v1/lista_espera":
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusCreated)
				return
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{"propiedad_id": "p1", "email": "ana@test.com"},
				{"propiedad_id": "p1", "email": "luis@test.com"},
			})
		case "/rest/v1/alertas_inquilino":
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusCreated)
				return
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"id": "a1", "email": "ana@test.com", "ciudad": "Luque",
					"tipo_propiedad": "casa", "precio_max": 2500000,
					"habitaciones_min": 2, "sin_garante": true, "activo": true,
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv, &captured
}

type capturedRequest struct {
	method string
	path   string
	query  string
	apiKey string
	auth   string
}

func TestWaitlistByListing(t *testing.T) {
	srv, captured := fakeDataService(t)
	repo := New(srv.URL, "service-key")

	entries, err := repo.WaitlistByListing(context.Background(), "p1")
	if err != nil {
		t.Fatalf("WaitlistByListing failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Email != "ana@test.com" || entries[0].ListingID != "p1" {
		t.Errorf("first entry = %+v", entries[0])
	}

	req := (*captured)[0]
	if req.apiKey != "service-key" || req.auth != "Bearer service-key" {
		t.Errorf("request missing service key headers: %+v", req)
	}
	for _, want := range []string{"propiedad_id=eq.p1", "email=not.is.null"} {
		if !strings.Contains(req.query, want) {
			t.Errorf("query %q missing %q", req.query, want)
		}
	}
}

func TestActiveAlerts(t *testing.T) {
	srv, captured := fakeDataService(t)
	repo := New(srv.URL, "service-key")

	alerts, err := repo.ActiveAlerts(context.Background())
	if err != nil {
		t.Fatalf("ActiveAlerts failed: %v", err)
	}

	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	a := alerts[0]
	if a.ID != "a1" || a.City != "Luque" || a.Type != domain.PropertyHouse {
		t.Errorf("alert = %+v", a)
	}
	if a.MaxPrice == nil || *a.MaxPrice != 2_500_000 {
		t.Errorf("max price = %v, want 2500000", a.MaxPrice)
	}
	if a.MinBedrooms == nil || *a.MinBedrooms != 2 {
		t.Errorf("min bedrooms = %v, want 2", a.MinBedrooms)
	}
	if !a.NoGuarantor || a.NoDeposit {
		t.Errorf("boolean constraints = %+v", a)
	}

	req := (*captured)[0]
	if !strings.Contains(req.query, "activo=eq.true") {
		t.Errorf("query %q missing active filter", req.query)
	}
}

func TestCreateWaitlistEntry(t *testing.T) {
	srv, captured := fakeDataService(t)
	repo := New(srv.URL, "service-key")

	err := repo.CreateWaitlistEntry(context.Background(), domain.WaitlistFilter{
		ListingID: "p1", Email: "ana@test.com",
	})
	if err != nil {
		t.Fatalf("CreateWaitlistEntry failed: %v", err)
	}

	req := (*captured)[0]
	if req.method != http.MethodPost || req.path != "/rest/v1/lista_espera" {
		t.Errorf("request = %s %s, want POST /rest/v1/lista_espera", req.method, req.path)
	}
}

func TestActiveAlerts_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	repo := New(srv.URL, "bad-key")

	_, err := repo.ActiveAlerts(context.Background())
	if err == nil {
		t.Fatal("expected an error from a 401 response")
	}
}
