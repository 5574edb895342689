// Package postgrest implements the subscriber repository against the
// marketplace's hosted data service, which exposes tables over a
// PostgREST-style HTTP interface.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alquipy/notifier/internal/domain"
)

var _ domain.FilterRepository = (*FilterRepository)(nil)

// FilterRepository reads waitlist entries and tenant alerts from the remote
// data service. All requests carry the service-role key, so it must only
// run server-side.
type FilterRepository struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New returns a repository talking to the data service at baseURL using the
// given service key.
func New(baseURL, apiKey string) *FilterRepository {
	return &FilterRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Row shapes mirror the hosted tables, which keep the marketplace's
// Spanish column names.

type waitlistRow struct {
	ListingID string `json:"propiedad_id"`
	Email     string `json:"email"`
}

type alertRow struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	City         string `json:"ciudad,omitempty"`
	PropertyType string `json:"tipo_propiedad,omitempty"`
	MaxPrice     *int64 `json:"precio_max,omitempty"`
	MinBedrooms  *int   `json:"habitaciones_min,omitempty"`
	NoGuarantor  bool   `json:"sin_garante,omitempty"`
	NoDeposit    bool   `json:"sin_garantia,omitempty"`
	PetsRequired bool   `json:"mascotas,omitempty"`
	Active       bool   `json:"activo"`
}

func (r *FilterRepository) WaitlistByListing(ctx context.Context, listingID string) ([]domain.WaitlistFilter, error) {
	query := url.Values{}
	query.Set("select", "propiedad_id,email")
	query.Set("propiedad_id", "eq."+listingID)
	query.Set("email", "not.is.null")

	var rows []waitlistRow
	if err := r.get(ctx, "lista_espera", query, &rows); err != nil {
		return nil, err
	}

	entries := make([]domain.WaitlistFilter, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.WaitlistFilter{ListingID: row.ListingID, Email: row.Email})
	}
	return entries, nil
}

func (r *FilterRepository) ActiveAlerts(ctx context.Context) ([]domain.AlertFilter, error) {
	query := url.Values{}
	query.Set("activo", "eq.true")
	query.Set("email", "not.is.null")

	var rows []alertRow
	if err := r.get(ctx, "alertas_inquilino", query, &rows); err != nil {
		return nil, err
	}

	alerts := make([]domain.AlertFilter, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, domain.AlertFilter{
			ID:           row.ID,
			Email:        row.Email,
			City:         row.City,
			Type:         domain.PropertyType(row.PropertyType),
			MaxPrice:     row.MaxPrice,
			MinBedrooms:  row.MinBedrooms,
			NoGuarantor:  row.NoGuarantor,
			NoDeposit:    row.NoDeposit,
			PetsRequired: row.PetsRequired,
			Active:       row.Active,
		})
	}
	return alerts, nil
}

func (r *FilterRepository) CreateWaitlistEntry(ctx context.Context, entry domain.WaitlistFilter) error {
	return r.post(ctx, "lista_espera", waitlistRow{ListingID: entry.ListingID, Email: entry.Email})
}

func (r *FilterRepository) CreateAlert(ctx context.Context, alert domain.AlertFilter) error {
	return r.post(ctx, "alertas_inquilino", alertRow{
		ID:           alert.ID,
		Email:        alert.Email,
		City:         alert.City,
		PropertyType: string(alert.Type),
		MaxPrice:     alert.MaxPrice,
		MinBedrooms:  alert.MinBedrooms,
		NoGuarantor:  alert.NoGuarantor,
		NoDeposit:    alert.NoDeposit,
		PetsRequired: alert.PetsRequired,
		Active:       alert.Active,
	})
}

func (r *FilterRepository) get(ctx context.Context, table string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", r.baseURL, table, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", table, err)
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("querying %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("querying %s: status %d: %s", table, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", table, err)
	}
	return nil
}

func (r *FilterRepository) post(ctx context.Context, table string, row any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encoding %s row: %w", table, err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", table, err)
	}
	r.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	// Duplicate inserts (same listing + address) are silently merged.
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("inserting into %s: status %d: %s", table, resp.StatusCode, body)
	}
	return nil
}

func (r *FilterRepository) authorize(req *http.Request) {
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
}
