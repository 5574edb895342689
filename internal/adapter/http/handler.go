package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alquipy/notifier/internal/app"
	"github.com/alquipy/notifier/internal/domain"
)

// snapshotPayload mirrors the change-capture row shape. Field names match
// the data service's column names; absent columns arrive as missing keys.
type snapshotPayload struct {
	ID             string             `json:"id" doc:"Listing identifier"`
	Titulo         string             `json:"titulo,omitempty" doc:"Listing title"`
	Ciudad         string             `json:"ciudad,omitempty" doc:"City"`
	Barrio         string             `json:"barrio,omitempty" doc:"Neighborhood"`
	Tipo           string             `json:"tipo,omitempty" doc:"Property type" enum:"casa,departamento,duplex,local_comercial,pieza,"`
	Precio         *int64             `json:"precio,omitempty" doc:"Monthly price"`
	Moneda         string             `json:"moneda,omitempty" doc:"Price currency" enum:"Gs,USD,"`
	Habitaciones   *int               `json:"habitaciones,omitempty" doc:"Bedroom count"`
	Verificado     bool               `json:"verificado,omitempty" doc:"Verified by the operator"`
	Activo         bool               `json:"activo,omitempty" doc:"Listed as available"`
	Requisitos     *requisitosPayload `json:"requisitos,omitempty" doc:"Landlord requirements"`
	AceptaMascotas string             `json:"acepta_mascotas,omitempty" doc:"Pets allowed" enum:"si,no,"`
}

type requisitosPayload struct {
	Garante  string `json:"garante,omitempty" enum:"si,no,"`
	Garantia string `json:"garantia,omitempty" enum:"si,no,"`
}

// toSnapshot validates and coerces the raw payload into a domain snapshot.
// A price without a currency defaults to guaraníes, matching what the
// marketplace publishes.
func (p *snapshotPayload) toSnapshot() (*domain.ListingSnapshot, error) {
	if p == nil {
		return nil, nil
	}
	if p.ID == "" {
		return nil, &domain.ClassificationError{Reason: "record has no id"}
	}
	if p.Precio != nil && *p.Precio < 0 {
		return nil, &domain.ClassificationError{Reason: fmt.Sprintf("negative price %d on listing %s", *p.Precio, p.ID)}
	}

	l := &domain.ListingSnapshot{
		ID:           p.ID,
		Title:        p.Titulo,
		City:         p.Ciudad,
		Neighborhood: p.Barrio,
		Type:         domain.PropertyType(p.Tipo),
		Price:        p.Precio,
		Bedrooms:     p.Habitaciones,
		Verified:     p.Verificado,
		Active:       p.Activo,
		PetsAllowed:  domain.TriState(p.AceptaMascotas),
	}
	if p.Precio != nil {
		l.Currency = domain.CurrencyGuarani
		if p.Moneda == string(domain.CurrencyDollar) {
			l.Currency = domain.CurrencyDollar
		}
	}
	if p.Requisitos != nil {
		l.Requirements = domain.Requirements{
			Guarantor: domain.TriState(p.Requisitos.Garante),
			Deposit:   domain.TriState(p.Requisitos.Garantia),
		}
	}
	return l, nil
}

// --- Change event webhook ---

type EventInput struct {
	Body struct {
		Type      string           `json:"type,omitempty" doc:"Change type reported by the capture mechanism"`
		Record    *snapshotPayload `json:"record" doc:"Current listing state"`
		OldRecord *snapshotPayload `json:"old_record,omitempty" doc:"Previous listing state, absent on insert"`
	}
}

type ScenarioOutcomeResponse struct {
	Scenario   string `json:"scenario" doc:"Fired scenario"`
	Recipients int    `json:"recipients" doc:"Recipients the message was sent to"`
	Delivered  bool   `json:"delivered" doc:"Whether the transport accepted the send"`
}

type EventResponse struct {
	Status    string                    `json:"status" doc:"Run outcome" enum:"noop,dispatched"`
	Notified  int                       `json:"notified" doc:"Total recipients across scenarios"`
	Scenarios []ScenarioOutcomeResponse `json:"scenarios,omitempty" doc:"Per-scenario outcomes"`
}

type EventOutput struct {
	Body EventResponse
}

// --- Listing text extraction ---

type ParseInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" doc:"Free text of a rental post"`
	}
}

type ParsedListingResponse struct {
	Titulo      string `json:"titulo"`
	Precio      *int64 `json:"precio,omitempty"`
	Moneda      string `json:"moneda,omitempty"`
	Ciudad      string `json:"ciudad,omitempty"`
	Barrio      string `json:"barrio,omitempty"`
	Tipo        string `json:"tipo,omitempty"`
	Dormitorios *int   `json:"dormitorios,omitempty"`
	Banos       *int   `json:"banos,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Telefono    string `json:"telefono,omitempty"`
}

type ParseOutput struct {
	Body ParsedListingResponse
}

// --- Ephemeral handoff ---

type PutHandoffInput struct {
	RawBody []byte
}

type PutHandoffOutput struct {
	Body struct {
		ID string `json:"id" doc:"Token to retrieve the payload with"`
	}
}

type TakeHandoffInput struct {
	ID string `path:"id" doc:"Handoff token"`
}

type TakeHandoffOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// --- Subscriptions ---

type CreateWaitlistInput struct {
	Body struct {
		PropiedadID string `json:"propiedad_id" minLength:"1" doc:"Listing to wait on"`
		Email       string `json:"email" minLength:"3" doc:"Contact address"`
	}
}

type CreateWaitlistOutput struct {
	Body struct {
		PropiedadID string `json:"propiedad_id"`
		Email       string `json:"email"`
	}
}

type CreateAlertInput struct {
	Body struct {
		Email           string `json:"email" minLength:"3" doc:"Contact address"`
		Ciudad          string `json:"ciudad,omitempty" doc:"Exact city match"`
		Tipo            string `json:"tipo,omitempty" doc:"Property type" enum:"casa,departamento,duplex,local_comercial,pieza,"`
		PrecioMax       *int64 `json:"precio_max,omitempty" minimum:"0" doc:"Maximum monthly price"`
		HabitacionesMin *int   `json:"habitaciones_min,omitempty" minimum:"0" doc:"Minimum bedroom count"`
		SinGarante      bool   `json:"sin_garante,omitempty" doc:"Only listings without guarantor requirement"`
		SinGarantia     bool   `json:"sin_garantia,omitempty" doc:"Only listings without deposit requirement"`
		Mascotas        bool   `json:"mascotas,omitempty" doc:"Only pet-friendly listings"`
	}
}

type AlertResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Ciudad          string `json:"ciudad,omitempty"`
	Tipo            string `json:"tipo,omitempty"`
	PrecioMax       *int64 `json:"precio_max,omitempty"`
	HabitacionesMin *int   `json:"habitaciones_min,omitempty"`
	SinGarante      bool   `json:"sin_garante"`
	SinGarantia     bool   `json:"sin_garantia"`
	Mascotas        bool   `json:"mascotas"`
	Activo          bool   `json:"activo"`
}

type CreateAlertOutput struct {
	Body AlertResponse
}

// Register adds all notifier API routes to the Huma API. parser may be nil
// when no extraction backend is configured; the parse endpoint then
// reports 503.
func Register(api huma.API, svc *app.NotifyService, parser domain.ListingParser, handoff domain.HandoffStore) {
	huma.Register(api, huma.Operation{
		OperationID: "handle-listing-event",
		Method:      http.MethodPost,
		Path:        "/api/v1/events",
		Summary:     "Process a listing change event",
		Tags:        []string{"Events"},
	}, func(ctx context.Context, input *EventInput) (*EventOutput, error) {
		if input.Body.Record == nil {
			return nil, huma.Error422UnprocessableEntity("missing record")
		}

		current, err := input.Body.Record.toSnapshot()
		if err != nil {
			return nil, toHumaError(err)
		}
		previous, err := input.Body.OldRecord.toSnapshot()
		if err != nil {
			return nil, toHumaError(err)
		}

		report, err := svc.HandleTransition(ctx, domain.ListingTransition{
			Previous: previous,
			Current:  current,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		return &EventOutput{Body: toEventResponse(report)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "parse-listing-text",
		Method:      http.MethodPost,
		Path:        "/api/v1/listings/parse",
		Summary:     "Extract structured listing fields from free text",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *ParseInput) (*ParseOutput, error) {
		if parser == nil {
			return nil, huma.Error503ServiceUnavailable("listing parser is not configured")
		}

		parsed, err := parser.Parse(ctx, input.Body.Text)
		if err != nil {
			return nil, huma.Error502BadGateway(fmt.Sprintf("parsing listing text: %v", err))
		}

		return &ParseOutput{Body: toParsedResponse(parsed)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "put-handoff",
		Method:      http.MethodPost,
		Path:        "/api/v1/handoff",
		Summary:     "Store a payload for a later pickup",
		Tags:        []string{"Handoff"},
	}, func(ctx context.Context, input *PutHandoffInput) (*PutHandoffOutput, error) {
		token, err := handoff.Put(ctx, input.RawBody)
		if err != nil {
			return nil, huma.Error500InternalServerError("storing handoff payload")
		}

		out := &PutHandoffOutput{}
		out.Body.ID = token
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "take-handoff",
		Method:      http.MethodGet,
		Path:        "/api/v1/handoff/{id}",
		Summary:     "Retrieve and consume a stored payload",
		Tags:        []string{"Handoff"},
	}, func(ctx context.Context, input *TakeHandoffInput) (*TakeHandoffOutput, error) {
		payload, err := handoff.Take(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrHandoffNotFound) {
				return nil, huma.Error404NotFound("no data found")
			}
			return nil, huma.Error500InternalServerError("retrieving handoff payload")
		}

		return &TakeHandoffOutput{
			ContentType: "application/json",
			Body:        payload,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-waitlist-entry",
		Method:      http.MethodPost,
		Path:        "/api/v1/waitlist",
		Summary:     "Join the waitlist of a listing",
		Tags:        []string{"Subscriptions"},
	}, func(ctx context.Context, input *CreateWaitlistInput) (*CreateWaitlistOutput, error) {
		if err := svc.RegisterWaitlist(ctx, input.Body.PropiedadID, input.Body.Email); err != nil {
			return nil, toHumaError(err)
		}

		out := &CreateWaitlistOutput{}
		out.Body.PropiedadID = input.Body.PropiedadID
		out.Body.Email = input.Body.Email
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-alert",
		Method:      http.MethodPost,
		Path:        "/api/v1/alerts",
		Summary:     "Save an alert filter",
		Tags:        []string{"Subscriptions"},
	}, func(ctx context.Context, input *CreateAlertInput) (*CreateAlertOutput, error) {
		alert, err := svc.RegisterAlert(ctx, domain.AlertFilter{
			Email:        input.Body.Email,
			City:         input.Body.Ciudad,
			Type:         domain.PropertyType(input.Body.Tipo),
			MaxPrice:     input.Body.PrecioMax,
			MinBedrooms:  input.Body.HabitacionesMin,
			NoGuarantor:  input.Body.SinGarante,
			NoDeposit:    input.Body.SinGarantia,
			PetsRequired: input.Body.Mascotas,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		return &CreateAlertOutput{Body: toAlertResponse(alert)}, nil
	})
}

func toEventResponse(report app.RunReport) EventResponse {
	resp := EventResponse{
		Status:   "dispatched",
		Notified: report.Notified(),
	}
	if report.NoOp() {
		resp.Status = "noop"
	}
	for _, o := range report.Outcomes {
		resp.Scenarios = append(resp.Scenarios, ScenarioOutcomeResponse{
			Scenario:   string(o.Scenario),
			Recipients: o.Result.RecipientCount,
			Delivered:  o.Result.Delivered,
		})
	}
	return resp
}

func toParsedResponse(p domain.ParsedListing) ParsedListingResponse {
	return ParsedListingResponse{
		Titulo:      p.Title,
		Precio:      p.Price,
		Moneda:      string(p.Currency),
		Ciudad:      p.City,
		Barrio:      p.Neighborhood,
		Tipo:        string(p.Type),
		Dormitorios: p.Bedrooms,
		Banos:       p.Bathrooms,
		Descripcion: p.Description,
		Telefono:    p.Phone,
	}
}

func toAlertResponse(a domain.AlertFilter) AlertResponse {
	return AlertResponse{
		ID:              a.ID,
		Email:           a.Email,
		Ciudad:          a.City,
		Tipo:            string(a.Type),
		PrecioMax:       a.MaxPrice,
		HabitacionesMin: a.MinBedrooms,
		SinGarante:      a.NoGuarantor,
		SinGarantia:     a.NoDeposit,
		Mascotas:        a.PetsRequired,
		Activo:          a.Active,
	}
}

// toHumaError translates domain errors to Huma HTTP errors. Classification
// problems are the caller's fault; resolution and dispatch failures are
// upstream outages.
func toHumaError(err error) error {
	var clsErr *domain.ClassificationError
	if errors.As(err, &clsErr) {
		return huma.Error422UnprocessableEntity(clsErr.Error())
	}

	if errors.Is(err, domain.ErrInvalidAddress) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var resErr *domain.ResolutionError
	if errors.As(err, &resErr) {
		return huma.Error502BadGateway(resErr.Error())
	}

	var dispErr *domain.DispatchError
	if errors.As(err, &dispErr) {
		return huma.Error502BadGateway(dispErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
