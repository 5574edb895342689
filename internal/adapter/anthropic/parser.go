// Package anthropic extracts structured listing fields from free-text
// rental posts using the Anthropic API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/alquipy/notifier/internal/domain"
)

const defaultModel = "claude-3-5-haiku-latest"

const extractionPrompt = `Extraé los datos de esta publicación de alquiler en Paraguay y devolvé SOLO un objeto JSON con estos campos (usá null cuando el dato no aparece):
{
  "titulo": "título corto y descriptivo",
  "precio": número entero sin separadores o null,
  "moneda": "Gs" o "USD",
  "ciudad": "ciudad",
  "barrio": "barrio o zona",
  "tipo": "casa" | "departamento" | "duplex" | "local_comercial" | "pieza",
  "habitaciones": número o null,
  "banos": número o null,
  "descripcion": "resumen de una o dos frases",
  "telefono": "número de contacto o null"
}

Publicación:
%s`

var _ domain.ListingParser = (*Parser)(nil)

// Parser asks the model to pull listing fields out of a free-text post.
type Parser struct {
	client anthropic.Client
	model  string
}

// Config carries parser construction options. Model defaults to a small
// fast model when empty.
type Config struct {
	APIKey string
	Model  string
}

func New(cfg Config) (*Parser, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Parser{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}, nil
}

// parsedPayload mirrors the JSON shape the prompt requests.
type parsedPayload struct {
	Title        string  `json:"titulo"`
	Price        *int64  `json:"precio"`
	Currency     string  `json:"moneda"`
	City         string  `json:"ciudad"`
	Neighborhood string  `json:"barrio"`
	Type         string  `json:"tipo"`
	Bedrooms     *int    `json:"habitaciones"`
	Bathrooms    *int    `json:"banos"`
	Description  string  `json:"descripcion"`
	Phone        *string `json:"telefono"`
}

func (p *Parser) Parse(ctx context.Context, text string) (domain.ParsedListing, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(extractionPrompt, text))),
		},
	})
	if err != nil {
		return domain.ParsedListing{}, fmt.Errorf("requesting extraction: %w", err)
	}

	var raw strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			raw.WriteString(block.Text)
		}
	}

	payload, err := decodePayload(raw.String())
	if err != nil {
		return domain.ParsedListing{}, err
	}

	listing := domain.ParsedListing{
		Title:        payload.Title,
		Price:        payload.Price,
		Currency:     domain.Currency(payload.Currency),
		City:         payload.City,
		Neighborhood: payload.Neighborhood,
		Type:         domain.PropertyType(payload.Type),
		Bedrooms:     payload.Bedrooms,
		Bathrooms:    payload.Bathrooms,
		Description:  payload.Description,
	}
	if payload.Phone != nil {
		listing.Phone = *payload.Phone
	}
	return listing, nil
}

// decodePayload tolerates the model wrapping its answer in a fenced code
// block.
func decodePayload(raw string) (parsedPayload, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var payload parsedPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return parsedPayload{}, fmt.Errorf("decoding extraction response: %w", err)
	}
	return payload, nil
}
