package app

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/alquipy/notifier/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer produces the subject line and HTML body for a scenario. One
// deterministic template exists per scenario variant.
type Renderer struct {
	templates *template.Template
	baseURL   string
}

// NewRenderer parses the embedded message templates. baseURL is the public
// site address used to build listing detail links.
func NewRenderer(baseURL string) (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing message templates: %w", err)
	}
	return &Renderer{
		templates: t,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

// messageData is the pre-formatted view passed to the templates. Optional
// fields are empty strings when the listing doesn't carry them.
type messageData struct {
	Title         string
	City          string
	Neighborhood  string
	TypeLabel     string
	Bedrooms      string
	Price         string
	PreviousPrice string
	NewPrice      string
	Savings       string
	Percent       int
	DetailURL     string
}

// Render returns the subject and body for the given scenario and listing.
func (r *Renderer) Render(scenario domain.NotificationScenario, l domain.ListingSnapshot) (subject, body string, err error) {
	data := messageData{
		Title:        l.Title,
		City:         l.City,
		Neighborhood: l.Neighborhood,
		TypeLabel:    strings.ReplaceAll(string(l.Type), "_", " "),
		DetailURL:    fmt.Sprintf("%s/#propiedad/%s", r.baseURL, l.ID),
	}
	if l.Price != nil {
		data.Price = formatPrice(*l.Price, l.Currency)
	}
	if l.Bedrooms != nil {
		data.Bedrooms = bedroomLabel(*l.Bedrooms)
	}

	var name string
	switch s := scenario.(type) {
	case domain.ListingReactivated:
		name = "reactivated.html"
		subject = fmt.Sprintf("🏠 ¡%s está disponible nuevamente!", l.Title)

	case domain.PriceDropped:
		name = "price_drop.html"
		subject = fmt.Sprintf("📉 Bajó el precio de %s", l.Title)
		data.PreviousPrice = formatPrice(s.PreviousPrice, l.Currency)
		data.NewPrice = formatPrice(s.NewPrice, l.Currency)
		data.Savings = formatPrice(s.Savings(), l.Currency)
		data.Percent = s.Percent()

	case domain.NewVerifiedListing:
		name = "new_listing.html"
		subject = fmt.Sprintf("🔔 Nueva propiedad en %s que te puede interesar", l.City)

	default:
		return "", "", fmt.Errorf("no template for scenario %q", scenario.Kind())
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return subject, buf.String(), nil
}

// formatPrice groups thousands and attaches the currency unit. The integer
// value is never rounded; this is display formatting only.
func formatPrice(amount int64, currency domain.Currency) string {
	grouped := humanize.Comma(amount)
	if currency == domain.CurrencyDollar {
		return "USD " + grouped
	}
	return grouped + " Gs"
}

func bedroomLabel(n int) string {
	if n == 1 {
		return "1 habitación"
	}
	return fmt.Sprintf("%d habitaciones", n)
}
