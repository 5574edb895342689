package app

import (
	"net/mail"

	"github.com/alquipy/notifier/internal/domain"
)

// AggregateRecipients collects contact addresses from matched filters into
// a deduplicated delivery list. Empty and unparsable addresses are dropped.
// New-verified-listing notifications also carry the operator address.
func AggregateRecipients(matches []domain.SubscriptionFilter, kind domain.ScenarioKind, operator string) []string {
	seen := make(map[string]struct{}, len(matches))
	var recipients []string

	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		recipients = append(recipients, addr)
	}

	for _, m := range matches {
		add(m.Contact())
	}

	if kind == domain.ScenarioNewVerified {
		add(operator)
	}

	return recipients
}
