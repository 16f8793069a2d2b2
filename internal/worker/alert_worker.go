package worker

// alert_worker.go
// Mails low-stock alerts to the configured recipients. SMTP calls go through
// a circuit breaker so a dead relay fails jobs fast instead of stalling workers.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"multipos/internal/infra"
)

// AlertMailer is satisfied by *infra.Mailer.
type AlertMailer interface {
	Send(to []string, subject, body string) error
}

type AlertWorker struct {
	mailer     AlertMailer
	cb         *infra.CircuitBreaker
	recipients []string
}

func NewAlertWorker(mailer AlertMailer, cb *infra.CircuitBreaker, recipients []string) *AlertWorker {
	return &AlertWorker{mailer: mailer, cb: cb, recipients: recipients}
}

// Handle sends one mail per job. Malformed payloads are logged and dropped;
// send failures are returned so the pool retries them.
func (w *AlertWorker) Handle(_ context.Context, raw json.RawMessage) error {
	var payload LowStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil
	}
	if len(payload.Alerts) == 0 || len(w.recipients) == 0 {
		return nil
	}

	subject, body := renderAlertMail(payload)
	send := func() error { return w.mailer.Send(w.recipients, subject, body) }

	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		return fmt.Errorf("alert_worker: %w", err)
	}
	log.Info().Int("alerts", len(payload.Alerts)).Bool("digest", payload.Digest).Msg("alert_worker: low stock mail sent")
	return nil
}

func renderAlertMail(p LowStockPayload) (subject, body string) {
	if p.Digest {
		subject = fmt.Sprintf("[multipos] Stock digest: %d item(s) need attention", len(p.Alerts))
	} else {
		subject = fmt.Sprintf("[multipos] Low stock alert: %d item(s)", len(p.Alerts))
	}

	var b strings.Builder
	for _, a := range p.Alerts {
		name := a.ProductName
		if name == "" {
			name = a.ProductID
		}
		shop := a.ShopName
		if shop == "" {
			shop = a.ShopID
		}
		fmt.Fprintf(&b, "%s  %s (%s) @ %s: %d available, minimum %d\n",
			a.Status, name, a.SKU, shop, a.Available, a.MinStock)
	}
	return subject, b.String()
}
