package webhook

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/flowkit/pkg/flow"
)

// Config is the webhook intake configuration. BasePath is where the embedding
// application mounts the router; it must match the path the provider was
// given (see flow.Settings.WebhookBasePath). An empty Secret disables the
// authentication gate.
type Config struct {
	BasePath string `env:"FLOW_WEBHOOK_PATH" envDefault:"/flow/webhooks"`
	Secret   string `env:"FLOW_WEBHOOK_SECRET"`
}

// Router mounts the three notification intake endpoints behind the
// authentication gate:
//
//	POST /payment
//	POST /refund
//	POST /plan
//
// Each dispatcher issues exactly one remote lookup for the notification's
// token, publishes one typed event, and responds 200 with an empty body.
// Remote or publish failures respond 500; the gate's rejections respond with
// the generic 404. No retries at this layer.
//
// Example:
//
//	bus := webhook.NewMemoryBus(16)
//	r := chi.NewRouter()
//	r.Mount(cfg.BasePath, webhook.Router(cfg, payments, refunds, bus, log))
func Router(cfg Config, payments flow.PaymentAPI, refunds flow.RefundAPI, bus EventBus, log *slog.Logger) http.Handler {
	if payments == nil {
		panic("webhook: flow.PaymentAPI is required")
	}
	if refunds == nil {
		panic("webhook: flow.RefundAPI is required")
	}
	if bus == nil {
		panic("webhook: EventBus is required")
	}
	if log == nil {
		log = slog.Default()
	}

	d := &dispatcher{bus: bus, log: log}

	r := chi.NewRouter()
	r.Use(Verify(cfg.Secret))
	r.Post("/payment", d.handle(EventPaymentResolved, payments.Get))
	r.Post("/refund", d.handle(EventRefundResolved, refunds.Get))
	// The provider reports plan charges through the payment lookup.
	r.Post("/plan", d.handle(EventPlanPaid, payments.Get))
	return r
}

type dispatcher struct {
	bus EventBus
	log *slog.Logger
}

func (d *dispatcher) handle(t EventType, lookup func(ctx context.Context, token string) (*flow.Resource, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := TokenFromContext(r.Context())
		if !ok {
			// Gate disabled: the body was never parsed, so extract the
			// token here. A shape the gate would have rejected is still
			// answered with the generic not-found.
			fields, parsed := bodyFields(r)
			if !parsed {
				http.NotFound(w, r)
				return
			}
			if token, ok = fields["token"].(string); !ok {
				http.NotFound(w, r)
				return
			}
		}

		res, err := lookup(r.Context(), token)
		if err != nil {
			d.log.ErrorContext(r.Context(), "webhook resource lookup failed",
				slog.String("event", string(t)), slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if err := d.bus.Publish(r.Context(), newEvent(t, *res)); err != nil {
			d.log.ErrorContext(r.Context(), "webhook event publish failed",
				slog.String("event", string(t)), slog.Any("error", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
