// internal/signnow/events.go
package signnow

import (
	"context"
	"net/http"

	"bondpacket/internal/common/logger"
)

type eventSubscription struct {
	ID         string `json:"id,omitempty"`
	Event      string `json:"event"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	Attributes struct {
		Callback string `json:"callback"`
	} `json:"attributes"`
}

// RegisterWebhook subscribes the given callback URL to a provider
// event. Stale subscriptions for the same event and callback are
// removed first so restarts never accumulate duplicates.
func (c *Client) RegisterWebhook(ctx context.Context, event, entityID, callbackURL string) error {
	var existing struct {
		Data []eventSubscription `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v2/events", nil, &existing); err != nil {
		return err
	}
	for _, sub := range existing.Data {
		if sub.Event == event && sub.Attributes.Callback == callbackURL {
			if err := c.doJSON(ctx, http.MethodDelete, "/api/v2/events/"+sub.ID, nil, nil); err != nil {
				c.log.Warn("failed to remove stale event subscription", map[string]interface{}{
					"subscriptionId": sub.ID,
					"event":          event,
					"error":          err.Error(),
				})
			}
		}
	}

	sub := eventSubscription{
		Event:    event,
		EntityID: entityID,
		Action:   "callback",
	}
	sub.Attributes.Callback = callbackURL
	return c.doJSON(ctx, http.MethodPost, "/api/v2/events", sub, nil)
}

// RegisterAllWebhooks subscribes the callback to the document lifecycle
// events the reconciler consumes.
func (c *Client) RegisterAllWebhooks(ctx context.Context, entityID, callbackURL string, log logger.Logger) error {
	events := []string{
		"document.fieldinvite.signed",
		"document.fieldinvite.declined",
		"document.complete",
	}
	for _, ev := range events {
		if err := c.RegisterWebhook(ctx, ev, entityID, callbackURL); err != nil {
			return err
		}
		log.Info("webhook subscription registered", map[string]interface{}{
			"event":    ev,
			"callback": callbackURL,
		})
	}
	return nil
}
