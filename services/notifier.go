package services

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mihai888nextlab/ecotag/models"
)

// WebhookNotifier pushes productUpdated messages to an external HTTP
// endpoint. Delivery is fire-and-forget: a missing or failing listener is
// logged and dropped, never surfaced to the caller.
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ProductUpdated posts the update message. Errors are swallowed after a log
// line; the engine must keep running with nobody listening.
func (n *WebhookNotifier) ProductUpdated(product *models.ProductRecord) {
	body, err := json.Marshal(models.UpdateMessage{
		Action:  models.ActionProductUpdated,
		Product: product,
	})
	if err != nil {
		log.Printf("Failed to encode product update: %v", err)
		return
	}

	resp, err := n.client.Post(n.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Product update dropped (no listener?): %v", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		log.Printf("Product update rejected by %s: %s", n.endpoint, resp.Status)
	}
}

// LogNotifier records updates in the process log. It is the default sink
// when no webhook endpoint is configured.
type LogNotifier struct{}

func NewLogNotifier() LogNotifier {
	return LogNotifier{}
}

func (LogNotifier) ProductUpdated(product *models.ProductRecord) {
	amount := ""
	if product.Price != nil {
		amount = product.Price.Amount
	}
	log.Printf("Product updated: %q price=%q sku=%q confidence=%d (%s)",
		product.Title, amount, product.SKU, product.Confidence, product.URL)
}
