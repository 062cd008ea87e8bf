package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/holaplex/chainmirror/internal/feed"
)

// offerEventType is the only event currently pushed to the notification
// endpoint.
const offerEventType = "NftMakeOffer"

type offerEventData struct {
	BidReceiptAddress string `json:"bid_receipt_address"`
}

type offerEvent struct {
	EventType string         `json:"event_type"`
	Data      offerEventData `json:"data"`
}

// OfferNotifier issues best-effort outbound notifications for high-value
// instruction events. A nil or disabled notifier drops events silently;
// a failed POST surfaces an error but must never be used to roll back
// state already committed for the triggering message.
type OfferNotifier struct {
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// NewOfferNotifier creates a notifier POSTing to endpoint with the given
// per-request timeout. An empty endpoint disables notifications.
func NewOfferNotifier(endpoint string, timeout time.Duration, log *slog.Logger) *OfferNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &OfferNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Enabled reports whether an endpoint is configured.
func (n *OfferNotifier) Enabled() bool {
	return n != nil && n.endpoint != ""
}

// NotifyOffer reports an offer creation for the given bid receipt.
func (n *OfferNotifier) NotifyOffer(ctx context.Context, bidReceipt feed.Pubkey) error {
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(offerEvent{
		EventType: offerEventType,
		Data:      offerEventData{BidReceiptAddress: bidReceipt.String()},
	})
	if err != nil {
		return fmt.Errorf("marshal offer event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build offer notification: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post offer notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post offer notification: unexpected status %s", resp.Status)
	}

	n.log.Debug("offer notification sent", "bid_receipt", bidReceipt.String())
	return nil
}
