package notification

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"
)

// Notifier posts submission events to an external webhook. With no
// WEBHOOK_URL configured it is a no-op.
type Notifier struct {
	URL    string
	Client *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{
		URL:    os.Getenv("WEBHOOK_URL"),
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify fires the event and forgets it; delivery failures are logged, never
// surfaced to the request that triggered them.
func (n *Notifier) Notify(event string, fields map[string]any) {
	if n == nil || n.URL == "" {
		return
	}
	payload := map[string]any{"event": event}
	for k, v := range fields {
		payload[k] = v
	}
	body, _ := json.Marshal(payload)

	go func() {
		resp, err := n.Client.Post(n.URL, "application/json", bytes.NewBuffer(body))
		if err != nil {
			log.Printf("webhook %s: %v", event, err)
			return
		}
		defer resp.Body.Close()
	}()
}
