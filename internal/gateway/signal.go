// Package gateway sends outbound Signal messages through a signal-cli style
// REST API. Delivery is fire-and-forget: failures are logged and never
// propagated into the domain operation that triggered the send.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers a plain-text message to a phone-number-like identifier.
type Sender interface {
	Send(recipient, message string) error
}

// SignalClient posts messages to a signal-cli REST API instance.
type SignalClient struct {
	apiURL    string
	botNumber string
	client    *http.Client
}

func NewSignalClient(apiURL, botNumber string) *SignalClient {
	return &SignalClient{
		apiURL:    apiURL,
		botNumber: botNumber,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	Message    string   `json:"message"`
	Number     string   `json:"number"`
	Recipients []string `json:"recipients"`
}

func (s *SignalClient) Send(recipient, message string) error {
	body, err := json.Marshal(sendRequest{
		Message:    message,
		Number:     s.botNumber,
		Recipients: []string{recipient},
	})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	resp, err := s.client.Post(s.apiURL+"/v2/send", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to reach signal gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("signal gateway returned status %d", resp.StatusCode)
	}
	return nil
}
