package dto

// WebhookRequest is the payload the Signal relay posts for each inbound
// message.
type WebhookRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
