package gateway

import "sync"

// SentMessage is one message captured by a Recorder.
type SentMessage struct {
	Recipient string
	Message   string
}

// Recorder is a Sender that captures messages instead of delivering them.
// Used in tests to assert on outbound notifications.
type Recorder struct {
	mu       sync.Mutex
	messages []SentMessage
	Err      error // returned by Send when set, to exercise best-effort paths
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(recipient, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, SentMessage{Recipient: recipient, Message: message})
	return nil
}

func (r *Recorder) Messages() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
