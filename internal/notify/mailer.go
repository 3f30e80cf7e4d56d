// Package notify sends the workflow's outgoing email: the one success
// message to the requester and failure alerts to the administrator.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Message is one outgoing email. Only the send contract matters here;
// transport-level delivery is the mailer's concern.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers messages. Implementations must not log message bodies:
// the success body carries the one-time credential secret.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers mail through the SendGrid v3 send endpoint.
type SendGridMailer struct {
	http     *resty.Client
	endpoint string
	apiKey   string
	from     string
	fromName string
}

func NewSendGridMailer(endpoint, apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{
		http:     resty.New(),
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	body := sendGridRequest{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: msg.To, Name: msg.ToName}}},
		},
		From:    sendGridAddress{Email: m.from, Name: m.fromName},
		Subject: msg.Subject,
		Content: []sendGridContent{{Type: "text/plain", Value: msg.Body}},
	}

	resp, err := m.http.R().
		SetContext(ctx).
		SetAuthToken(m.apiKey).
		SetBody(body).
		Post(m.endpoint)
	if err != nil {
		return fmt.Errorf("mail send request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("mail send rejected with status %d", resp.StatusCode())
	}
	return nil
}

// MemoryMailer records sent messages for tests and local development.
type MemoryMailer struct {
	mu       sync.Mutex
	messages []Message

	// FailWith, when set, makes every Send return this error.
	FailWith error
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

func (m *MemoryMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MemoryMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
