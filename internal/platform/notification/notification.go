// Package notification delivers fire-and-forget messages about scheduling
// events. Delivery transport is an external collaborator; a failed send is
// logged and never propagated, so it can never roll back a scheduling
// operation that already committed.
package notification

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink accepts notifications for a set of users.
type Sink interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, kind, title, message string)
}

// Template defines a reusable notification message. Placeholders use
// {{name}} syntax.
type Template struct {
	ID    string
	Title string
	Body  string
}

var builtIn = []Template{
	{
		ID:    "surgery-scheduled",
		Title: "Surgery scheduled",
		Body:  "Surgery {{surgery_type}} for patient {{patient_id}} has been scheduled on {{date}} {{start}}-{{end}} in room {{room}}.",
	},
	{
		ID:    "surgery-cancelled",
		Title: "Surgery cancelled",
		Body:  "Surgery {{surgery_type}} for patient {{patient_id}} has been cancelled.",
	},
	{
		ID:    "surgery-postponed",
		Title: "Surgery postponed",
		Body:  "Surgery {{surgery_type}} for patient {{patient_id}} has been postponed.",
	},
	{
		ID:    "checklist-complete",
		Title: "Pre-op checklist complete",
		Body:  "The pre-operative checklist for surgery request {{request_id}} is complete.",
	},
}

// Render fills a built-in template with data. Unknown template ids render an
// empty message so a bad template id can never break a caller.
func Render(templateID string, data map[string]string) (title, body string) {
	for _, t := range builtIn {
		if t.ID != templateID {
			continue
		}
		body = t.Body
		for k, v := range data {
			body = strings.ReplaceAll(body, "{{"+k+"}}", v)
		}
		return t.Title, body
	}
	return "", ""
}

// LogSink writes notifications to the structured log. It stands in for the
// real delivery transport and never fails.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(_ context.Context, userIDs []uuid.UUID, kind, title, message string) {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	s.logger.Info().
		Strs("user_ids", ids).
		Str("kind", kind).
		Str("title", title).
		Str("message", message).
		Msg("notification")
}

// Recorded is one captured notification.
type Recorded struct {
	UserIDs []uuid.UUID
	Kind    string
	Title   string
	Message string
}

// MemorySink captures notifications for assertions in tests.
type MemorySink struct {
	mu   sync.Mutex
	sent []Recorded
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Notify(_ context.Context, userIDs []uuid.UUID, kind, title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Recorded{UserIDs: userIDs, Kind: kind, Title: title, Message: message})
}

func (s *MemorySink) Sent() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.sent))
	copy(out, s.sent)
	return out
}
