package audit

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// Event is one line of the ledger audit trail.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Reference string    `json:"reference,omitempty"`
	SubjectID string    `json:"subject_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Credits   int       `json:"credits,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

const (
	StatusApplied  = "APPLIED"
	StatusNoOp     = "NOOP"
	StatusDeferred = "DEFERRED"
	StatusFailed   = "FAILED"
)

// Logger writes audit events as JSON lines prefixed with AUDIT:.
type Logger struct {
	out *log.Logger
	now func() time.Time
}

func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{
		out: log.New(w, "", log.LstdFlags),
		now: time.Now,
	}
}

func (a *Logger) LogPayment(sessionID, buyerID string, amountMinor int64, credits int, status string) {
	a.log(Event{
		EventType: "PAYMENT",
		Reference: sessionID,
		SubjectID: buyerID,
		Amount:    amountMinor,
		Credits:   credits,
		Status:    status,
	})
}

func (a *Logger) LogCreditAdjustment(reference, subjectID string, delta, balance int) {
	a.log(Event{
		EventType: "CREDIT_ADJUSTMENT",
		Reference: reference,
		SubjectID: subjectID,
		Credits:   delta,
		Status:    StatusApplied,
		Details:   map[string]int{"balance": balance},
	})
}

func (a *Logger) LogUser(operation, subjectID, status string) {
	a.log(Event{
		EventType: operation,
		SubjectID: subjectID,
		Status:    status,
	})
}

func (a *Logger) LogError(reference, subjectID string, err error) {
	a.log(Event{
		EventType: "ERROR",
		Reference: reference,
		SubjectID: subjectID,
		Status:    StatusFailed,
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	event.Timestamp = a.now().UTC()
	data, _ := json.Marshal(event)
	a.out.Printf("AUDIT: %s", string(data))
}
