package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	EventDeposit            = "LEDGER_DEPOSIT"
	EventWithdrawal         = "LEDGER_WITHDRAWAL"
	EventInstallmentPayment = "INSTALLMENT_PAYMENT"
	EventDelete             = "LEDGER_DELETE"
	EventError              = "ERROR"
)

type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    int64     `json:"user_id"`
	CardID    int64     `json:"card_id,omitempty"`
	EntryID   int64     `json:"entry_id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Balance   string    `json:"balance,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// Logger writes one JSON line per money movement
type Logger struct {
	logf func(format string, v ...any)
}

func NewLogger() *Logger {
	return &Logger{logf: log.Printf}
}

// NewLoggerWith sends events to logf instead of the standard logger
func NewLoggerWith(logf func(format string, v ...any)) *Logger {
	return &Logger{logf: logf}
}

// LogMovement records a committed balance change
func (a *Logger) LogMovement(eventType string, userID, cardID, entryID int64, amount, balance string) {
	a.log(Event{
		EventType: eventType,
		UserID:    userID,
		CardID:    cardID,
		EntryID:   entryID,
		Amount:    amount,
		Balance:   balance,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogDelete(userID, entryID int64) {
	a.log(Event{
		EventType: EventDelete,
		UserID:    userID,
		EntryID:   entryID,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogError(operation string, userID int64, err error) {
	a.log(Event{
		EventType: EventError,
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	if a == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	data, _ := json.Marshal(event)
	a.logf("AUDIT: %s", string(data))
}
