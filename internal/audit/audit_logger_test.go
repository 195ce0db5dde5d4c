package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture() (*Logger, *[]string) {
	var lines []string
	return NewLoggerWith(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	}), &lines
}

func decode(t *testing.T, line string) Event {
	t.Helper()
	require.True(t, strings.HasPrefix(line, "AUDIT: "))
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "AUDIT: ")), &ev))
	return ev
}

func TestLogMovement(t *testing.T) {
	logger, lines := capture()

	logger.LogMovement(EventWithdrawal, 7, 3, 11, "250", "750")

	require.Len(t, *lines, 1)
	ev := decode(t, (*lines)[0])
	assert.Equal(t, EventWithdrawal, ev.EventType)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, int64(3), ev.CardID)
	assert.Equal(t, int64(11), ev.EntryID)
	assert.Equal(t, "250", ev.Amount)
	assert.Equal(t, "750", ev.Balance)
	assert.Equal(t, "SUCCESS", ev.Status)
	_, err := uuid.Parse(ev.ID)
	assert.NoError(t, err)
}

func TestLogErrorAndDelete(t *testing.T) {
	logger, lines := capture()

	logger.LogError("record_transaction", 4, errors.New("boom"))
	logger.LogDelete(4, 9)

	require.Len(t, *lines, 2)
	failed := decode(t, (*lines)[0])
	assert.Equal(t, EventError, failed.EventType)
	assert.Equal(t, "FAILED", failed.Status)

	deleted := decode(t, (*lines)[1])
	assert.Equal(t, EventDelete, deleted.EventType)
	assert.Equal(t, int64(9), deleted.EntryID)
	assert.NotEqual(t, failed.ID, deleted.ID)
}

func TestNilLoggerIsSilent(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.LogDelete(1, 2) })
}
