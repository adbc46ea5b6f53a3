package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamManager_DropLogsThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	sm := NewStreamManager(slog.New(slog.NewTextHandler(&buf, nil)))

	_, cancel := sm.Subscribe("home")
	defer cancel()

	for i := 0; i < 11; i++ {
		sm.Broadcast("home", fmt.Sprintf(`{"document_id":"home","removed":["n%d"]}`, i))
	}

	assert.Contains(t, buf.String(), "client buffer full")
	assert.Contains(t, buf.String(), "document=home")
}

func TestStreamManager_NilLogger(t *testing.T) {
	sm := NewStreamManager(nil)
	_, cancel := sm.Subscribe("home")
	defer cancel()

	assert.NotPanics(t, func() {
		for i := 0; i < 11; i++ {
			sm.Broadcast("home", "{}")
		}
	})
	assert.Equal(t, 1, sm.Subscribers("home"))
}
