package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/jsphweid/fingerbot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func websocketDial(httpURL string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpURL, "http"), nil)
	return conn, err
}

func decode(t *testing.T, dat []byte) model.PlaybackStatus {
	var st model.PlaybackStatus
	require.NoError(t, json.Unmarshal(dat, &st))
	return st
}

func TestSubscribeGetsLatestStatus(t *testing.T) {
	h := NewHub()
	h.Publish(model.PlaybackStatus{State: model.Scheduled, RunID: "one"})
	h.Publish(model.PlaybackStatus{State: model.Paused, RunID: "one", HasResume: true, ResumeOffset: 2})

	ch, cancel := h.Subscribe()
	defer cancel()

	st := decode(t, <-ch)
	assert.Equal(t, model.Paused, st.State)
	assert.Equal(t, 2.0, st.ResumeOffset)
}

func TestPublishFansOut(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Publish(model.PlaybackStatus{State: model.Completed})
	assert.Equal(t, model.Completed, decode(t, <-a).State)
	assert.Equal(t, model.Completed, decode(t, <-b).State)

	cancelA()
	cancelA()
	h.Publish(model.PlaybackStatus{State: model.Idle})
	assert.Equal(t, model.Idle, decode(t, <-b).State)
	assert.Len(t, a, 0)
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 100; i++ {
		h.Publish(model.PlaybackStatus{State: model.Scheduled})
	}
}
