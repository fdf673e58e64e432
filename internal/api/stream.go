package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Stream event types.
const (
	EventReasoning      = "reasoning"
	EventAnswer         = "answer"
	EventReferences     = "references"
	EventSources        = "sources"
	EventAnswerFinal    = "answer_final"
	EventConversationID = "conversation_id"
	EventMemoryUpdate   = "memory_update"
	EventDone           = "done"
	EventError          = "error"
)

// StreamEvent is one line of the answer stream.
type StreamEvent struct {
	Type string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Text decodes the payload of a string event (reasoning, answer, answer_final, conversation_id, error).
func (e *StreamEvent) Text() (string, error) {
	var text string
	if err := json.Unmarshal(e.Data, &text); err != nil {
		return "", errors.Wrapf(err, "decoding %s event", e.Type)
	}
	return text, nil
}

// Sources decodes the payload of a sources event.
func (e *StreamEvent) Sources() ([]string, error) {
	var sources []string
	if err := json.Unmarshal(e.Data, &sources); err != nil {
		return nil, errors.Wrap(err, "decoding sources event")
	}
	return sources, nil
}

// References decodes the payload of a references event.
func (e *StreamEvent) References() ([]Reference, error) {
	var references []Reference
	if err := json.Unmarshal(e.Data, &references); err != nil {
		return nil, errors.Wrap(err, "decoding references event")
	}
	return references, nil
}

// MemoryUpdate decodes the payload of a memory_update event.
func (e *StreamEvent) MemoryUpdate() (entities int, relations int, err error) {
	var update struct {
		Entities  int `json:"entities"`
		Relations int `json:"relations"`
	}
	if err := json.Unmarshal(e.Data, &update); err != nil {
		return 0, 0, errors.Wrap(err, "decoding memory_update event")
	}
	return update.Entities, update.Relations, nil
}

// Stream asks a question and calls fn with every event, in order, until the stream ends.
// An error event ends the stream with a *ServerError. An error returned by fn aborts it.
func (c *Client) Stream(ctx context.Context, request *AskRequest, fn func(*StreamEvent) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var timer *time.Timer
	if c.timeout > 0 {
		timer = time.AfterFunc(c.timeout, cancel)
	}
	response, err := c.send(ctx, http.MethodPost, "/chat/stream", request)
	if timer != nil {
		timer.Stop()
	}
	if err != nil {
		return err
	}
	defer response.Body.Close()

	reader := bufio.NewReader(response.Body)
	for {
		line, readErr := reader.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			event := &StreamEvent{}
			if err := json.Unmarshal(line, event); err != nil {
				return &ServerError{StatusCode: response.StatusCode, Detail: "malformed stream event: " + err.Error()}
			}
			if event.Type == EventError {
				detail, err := event.Text()
				if err != nil {
					detail = string(event.Data)
				}
				return &ServerError{Detail: detail}
			}
			if err := fn(event); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return &NetworkError{Op: "reading stream", Err: readErr}
		}
	}
}
