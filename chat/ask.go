package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/api"
)

// AskOptions tune how the backend answers.
type AskOptions struct {
	DisableThinking bool
	TopK            int
}

// Ask streams the answer to a question in the active conversation, or in a new one the
// backend creates when none is active. The question and the final answer are appended
// to the visible messages only while that conversation is still the active one.
// onEvent, if set, sees every stream event after the store has applied it.
func (s *Store) Ask(ctx context.Context, question string, opts AskOptions, onEvent func(*api.StreamEvent)) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	s.mu.Lock()
	if s.streaming {
		s.mu.Unlock()
		return ErrStreamInProgress
	}
	// A pending load would replace the list and drop the question.
	if s.loading {
		s.mu.Unlock()
		return ErrLoadInProgress
	}
	s.streaming = true
	conversationID := s.activeID
	s.messages = append(s.messages, &api.Message{Role: api.RoleUser, Content: question})
	s.mu.Unlock()
	s.observers.Notify()

	defer func() {
		s.mu.Lock()
		s.streaming = false
		s.mu.Unlock()
		s.observers.Notify()
	}()

	request := &api.AskRequest{
		Question:       question,
		ConversationID: conversationID,
		ThinkMode:      !opts.DisableThinking,
		TopK:           opts.TopK,
	}
	created := conversationID == ""
	answer := &api.Message{Role: api.RoleAssistant}
	var thinking strings.Builder
	err := s.client.Stream(ctx, request, func(event *api.StreamEvent) error {
		switch event.Type {
		case api.EventReasoning:
			text, err := event.Text()
			if err != nil {
				return err
			}
			thinking.WriteString(text)

		case api.EventSources:
			sources, err := event.Sources()
			if err != nil {
				return err
			}
			answer.Sources = sources

		case api.EventReferences:
			references, err := event.References()
			if err != nil {
				return err
			}
			answer.References = references

		case api.EventAnswerFinal:
			text, err := event.Text()
			if err != nil {
				return err
			}
			answer.Content = text
			answer.Thinking = thinking.String()
			s.appendIfActive(conversationID, answer)

		case api.EventConversationID:
			id, err := event.Text()
			if err != nil {
				return err
			}
			if created {
				s.adopt(id)
				conversationID = id
			}
		}
		if onEvent != nil {
			onEvent(event)
		}
		return nil
	})
	if err != nil {
		s.log.Debug("asking", "conversation_id", conversationID, "error", err)
		return errors.Wrap(err, "asking question")
	}

	// The backend titled the conversation after the question.
	if created {
		return s.FetchConversations(ctx)
	}
	return nil
}

// appendIfActive appends message if conversationID is still the active conversation.
func (s *Store) appendIfActive(conversationID string, message *api.Message) {
	s.mu.Lock()
	if s.activeID != conversationID {
		s.mu.Unlock()
		return
	}
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	s.observers.Notify()
}

// adopt makes the conversation the backend created for a question the active one,
// unless the user selected another conversation meanwhile.
func (s *Store) adopt(id string) {
	s.mu.Lock()
	if s.activeID != "" {
		s.mu.Unlock()
		return
	}
	s.activeID = id
	s.mu.Unlock()
	s.observers.Notify()
}
