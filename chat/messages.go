package chat

import (
	"context"

	"github.com/pkg/errors"
)

// LoadMessages makes id the active conversation immediately, then loads its messages.
// The response is applied only if no other load (or create, or delete of the active
// conversation) happened since this call started. A superseded response, successful
// or not, is dropped and LoadMessages returns nil. Retrying a failed load of the
// active conversation must go through LoadMessages, since SelectConversation is a no-op.
func (s *Store) LoadMessages(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	s.activeID = id
	s.loadSeq++
	ticket := s.loadSeq
	s.loading = true
	s.mu.Unlock()
	s.observers.Notify()

	messages, err := s.client.ListMessages(ctx, id)

	s.mu.Lock()
	if s.loadSeq != ticket {
		s.mu.Unlock()
		s.log.Debug("dropping stale messages", "id", id, "ticket", ticket, "error", err)
		return nil
	}
	s.loading = false
	// On failure the list is emptied rather than left showing another conversation.
	s.messages = messages
	s.mu.Unlock()
	s.observers.Notify()

	if err != nil {
		s.log.Debug("loading messages", "id", id, "error", err)
		return errors.Wrapf(err, "loading messages of conversation %s", id)
	}
	return nil
}

// SelectConversation loads id unless it is already the active conversation.
func (s *Store) SelectConversation(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if active, _ := s.Active(); active == id {
		return nil
	}
	return s.LoadMessages(ctx, id)
}
