package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/api"
)

const maxTitleLength = 50

// FetchConversations replaces the conversation list with the server's.
func (s *Store) FetchConversations(ctx context.Context) error {
	conversations, err := s.client.ListConversations(ctx)
	if err != nil {
		s.log.Debug("fetching conversations", "error", err)
		return errors.Wrap(err, "fetching conversations")
	}

	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()
	s.observers.Notify()
	return nil
}

// CreateConversation creates a conversation, puts it first in the list and makes it active.
// A new conversation has no messages, so none are loaded.
func (s *Store) CreateConversation(ctx context.Context) (string, error) {
	created, err := s.client.CreateConversation(ctx)
	if err != nil {
		s.log.Debug("creating conversation", "error", err)
		return "", errors.Wrap(err, "creating conversation")
	}

	conversation := &api.Conversation{ID: created.ID, Title: created.Title}
	s.mu.Lock()
	s.conversations = append([]*api.Conversation{conversation}, s.conversations...)
	s.activeID = conversation.ID
	s.messages = nil
	s.voidLoadsLocked()
	s.mu.Unlock()
	s.observers.Notify()
	return conversation.ID, nil
}

// DeleteConversation deletes a conversation. Deleting the active one clears the selection.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.client.DeleteConversation(ctx, id); err != nil {
		s.log.Debug("deleting conversation", "id", id, "error", err)
		return errors.Wrapf(err, "deleting conversation %s", id)
	}

	s.mu.Lock()
	conversations := make([]*api.Conversation, 0, len(s.conversations))
	for _, conversation := range s.conversations {
		if conversation.ID != id {
			conversations = append(conversations, conversation)
		}
	}
	s.conversations = conversations
	if s.activeID == id {
		s.activeID = ""
		s.messages = nil
		s.voidLoadsLocked()
	}
	s.mu.Unlock()
	s.observers.Notify()
	return nil
}

// RenameConversation sets a conversation's title in place.
func (s *Store) RenameConversation(ctx context.Context, id, title string) error {
	if err := validateID(id); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if length := utf8.RuneCountInString(title); length == 0 || length > maxTitleLength {
		return ErrInvalidTitle
	}
	if err := s.client.RenameConversation(ctx, id, title); err != nil {
		s.log.Debug("renaming conversation", "id", id, "error", err)
		return errors.Wrapf(err, "renaming conversation %s", id)
	}

	s.mu.Lock()
	for _, conversation := range s.conversations {
		if conversation.ID == id {
			conversation.Title = title
			break
		}
	}
	s.mu.Unlock()
	s.observers.Notify()
	return nil
}
