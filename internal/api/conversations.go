package api

import (
	"context"
	"net/http"
	"net/url"
)

func conversationPath(id string) string {
	return "/chat/conversations/" + url.PathEscape(id)
}

// ListConversations returns the user's conversations, most recently updated first.
func (c *Client) ListConversations(ctx context.Context) ([]*Conversation, error) {
	var conversations []*Conversation
	if err := c.do(ctx, http.MethodGet, "/chat/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversation creates an empty conversation. Only ID and Title are set.
func (c *Client) CreateConversation(ctx context.Context) (*Conversation, error) {
	conversation := &Conversation{}
	if err := c.do(ctx, http.MethodPost, "/chat/conversations", nil, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// DeleteConversation deletes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, conversationPath(id), nil, nil)
}

// RenameConversation sets a conversation's title.
func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	body := struct {
		Title string `json:"title"`
	}{Title: title}
	return c.do(ctx, http.MethodPatch, conversationPath(id), &body, nil)
}

// ListMessages returns a conversation's messages in creation order.
func (c *Client) ListMessages(ctx context.Context, id string) ([]*Message, error) {
	var messages []*Message
	if err := c.do(ctx, http.MethodGet, conversationPath(id)+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
