package api

import (
	"context"
	"net/http"
	"net/url"
)

// GetMemory returns the entities and relations the service remembers about the user.
func (c *Client) GetMemory(ctx context.Context) (*Memory, error) {
	memory := &Memory{}
	if err := c.do(ctx, http.MethodGet, "/memory", nil, memory); err != nil {
		return nil, err
	}
	return memory, nil
}

// ExtractMemory asks the service to extract and remember personal information from text.
func (c *Client) ExtractMemory(ctx context.Context, text string) (*ExtractResult, error) {
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	result := &ExtractResult{}
	if err := c.do(ctx, http.MethodPost, "/memory/extract", &body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteMemoryEntity forgets an entity.
func (c *Client) DeleteMemoryEntity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/memory/entity/"+url.PathEscape(id), nil, nil)
}

// DeleteMemoryRelation forgets a relation.
func (c *Client) DeleteMemoryRelation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/memory/relation/"+url.PathEscape(id), nil, nil)
}
