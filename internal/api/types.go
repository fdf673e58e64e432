package api

// TokenResponse is returned by the register and login endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
}

// Conversation is a server-owned thread of messages.
type Conversation struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

// Reference is a knowledge base citation. Its fields are owned by the backend.
type Reference map[string]any

// Message of a conversation.
type Message struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	Thinking   string      `json:"thinking,omitempty"`
	Sources    []string    `json:"sources,omitempty"`
	References []Reference `json:"references,omitempty"`
	CreatedAt  string      `json:"created_at,omitempty"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AskRequest is the body of a streaming question.
type AskRequest struct {
	Question string `json:"question"`
	// Empty lets the backend create a conversation titled after the question.
	ConversationID string `json:"conversation_id,omitempty"`
	ThinkMode      bool   `json:"think_mode"`
	TopK           int    `json:"top_k"`
}

// MemoryEntity is a node of the user's graph memory.
type MemoryEntity struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityName string         `json:"entity_name"`
	Properties map[string]any `json:"properties"`
}

// MemoryRelation is an edge of the user's graph memory.
type MemoryRelation struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

// Memory is the user's graph memory.
type Memory struct {
	Entities  []*MemoryEntity   `json:"entities"`
	Relations []*MemoryRelation `json:"relations"`
}

// ExtractedEntity is an entity found in free text before it is saved.
type ExtractedEntity struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// ExtractedRelation is a relation found in free text before it is saved.
type ExtractedRelation struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

// ExtractResult is returned when the user tells the service something to remember.
type ExtractResult struct {
	Extracted struct {
		Entities  []*ExtractedEntity   `json:"entities"`
		Relations []*ExtractedRelation `json:"relations"`
	} `json:"extracted"`
	Saved struct {
		NewEntities  int `json:"new_entities"`
		NewRelations int `json:"new_relations"`
	} `json:"saved"`
}
