package chatbotapi

type ChatbotStatus string

const (
	StatusPending    ChatbotStatus = "pending"
	StatusProcessing ChatbotStatus = "processing"
	StatusCompleted  ChatbotStatus = "completed"
	StatusReady      ChatbotStatus = "ready"
	StatusFailed     ChatbotStatus = "failed"
)

// Usable reports whether the chatbot can answer chat messages.
func (s ChatbotStatus) Usable() bool {
	return s == StatusCompleted || s == StatusReady
}

type WizardStartRequest struct {
	WebsiteURL  string `json:"website_url"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type WizardStartResponse struct {
	ChatbotID     string        `json:"chatbot_id"`
	ScrapingJobID string        `json:"scraping_job_id"`
	Status        ChatbotStatus `json:"status"`
	Message       string        `json:"message"`
}

type StatusResponse struct {
	ChatbotID  string         `json:"chatbot_id"`
	Name       string         `json:"name"`
	Status     ChatbotStatus  `json:"status"`
	WebsiteURL string         `json:"website_url"`
	Progress   map[string]any `json:"progress"`
	CreatedAt  Timestamp      `json:"created_at"`
	UpdatedAt  Timestamp      `json:"updated_at"`
}

type Chatbot struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	WebsiteURL  string        `json:"website_url"`
	Status      ChatbotStatus `json:"status"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   Timestamp     `json:"updated_at"`
	IsActive    bool          `json:"is_active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DeleteAllResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	Sources        []string `json:"sources,omitempty"`
}

type KnowledgeItemCreate struct {
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type,omitempty"`
	SourceURL   string         `json:"source_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type KnowledgeItemUpdate struct {
	Title    *string        `json:"title,omitempty"`
	Content  *string        `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type KnowledgeItem struct {
	ID          string    `json:"id"`
	ChatbotID   string    `json:"chatbot_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	SourceURL   string    `json:"source_url,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

type ScrapingJob struct {
	ID           string     `json:"id"`
	ChatbotID    string     `json:"chatbot_id"`
	URL          string     `json:"url"`
	Status       string     `json:"status"`
	PagesScraped int        `json:"pages_scraped"`
	TotalPages   int        `json:"total_pages"`
	StartedAt    *Timestamp `json:"started_at,omitempty"`
	CompletedAt  *Timestamp `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

type Conversation struct {
	ID             string         `json:"id"`
	ChatbotID      string         `json:"chatbot_id"`
	ConversationID string         `json:"conversation_id"`
	Title          string         `json:"title,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      Timestamp      `json:"created_at"`
	UpdatedAt      Timestamp      `json:"updated_at"`
}

type ConversationList struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
	Skip          int            `json:"skip"`
	Limit         int            `json:"limit"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           MessageRole    `json:"role"`
	Content        string         `json:"content"`
	Sources        []string       `json:"sources,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      Timestamp      `json:"created_at"`
}

type ConversationHistory struct {
	Conversation
	Messages []Message `json:"messages"`
}

// Page selects a window of a list endpoint.
type Page struct {
	Skip  int
	Limit int
}
