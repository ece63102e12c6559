// Package chatbotapi is the client for the external chatbot service: the
// creation wizard, chatbots, chat, knowledge base, scraping jobs and
// conversations.
package chatbotapi

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aitwy/aitwy-server/internal/client"
)

const (
	pathWizardStart   = "/api/v1/chatbots/wizard/start"
	pathStatus        = "/api/v1/chatbots/{chatbot_id}/status"
	pathFinalize      = "/api/v1/chatbots/{chatbot_id}/finalize"
	pathList          = "/api/v1/chatbots/list"
	pathChatbot       = "/api/v1/chatbots/{chatbot_id}"
	pathChat          = "/api/v1/chatbots/{chatbot_id}/chat"
	pathKnowledge     = "/api/v1/chatbots/{chatbot_id}/knowledge"
	pathKnowledgeItem = "/api/v1/chatbots/{chatbot_id}/knowledge/{item_id}"
	pathScrapingJob   = "/api/v1/scraping-jobs/{job_id}"
	pathScrapingRetry = "/api/v1/scraping-jobs/{job_id}/retry"
	pathConversations = "/api/v1/chatbots/{chatbot_id}/conversations"
	pathConversation  = "/api/v1/chatbots/{chatbot_id}/conversations/{conversation_id}"
)

var (
	defaultChatbotPage      = Page{Skip: 0, Limit: 100}
	defaultKnowledgePage    = Page{Skip: 0, Limit: 50}
	defaultConversationPage = Page{Skip: 0, Limit: 20}
)

type Client struct {
	rest *resty.Client
}

func New(baseURL string, timeout time.Duration, tokens client.TokenSource) *Client {
	rest := client.NewRestClient(baseURL, timeout, tokens).
		SetHeader("ngrok-skip-browser-warning", "true")
	return &Client{rest: rest}
}

func (c *Client) StartWizard(ctx context.Context, req WizardStartRequest) (*WizardStartResponse, error) {
	return call[WizardStartResponse](c.rest.R().SetContext(ctx).SetBody(req), resty.MethodPost, pathWizardStart)
}

func (c *Client) Status(ctx context.Context, chatbotID string) (*StatusResponse, error) {
	return call[StatusResponse](c.chatbot(ctx, chatbotID), resty.MethodGet, pathStatus)
}

func (c *Client) Finalize(ctx context.Context, chatbotID string) (*MessageResponse, error) {
	return call[MessageResponse](c.chatbot(ctx, chatbotID), resty.MethodPost, pathFinalize)
}

func (c *Client) List(ctx context.Context, page Page) ([]Chatbot, error) {
	req := c.rest.R().SetContext(ctx)
	setPage(req, page, defaultChatbotPage)
	out, err := call[[]Chatbot](req, resty.MethodGet, pathList)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *Client) Get(ctx context.Context, chatbotID string) (*Chatbot, error) {
	return call[Chatbot](c.chatbot(ctx, chatbotID), resty.MethodGet, pathChatbot)
}

func (c *Client) Delete(ctx context.Context, chatbotID string) (*MessageResponse, error) {
	return call[MessageResponse](c.chatbot(ctx, chatbotID), resty.MethodDelete, pathChatbot)
}

func (c *Client) Chat(ctx context.Context, chatbotID string, req ChatRequest) (*ChatResponse, error) {
	return call[ChatResponse](c.chatbot(ctx, chatbotID).SetBody(req), resty.MethodPost, pathChat)
}

// ListKnowledge lists knowledge items, filtered by contentType when set.
func (c *Client) ListKnowledge(ctx context.Context, chatbotID, contentType string, page Page) ([]KnowledgeItem, error) {
	req := c.chatbot(ctx, chatbotID)
	if contentType != "" {
		req.SetQueryParam("content_type", contentType)
	}
	setPage(req, page, defaultKnowledgePage)
	out, err := call[[]KnowledgeItem](req, resty.MethodGet, pathKnowledge)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *Client) CreateKnowledge(ctx context.Context, chatbotID string, item KnowledgeItemCreate) (*KnowledgeItem, error) {
	return call[KnowledgeItem](c.chatbot(ctx, chatbotID).SetBody(item), resty.MethodPost, pathKnowledge)
}

func (c *Client) UpdateKnowledge(ctx context.Context, chatbotID, itemID string, update KnowledgeItemUpdate) (*KnowledgeItem, error) {
	req := c.chatbot(ctx, chatbotID).SetPathParam("item_id", itemID).SetBody(update)
	return call[KnowledgeItem](req, resty.MethodPut, pathKnowledgeItem)
}

func (c *Client) DeleteKnowledge(ctx context.Context, chatbotID, itemID string) (*MessageResponse, error) {
	req := c.chatbot(ctx, chatbotID).SetPathParam("item_id", itemID)
	return call[MessageResponse](req, resty.MethodDelete, pathKnowledgeItem)
}

func (c *Client) ScrapingJob(ctx context.Context, jobID string) (*ScrapingJob, error) {
	req := c.rest.R().SetContext(ctx).SetPathParam("job_id", jobID)
	return call[ScrapingJob](req, resty.MethodGet, pathScrapingJob)
}

func (c *Client) RetryScrapingJob(ctx context.Context, jobID string) (*MessageResponse, error) {
	req := c.rest.R().SetContext(ctx).SetPathParam("job_id", jobID)
	return call[MessageResponse](req, resty.MethodPost, pathScrapingRetry)
}

func (c *Client) ListConversations(ctx context.Context, chatbotID string, page Page) (*ConversationList, error) {
	req := c.chatbot(ctx, chatbotID)
	setPage(req, page, defaultConversationPage)
	return call[ConversationList](req, resty.MethodGet, pathConversations)
}

// Conversation returns a conversation with its full message history.
func (c *Client) Conversation(ctx context.Context, chatbotID, conversationID string) (*ConversationHistory, error) {
	req := c.chatbot(ctx, chatbotID).SetPathParam("conversation_id", conversationID)
	return call[ConversationHistory](req, resty.MethodGet, pathConversation)
}

func (c *Client) DeleteConversation(ctx context.Context, chatbotID, conversationID string) (*MessageResponse, error) {
	req := c.chatbot(ctx, chatbotID).SetPathParam("conversation_id", conversationID)
	return call[MessageResponse](req, resty.MethodDelete, pathConversation)
}

func (c *Client) DeleteAllConversations(ctx context.Context, chatbotID string) (*DeleteAllResponse, error) {
	return call[DeleteAllResponse](c.chatbot(ctx, chatbotID), resty.MethodDelete, pathConversations)
}

func (c *Client) chatbot(ctx context.Context, chatbotID string) *resty.Request {
	return c.rest.R().SetContext(ctx).SetPathParam("chatbot_id", chatbotID)
}

func setPage(req *resty.Request, page, def Page) {
	if page.Limit <= 0 {
		page.Limit = def.Limit
	}
	if page.Skip < 0 {
		page.Skip = def.Skip
	}
	req.SetQueryParam("skip", strconv.Itoa(page.Skip))
	req.SetQueryParam("limit", strconv.Itoa(page.Limit))
}

func call[T any](req *resty.Request, method, path string) (*T, error) {
	out := new(T)
	req.SetResult(out)
	if err := client.CheckResponse(req.Execute(method, path)); err != nil {
		return nil, err
	}
	return out, nil
}
