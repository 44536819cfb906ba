package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

type ChatService struct {
	client *Client
}

// CreateOrGet resolves the chat for a request, creating it when the
// request has an assigned mechanic and no chat yet.
func (s *ChatService) CreateOrGet(ctx context.Context, requestID string) (*models.Chat, error) {
	body := map[string]string{"request_id": requestID}
	var out models.Chat
	if _, err := s.client.do(ctx, http.MethodPost, "/chat/create", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ChatService) GetByRequest(ctx context.Context, requestID string) (*models.Chat, error) {
	var out models.Chat
	if _, err := s.client.do(ctx, http.MethodGet, "/chat/by-request/"+requestID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ChatService) ListMine(ctx context.Context) ([]models.Chat, error) {
	var out []models.Chat
	if _, err := s.client.do(ctx, http.MethodGet, "/chat/mine", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Messages pages backwards through a chat: before is the oldest loaded
// message id, empty for the newest page.
func (s *ChatService) Messages(ctx context.Context, chatID, before string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", before)
	}

	var out []models.Message
	if _, err := s.client.do(ctx, http.MethodGet, "/chat/"+chatID+"/messages", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ChatService) Send(ctx context.Context, chatID, body string, attachments []models.Attachment) (*models.Message, error) {
	payload := map[string]interface{}{"body": body}
	if len(attachments) > 0 {
		payload["attachments"] = attachments
	}
	var out models.Message
	if _, err := s.client.do(ctx, http.MethodPost, "/chat/"+chatID+"/messages", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAttachments streams files as multipart form data and returns
// the stored descriptors for the compose draft.
func (s *ChatService) UploadAttachments(ctx context.Context, chatID string, files map[string]io.Reader) ([]models.Attachment, error) {
	var out []models.Attachment
	if _, err := s.client.doMultipart(ctx, "/chat/"+chatID+"/upload", "attachments", files, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead is idempotent; repeating it leaves server state unchanged.
func (s *ChatService) MarkRead(ctx context.Context, chatID string) error {
	_, err := s.client.do(ctx, http.MethodPost, "/chat/"+chatID+"/mark-read", nil, nil, nil)
	return err
}
