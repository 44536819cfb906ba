package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/realtime"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

const defaultPageLimit = 50

var errNoOpenChat = errors.New("no open chat")

// Surface manages the chat roster and the one open conversation. Live
// messages append only when their chat is the open one; otherwise they
// bump the chat's unread counter.
type Surface struct {
	chats *api.ChatService
	log   *logger.Logger

	mu       sync.Mutex
	roster   map[string]*models.Chat
	open     *models.Chat
	messages []models.Message
	draft    []models.Attachment
	// focused mirrors the UI: markRead fires only when the open chat
	// is focused and scrolled to latest.
	focused  bool
	atLatest bool
	lastRead string
}

func NewSurface(chats *api.ChatService, log *logger.Logger) *Surface {
	return &Surface{
		chats:  chats,
		log:    log.WithField("component", "chat"),
		roster: make(map[string]*models.Chat),
	}
}

// Refresh reloads the roster with unread counters.
func (s *Surface) Refresh(ctx context.Context) ([]models.Chat, error) {
	list, err := s.chats.ListMine(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.roster = make(map[string]*models.Chat, len(list))
	for i := range list {
		chat := list[i]
		s.roster[chat.ID] = &chat
	}
	s.mu.Unlock()

	return list, nil
}

// Open resolves the chat for a request (creating it if needed) and
// loads the newest page of messages.
func (s *Surface) Open(ctx context.Context, requestID string) (*models.Chat, []models.Message, error) {
	chat, err := s.chats.CreateOrGet(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.chats.Messages(ctx, chat.ID, "", defaultPageLimit)
	if err != nil {
		return nil, nil, err
	}
	sortBySentAt(messages)

	s.mu.Lock()
	s.open = chat
	s.messages = messages
	s.draft = nil
	s.focused = true
	s.atLatest = true
	s.roster[chat.ID] = chat
	s.mu.Unlock()

	s.markReadIfFocused(ctx)
	return chat, messages, nil
}

// LoadOlder pages backwards from the oldest loaded message.
func (s *Surface) LoadOlder(ctx context.Context) ([]models.Message, error) {
	s.mu.Lock()
	if s.open == nil {
		s.mu.Unlock()
		return nil, nil
	}
	chatID := s.open.ID
	before := ""
	if len(s.messages) > 0 {
		before = s.messages[0].ID
	}
	s.mu.Unlock()

	older, err := s.chats.Messages(ctx, chatID, before, defaultPageLimit)
	if err != nil {
		return nil, err
	}
	sortBySentAt(older)

	s.mu.Lock()
	s.messages = append(older, s.messages...)
	s.atLatest = false
	result := s.messages
	s.mu.Unlock()

	return result, nil
}

// Send posts the body with any uploaded draft attachments, clearing
// the draft on success.
func (s *Surface) Send(ctx context.Context, body string) (*models.Message, error) {
	s.mu.Lock()
	if s.open == nil {
		s.mu.Unlock()
		return nil, errNoOpenChat
	}
	chatID := s.open.ID
	draft := s.draft
	s.mu.Unlock()

	message, err := s.chats.Send(ctx, chatID, body, draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.messages = append(s.messages, *message)
	s.draft = nil
	s.mu.Unlock()

	return message, nil
}

// Upload streams files to the backend; the returned descriptors are
// appended to the compose draft. No client-side retention beyond the
// draft itself.
func (s *Surface) Upload(ctx context.Context, files map[string]io.Reader) ([]models.Attachment, error) {
	s.mu.Lock()
	if s.open == nil {
		s.mu.Unlock()
		return nil, errNoOpenChat
	}
	chatID := s.open.ID
	s.mu.Unlock()

	attachments, err := s.chats.UploadAttachments(ctx, chatID, files)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.draft = append(s.draft, attachments...)
	s.mu.Unlock()

	return attachments, nil
}

func (s *Surface) Draft() []models.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Attachment(nil), s.draft...)
}

// SetFocus mirrors the UI focus/scroll state; gaining focus at the
// latest message triggers markRead.
func (s *Surface) SetFocus(ctx context.Context, focused, atLatest bool) {
	s.mu.Lock()
	s.focused = focused
	s.atLatest = atLatest
	s.mu.Unlock()

	if focused && atLatest {
		s.markReadIfFocused(ctx)
	}
}

// markReadIfFocused is idempotent per newest message: repeating it for
// the same read position issues no extra call.
func (s *Surface) markReadIfFocused(ctx context.Context) {
	s.mu.Lock()
	if s.open == nil || !s.focused || !s.atLatest || len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	newest := s.messages[len(s.messages)-1].ID
	if newest == s.lastRead {
		s.mu.Unlock()
		return
	}
	chatID := s.open.ID
	s.lastRead = newest
	if chat, ok := s.roster[chatID]; ok {
		chat.Unread = 0
	}
	s.mu.Unlock()

	if err := s.chats.MarkRead(ctx, chatID); err != nil {
		s.log.WithError(err).WithField("chat_id", chatID).Warn("markRead failed")
	}
}

// Attach subscribes the surface to live chat events.
func (s *Surface) Attach(ctx context.Context, channel *realtime.Channel) string {
	id, events := channel.Subscribe(realtime.EventChatMessage, realtime.EventChatRead)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				s.handle(ctx, event)
			}
		}
	}()

	return id
}

func (s *Surface) handle(ctx context.Context, event realtime.Event) {
	switch event.Type {
	case realtime.EventChatMessage:
		var message models.Message
		if err := json.Unmarshal(event.Payload, &message); err != nil {
			s.log.WithError(err).Debug("Malformed chat message event")
			return
		}
		s.applyLive(ctx, message)

	case realtime.EventChatRead:
		var payload realtime.ChatReadPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			s.log.WithError(err).Debug("Malformed chat read event")
			return
		}
		s.applyRead(payload)

	case realtime.EventReconnected:
		s.reconcile(ctx)
	}
}

func (s *Surface) applyLive(ctx context.Context, message models.Message) {
	s.mu.Lock()
	openID := ""
	if s.open != nil {
		openID = s.open.ID
	}

	if message.ChatID == openID {
		s.messages = append(s.messages, message)
		s.mu.Unlock()
		s.markReadIfFocused(ctx)
		return
	}

	if chat, ok := s.roster[message.ChatID]; ok {
		chat.Unread++
		at := message.SentAt
		chat.LastMessageAt = &at
	}
	s.mu.Unlock()
}

func (s *Surface) applyRead(payload realtime.ChatReadPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil || s.open.ID != payload.ChatID {
		return
	}

	now := time.Now()
	read := make(map[string]bool, len(payload.MessageIDs))
	for _, id := range payload.MessageIDs {
		read[id] = true
	}
	for i := range s.messages {
		if read[s.messages[i].ID] && !s.messages[i].ReadByUser(payload.UserID) {
			s.messages[i].ReadBy = append(s.messages[i].ReadBy, models.ReadReceipt{
				UserID: payload.UserID,
				ReadAt: now,
			})
		}
	}
}

// reconcile re-fetches the open chat's newest page after a reconnect.
func (s *Surface) reconcile(ctx context.Context) {
	s.mu.Lock()
	if s.open == nil {
		s.mu.Unlock()
		return
	}
	chatID := s.open.ID
	s.mu.Unlock()

	messages, err := s.chats.Messages(ctx, chatID, "", defaultPageLimit)
	if err != nil {
		s.log.WithError(err).Warn("Chat reconcile failed")
		return
	}
	sortBySentAt(messages)

	s.mu.Lock()
	s.messages = messages
	s.atLatest = true
	s.mu.Unlock()
	s.markReadIfFocused(ctx)
}

func (s *Surface) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

func sortBySentAt(messages []models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt.Before(messages[j].SentAt)
	})
}
