package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"shopwise.io/support-chat/internal/store"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ChatService struct {
	dbStore   *store.SQLiteStore
	responder *Responder
}

func NewChatService(db *store.SQLiteStore, responder *Responder) *ChatService {
	return &ChatService{
		dbStore:   db,
		responder: responder,
	}
}

// ChatResult is the envelope returned for one handled chat message.
type ChatResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// HandleChat resolves or creates the conversation, persists the user message,
// generates the assistant reply, persists it and refreshes the conversation
// timestamp. An unknown conversationID fails with ErrConversationNotFound
// before anything is written.
func (s *ChatService) HandleChat(ctx context.Context, message, userID, conversationID string) (*ChatResult, error) {
	if conversationID == "" {
		conv, err := s.dbStore.CreateConversation(uuid.NewString(), userID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ConversationID
	} else {
		conv, err := s.dbStore.GetConversationByConversationID(conversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify conversation: %w", err)
		}
		if conv == nil {
			return nil, ErrConversationNotFound
		}
	}

	userMsg := store.Message{
		ConversationID: conversationID,
		Role:           "user",
		Content:        message,
	}
	if err := s.dbStore.CreateMessage(&userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	// Never fails: degrades to the rule-based fallback on any LLM fault.
	reply := s.responder.Respond(ctx, message)

	assistantMsg := store.Message{
		ConversationID: conversationID,
		Role:           "assistant",
		Content:        reply,
	}
	if err := s.dbStore.CreateMessage(&assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	if err := s.dbStore.TouchConversation(conversationID); err != nil {
		// The exchange is already persisted; a stale updated_at is not
		// worth failing the request over.
		log.Printf("Failed to refresh conversation %s timestamp: %v", conversationID, err)
	}

	return &ChatResult{
		Response:       reply,
		ConversationID: conversationID,
		MessageID:      assistantMsg.MessageID,
	}, nil
}
