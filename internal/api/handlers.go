package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"shopwise.io/support-chat/internal/core"
	"shopwise.io/support-chat/internal/store"
)

const (
	defaultProductLimit = 100
	maxProductLimit     = 500
)

type APIHandler struct {
	dbStore     *store.SQLiteStore
	chatService *core.ChatService
}

func NewAPIHandler(db *store.SQLiteStore, cs *core.ChatService) *APIHandler {
	return &APIHandler{dbStore: db, chatService: cs}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Product handlers

func (h *APIHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultProductLimit)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxProductLimit {
		limit = defaultProductLimit
	}

	products, err := h.dbStore.ListProducts(skip, limit)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		http.Error(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *APIHandler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := h.dbStore.GetProductByProductID(productID)
	if err != nil {
		log.Printf("Error getting product %d: %v", productID, err)
		http.Error(w, "Failed to get product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *APIHandler) GetProductsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.dbStore.GetProductsByCategory(category)
	if err != nil {
		log.Printf("Error getting products in category %s: %v", category, err)
		http.Error(w, "Failed to get products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// User handlers

type CreateUserRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Username == "" || req.Email == "" {
		http.Error(w, "user_id, username and email are required", http.StatusBadRequest)
		return
	}

	user, err := h.dbStore.CreateUser(req.UserID, req.Username, req.Email)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.UserID, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.dbStore.GetUserByUserID(userID)
	if err != nil {
		log.Printf("Error getting user %s: %v", userID, err)
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Conversation handlers

type CreateConversationRequest struct {
	ConversationID string  `json:"conversation_id,omitempty"`
	UserID         string  `json:"user_id"`
	Title          *string `json:"title,omitempty"`
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	conversation, err := h.dbStore.CreateConversation(req.ConversationID, req.UserID, req.Title)
	if err != nil {
		log.Printf("Error creating conversation for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, conversation)
}

type ConversationHistoryResponse struct {
	ConversationID string          `json:"conversation_id"`
	Title          *string         `json:"title"`
	Messages       []store.Message `json:"messages"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at"`
}

func (h *APIHandler) GetConversationHistoryHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conversation, err := h.dbStore.GetConversationByConversationID(conversationID)
	if err != nil {
		log.Printf("Error getting conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}
	if conversation == nil {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}

	messages, err := h.dbStore.GetMessagesByConversationID(conversationID)
	if err != nil {
		log.Printf("Error getting messages for conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}

	writeJSON(w, http.StatusOK, ConversationHistoryResponse{
		ConversationID: conversation.ConversationID,
		Title:          conversation.Title,
		Messages:       messages,
		CreatedAt:      conversation.CreatedAt,
		UpdatedAt:      conversation.UpdatedAt,
	})
}

func (h *APIHandler) ListUserConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	conversations, err := h.dbStore.GetConversationsByUserID(userID)
	if err != nil {
		log.Printf("Error listing conversations for user %s: %v", userID, err)
		http.Error(w, "Failed to list conversations", http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []store.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

// Chat handler

type ChatRequest struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" || req.UserID == "" {
		http.Error(w, "message and user_id are required", http.StatusBadRequest)
		return
	}

	result, err := h.chatService.HandleChat(r.Context(), req.Message, req.UserID, req.ConversationID)
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		log.Printf("Error handling chat for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to process chat message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Misc handlers

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Support Chat Backend API"})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
