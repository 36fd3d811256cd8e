package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shopwise.io/support-chat/internal/core"
	"shopwise.io/support-chat/internal/store"
)

func setupServer(t *testing.T) (http.Handler, *store.SQLiteStore) {
	t.Helper()

	dir := t.TempDir()
	dbStore, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { dbStore.Close() })

	csvPath := filepath.Join(dir, "products.csv")
	catalog := "product_id,product_name,category,price,stock_quantity,description\n" +
		"1,ProBook Laptop 14,Electronics,799.99,5,A lightweight laptop for work and travel\n" +
		"2,SoundMax Headphones,Audio,129.99,25,Wireless over-ear headphones\n" +
		"3,Galaxy Smartphone X,Electronics,999.00,12,Flagship smartphone with a large display\n"
	if err := os.WriteFile(csvPath, []byte(catalog), 0o644); err != nil {
		t.Fatalf("failed to write catalog CSV: %v", err)
	}
	if _, err := dbStore.ReplaceProductsFromCSV(csvPath); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	// No completer: every chat goes through the rule-based fallback.
	matcher := core.NewProductMatcher(dbStore)
	responder := core.NewResponder(dbStore, matcher, nil)
	chatService := core.NewChatService(dbStore, responder)
	router := NewRouter(NewAPIHandler(dbStore, chatService))
	return router, dbStore
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", resp.Body.String(), err)
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupServer(t)

	resp := doJSON(t, router, http.MethodGet, "/health", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["status"] != "healthy" {
		t.Errorf("unexpected status: %v", body["status"])
	}
	if body["timestamp"] == nil {
		t.Error("expected a timestamp")
	}
}

func TestListProducts(t *testing.T) {
	router, _ := setupServer(t)

	resp := doJSON(t, router, http.MethodGet, "/api/products", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	products := decodeBody[[]store.Product](t, resp)
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}

	resp = doJSON(t, router, http.MethodGet, "/api/products?skip=1&limit=1", nil)
	page := decodeBody[[]store.Product](t, resp)
	if len(page) != 1 || page[0].ProductID != 2 {
		t.Errorf("expected paginated product 2, got %+v", page)
	}
}

func TestGetProduct(t *testing.T) {
	router, _ := setupServer(t)

	resp := doJSON(t, router, http.MethodGet, "/api/products/1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	product := decodeBody[store.Product](t, resp)
	if product.ProductName != "ProBook Laptop 14" {
		t.Errorf("unexpected product: %+v", product)
	}

	// Reads are idempotent: an identical request returns an identical payload.
	again := doJSON(t, router, http.MethodGet, "/api/products/1", nil)
	if again.Body.String() != resp.Body.String() {
		t.Error("repeated GET returned a different payload")
	}

	if resp := doJSON(t, router, http.MethodGet, "/api/products/99", nil); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown product, got %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodGet, "/api/products/abc", nil); resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric product ID, got %d", resp.Code)
	}
}

func TestGetProductsByCategory(t *testing.T) {
	router, _ := setupServer(t)

	resp := doJSON(t, router, http.MethodGet, "/api/products/category/Electronics", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	products := decodeBody[[]store.Product](t, resp)
	if len(products) != 2 {
		t.Errorf("expected 2 electronics, got %d", len(products))
	}

	resp = doJSON(t, router, http.MethodGet, "/api/products/category/Furniture", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty category, got %d", resp.Code)
	}
	if body := strings.TrimSpace(resp.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}

func TestUserEndpoints(t *testing.T) {
	router, _ := setupServer(t)

	resp := doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{
		UserID:   "user-1",
		Username: "alex",
		Email:    "alex@example.com",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	created := decodeBody[store.User](t, resp)
	if created.UserID != "user-1" || !created.IsActive {
		t.Errorf("unexpected created user: %+v", created)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/users/user-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	if resp := doJSON(t, router, http.MethodGet, "/api/users/ghost", nil); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{UserID: "x"}); resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", resp.Code)
	}
}

func TestConversationEndpoints(t *testing.T) {
	router, _ := setupServer(t)

	doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{UserID: "user-1", Username: "alex", Email: "alex@example.com"})

	resp := doJSON(t, router, http.MethodPost, "/api/conversations", CreateConversationRequest{UserID: "user-1"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	conv := decodeBody[store.Conversation](t, resp)
	if conv.ConversationID == "" {
		t.Fatal("expected a minted conversation_id")
	}

	resp = doJSON(t, router, http.MethodGet, "/api/users/user-1/conversations", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	conversations := decodeBody[[]store.Conversation](t, resp)
	if len(conversations) != 1 {
		t.Errorf("expected 1 conversation, got %d", len(conversations))
	}

	if resp := doJSON(t, router, http.MethodGet, "/api/conversations/ghost", nil); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown conversation, got %d", resp.Code)
	}
}

func TestChatRoundTrip(t *testing.T) {
	router, _ := setupServer(t)

	doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{UserID: "user-1", Username: "alex", Email: "alex@example.com"})

	resp := doJSON(t, router, http.MethodPost, "/api/chat", ChatRequest{
		Message: "Do you have any laptops under $1000?",
		UserID:  "user-1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	result := decodeBody[core.ChatResult](t, resp)
	if result.ConversationID == "" || result.MessageID == "" || result.Response == "" {
		t.Fatalf("incomplete chat envelope: %+v", result)
	}
	if !strings.Contains(result.Response, "ProBook Laptop 14") {
		t.Errorf("fallback should name the laptop, got %q", result.Response)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/conversations/"+result.ConversationID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for history, got %d", resp.Code)
	}
	history := decodeBody[ConversationHistoryResponse](t, resp)
	if len(history.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history.Messages))
	}
	if history.Messages[0].Role != "user" || history.Messages[0].Content != "Do you have any laptops under $1000?" {
		t.Errorf("unexpected first message: %+v", history.Messages[0])
	}
	if history.Messages[1].Role != "assistant" || history.Messages[1].Content != result.Response {
		t.Errorf("unexpected second message: %+v", history.Messages[1])
	}
}

func TestChatUnknownConversationWritesNothing(t *testing.T) {
	router, dbStore := setupServer(t)

	doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{UserID: "user-1", Username: "alex", Email: "alex@example.com"})

	resp := doJSON(t, router, http.MethodPost, "/api/chat", ChatRequest{
		Message:        "hello",
		UserID:         "user-1",
		ConversationID: "no-such-conversation",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	messages, err := dbStore.GetMessagesByConversationID("no-such-conversation")
	if err != nil {
		t.Fatalf("GetMessagesByConversationID() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages written, got %d", len(messages))
	}
}

func TestChatValidation(t *testing.T) {
	router, _ := setupServer(t)

	if resp := doJSON(t, router, http.MethodPost, "/api/chat", ChatRequest{UserID: "user-1"}); resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing message, got %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodPost, "/api/chat", ChatRequest{Message: "hi"}); resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing user_id, got %d", resp.Code)
	}
}
