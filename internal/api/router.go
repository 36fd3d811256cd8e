package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(corsMiddleware)

	r.Get("/", apiHandler.RootHandler)
	r.Get("/health", apiHandler.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		// Product routes
		r.Get("/products", apiHandler.ListProductsHandler)
		r.Get("/products/category/{category}", apiHandler.GetProductsByCategoryHandler)
		r.Get("/products/{productID}", apiHandler.GetProductHandler)

		// User routes
		r.Post("/users", apiHandler.CreateUserHandler)
		r.Get("/users/{userID}", apiHandler.GetUserHandler)
		r.Get("/users/{userID}/conversations", apiHandler.ListUserConversationsHandler)

		// Conversation routes
		r.Post("/conversations", apiHandler.CreateConversationHandler)
		r.Get("/conversations/{conversationID}", apiHandler.GetConversationHistoryHandler)

		// Chat route
		r.Post("/chat", apiHandler.ChatHandler)
	})

	return r
}

// corsMiddleware allows the local frontend origins used during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Origin") {
		case "http://localhost:3000", "http://localhost:8000":
			w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
