package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shopwise.io/support-chat/internal/store"
)

const assistantSystemPrompt = "You are a helpful e-commerce AI assistant. You have access to the following product information:\n\n%s\n\n" +
	"Please help customers find products, answer questions about inventory, pricing, and features. " +
	"Be friendly, informative, and helpful. If you don't have information about a specific product, " +
	"let the customer know and suggest alternatives if available."

const onboardingReply = "I'm here to help you find the perfect product! Could you tell me more about what you're looking for? " +
	"I can help with laptops, smartphones, headphones, and other electronics."

// Responder turns a user message into assistant text. It prefers the injected
// Completer and degrades to rule-based answers on any upstream fault, so it
// never fails: Respond always returns a non-empty string.
type Responder struct {
	dbStore   *store.SQLiteStore
	matcher   *ProductMatcher
	completer Completer // Nil when no API credential is configured
}

func NewResponder(db *store.SQLiteStore, matcher *ProductMatcher, completer Completer) *Responder {
	return &Responder{
		dbStore:   db,
		matcher:   matcher,
		completer: completer,
	}
}

func (r *Responder) Respond(ctx context.Context, userMessage string) string {
	if r.completer == nil {
		return r.fallbackResponse(userMessage)
	}

	products, err := r.matcher.Search(userMessage)
	if err != nil {
		log.Printf("Product search for prompt context failed: %v", err)
	}

	systemPrompt := fmt.Sprintf(assistantSystemPrompt, productsInfo(products))
	userPrompt := fmt.Sprintf("Customer message: %s", userMessage)

	reply, err := r.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("LLM completion failed, using rule-based fallback: %v", err)
		return r.fallbackResponse(userMessage)
	}
	return reply
}

// productsInfo serializes matched products into the prompt context.
func productsInfo(products []store.Product) string {
	if len(products) == 0 {
		return "No products found in the database."
	}

	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- %s ($%.2f): %s. Stock: %d", p.ProductName, p.Price, p.Description, p.StockQuantity))
	}
	return strings.Join(lines, "\n")
}

// fallbackResponse answers without the LLM, keyed on the first matching
// keyword group in priority order.
func (r *Responder) fallbackResponse(userMessage string) string {
	lower := strings.ToLower(userMessage)

	products, err := r.matcher.Search(userMessage)
	if err != nil {
		log.Printf("Product search in fallback failed, continuing without matches: %v", err)
		products = nil
	}

	// "headphone" contains "phone", so the headphone group must be
	// checked before the phone group.
	switch {
	case containsAny(lower, "laptop", "computer"):
		return r.namedProductReply(products, "laptop", "laptops")
	case containsAny(lower, "headphone", "earphone"):
		return r.namedProductReply(products, "headphone", "headphones")
	case containsAny(lower, "phone", "smartphone"):
		return r.namedProductReply(products, "phone", "phones")
	case containsAny(lower, "price", "cost"):
		if len(products) > 0 {
			p := products[0]
			return fmt.Sprintf("The %s is priced at $%.2f. %s", p.ProductName, p.Price, p.Description)
		}
		return "I can help you with pricing! Could you tell me which product you're interested in?"
	case containsAny(lower, "stock", "available"):
		if len(products) > 0 {
			p := products[0]
			return fmt.Sprintf("The %s is currently in stock with %d available.", p.ProductName, p.StockQuantity)
		}
		return "I can check stock for you! Which product are you looking for?"
	case containsAny(lower, "category", "type"):
		categories, err := r.dbStore.GetCategories()
		if err != nil {
			log.Printf("Failed to list categories for fallback: %v", err)
		}
		if len(categories) > 0 {
			return fmt.Sprintf("We carry products across these categories: %s. Which one would you like to explore?", strings.Join(categories, ", "))
		}
		return onboardingReply
	case containsAny(lower, "help", "what"):
		return onboardingReply
	default:
		if len(products) > 0 {
			p := products[0]
			return fmt.Sprintf("I found a great product for you! The %s is priced at $%.2f and is currently in stock (%d available). %s",
				p.ProductName, p.Price, p.StockQuantity, p.Description)
		}
		return onboardingReply
	}
}

// namedProductReply finds a product whose name contains keyword, preferring
// the matched set and falling back to a full catalog scan, and describes it.
func (r *Responder) namedProductReply(matched []store.Product, keyword, plural string) string {
	product := findByNameKeyword(matched, keyword)
	if product == nil {
		all, err := r.dbStore.GetAllProducts()
		if err != nil {
			log.Printf("Failed to scan catalog for %q: %v", keyword, err)
		}
		product = findByNameKeyword(all, keyword)
	}

	if product == nil {
		return fmt.Sprintf("I don't see any %s in our current inventory. Would you like me to show you other electronics we have available?", plural)
	}
	return fmt.Sprintf("I found a great %s for you! The %s is priced at $%.2f and is currently in stock (%d available). %s",
		keyword, product.ProductName, product.Price, product.StockQuantity, product.Description)
}

func findByNameKeyword(products []store.Product, keyword string) *store.Product {
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.ProductName), keyword) {
			return &p
		}
	}
	return nil
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
