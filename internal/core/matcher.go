package core

import (
	"fmt"
	"strings"

	"shopwise.io/support-chat/internal/store"
)

// minTokenLen filters out short noise words ("a", "an", "to") before they hit
// the database.
const minTokenLen = 3

type ProductMatcher struct {
	dbStore *store.SQLiteStore
}

func NewProductMatcher(db *store.SQLiteStore) *ProductMatcher {
	return &ProductMatcher{dbStore: db}
}

// Search tokenizes a free-text query and returns every catalog product whose
// name, category or description contains one of the tokens. Results keep
// token order, first match wins, no duplicates. A query with no usable token
// yields an empty result, not the full catalog.
func (m *ProductMatcher) Search(query string) ([]store.Product, error) {
	tokens := strings.Fields(strings.ToLower(query))

	seen := make(map[int64]bool)
	var matched []store.Product
	for _, token := range tokens {
		if len(token) < minTokenLen {
			continue
		}
		products, err := m.dbStore.SearchProducts(token)
		if err != nil {
			return nil, fmt.Errorf("product search for %q failed: %w", token, err)
		}
		for _, p := range products {
			// Deduplicate on the stable external ID, preserving the
			// position of the first matching token.
			if seen[p.ProductID] {
				continue
			}
			seen[p.ProductID] = true
			matched = append(matched, p)
		}
	}
	return matched, nil
}
