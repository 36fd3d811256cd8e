package core

import (
	"os"
	"path/filepath"
	"testing"

	"shopwise.io/support-chat/internal/store"
)

// newTestStore opens a throwaway database seeded through the CSV loader.
func newTestStore(t *testing.T, catalogRows string) *store.SQLiteStore {
	t.Helper()

	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if catalogRows != "" {
		csvPath := filepath.Join(dir, "products.csv")
		content := "product_id,product_name,category,price,stock_quantity,description\n" + catalogRows
		if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write catalog CSV: %v", err)
		}
		if _, err := s.ReplaceProductsFromCSV(csvPath); err != nil {
			t.Fatalf("failed to load catalog: %v", err)
		}
	}
	return s
}

const testCatalogRows = "1,ProBook Laptop 14,Electronics,799.99,5,A lightweight laptop for work and travel\n" +
	"2,SoundMax Headphones,Audio,129.99,25,Wireless over-ear headphones with noise cancelling\n" +
	"3,Galaxy Smartphone X,Electronics,999.00,12,Flagship smartphone with a large display\n" +
	"4,AeroBook Laptop Pro,Electronics,1499.00,3,Premium laptop with wireless charging\n"

func TestSearchEmptyAndShortTokenQueries(t *testing.T) {
	matcher := NewProductMatcher(newTestStore(t, testCatalogRows))

	for _, query := range []string{"", "   ", "a an to", "hi ok no"} {
		products, err := matcher.Search(query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", query, err)
		}
		if len(products) != 0 {
			t.Errorf("Search(%q) = %d products, want none", query, len(products))
		}
	}
}

func TestSearchMatchesNameCategoryDescription(t *testing.T) {
	matcher := NewProductMatcher(newTestStore(t, testCatalogRows))

	cases := []struct {
		query string
		want  int64
	}{
		{"probook", 1},          // name
		{"audio gear", 2},       // category
		{"flagship device", 3},  // description
		{"SMARTPHONE", 3},       // case folding
	}
	for _, tc := range cases {
		products, err := matcher.Search(tc.query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tc.query, err)
		}
		if len(products) == 0 {
			t.Fatalf("Search(%q) found nothing", tc.query)
		}
		if products[0].ProductID != tc.want {
			t.Errorf("Search(%q) first match = %d, want %d", tc.query, products[0].ProductID, tc.want)
		}
	}
}

func TestSearchDeduplicatesPreservingFirstSeenOrder(t *testing.T) {
	matcher := NewProductMatcher(newTestStore(t, testCatalogRows))

	// "wireless" matches products 2 and 4 (descriptions), "laptop" matches
	// 1 and 4 (names). Product 4 must appear once, at its first position.
	products, err := matcher.Search("wireless laptop")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	var got []int64
	for _, p := range products {
		got = append(got, p.ProductID)
	}
	want := []int64{2, 4, 1}
	if len(got) != len(want) {
		t.Fatalf("Search() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Search() = %v, want %v", got, want)
		}
	}
}

func TestSearchNoDuplicateIdentities(t *testing.T) {
	matcher := NewProductMatcher(newTestStore(t, testCatalogRows))

	products, err := matcher.Search("laptop laptop premium aerobook")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	seen := make(map[int64]bool)
	for _, p := range products {
		if seen[p.ProductID] {
			t.Fatalf("product %d returned twice", p.ProductID)
		}
		seen[p.ProductID] = true
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	matcher := NewProductMatcher(newTestStore(t, ""))

	products, err := matcher.Search("laptop")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected no matches on empty catalog, got %d", len(products))
	}
}
