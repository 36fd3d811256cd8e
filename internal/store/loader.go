package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// csvHeader is the required column order of a product CSV export.
var csvHeader = []string{"product_id", "product_name", "category", "price", "stock_quantity", "description"}

// ReplaceProductsFromCSV replaces the entire products table with the rows of
// the given CSV file. The delete and every insert run in one transaction: a
// malformed row aborts the load and leaves the table in its pre-load state.
func (s *SQLiteStore) ReplaceProductsFromCSV(filePath string) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open product CSV %s: %w", filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer tx.Rollback() // No-op after a successful commit

	if _, err := tx.Exec("DELETE FROM products"); err != nil {
		return 0, fmt.Errorf("failed to clear products: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO products (product_id, product_name, category, price, stock_quantity, description) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read CSV row %d: %w", count+2, err)
		}

		p, err := parseProductRecord(record)
		if err != nil {
			return 0, fmt.Errorf("invalid CSV row %d: %w", count+2, err)
		}

		if _, err := stmt.Exec(p.ProductID, p.ProductName, p.Category, p.Price, p.StockQuantity, p.Description); err != nil {
			return 0, fmt.Errorf("failed to insert product %d: %w", p.ProductID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit product load: %w", err)
	}

	log.Printf("Loaded %d products from %s", count, filePath)
	return count, nil
}

func validateHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("unexpected CSV header: got %d columns, want %d", len(header), len(csvHeader))
	}
	for i, col := range csvHeader {
		if strings.TrimSpace(header[i]) != col {
			return fmt.Errorf("unexpected CSV column %d: got %q, want %q", i+1, header[i], col)
		}
	}
	return nil
}

func parseProductRecord(record []string) (*Product, error) {
	if len(record) != len(csvHeader) {
		return nil, fmt.Errorf("got %d columns, want %d", len(record), len(csvHeader))
	}

	productID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad product_id %q: %w", record[0], err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", record[3], err)
	}
	if price < 0 {
		return nil, fmt.Errorf("negative price %q", record[3])
	}
	stock, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, fmt.Errorf("bad stock_quantity %q: %w", record[4], err)
	}
	if stock < 0 {
		return nil, fmt.Errorf("negative stock_quantity %q", record[4])
	}

	return &Product{
		ProductID:     productID,
		ProductName:   record[1],
		Category:      record[2],
		Price:         price,
		StockQuantity: stock,
		Description:   record[5],
	}, nil
}
