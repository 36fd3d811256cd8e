package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS products (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        product_id INTEGER UNIQUE NOT NULL,
        product_name TEXT NOT NULL,
        category TEXT NOT NULL,
        price REAL NOT NULL CHECK (price >= 0),
        stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
        description TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT UNIQUE NOT NULL,
        username TEXT UNIQUE NOT NULL,
        email TEXT UNIQUE NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        is_active BOOLEAN DEFAULT TRUE
    );

    CREATE TABLE IF NOT EXISTS conversations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id TEXT UNIQUE NOT NULL,
        user_id TEXT NOT NULL,
        title TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME,
        is_active BOOLEAN DEFAULT TRUE,
        FOREIGN KEY (user_id) REFERENCES users (user_id)
    );

    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        message_id TEXT UNIQUE NOT NULL,
        conversation_id TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (conversation_id) REFERENCES conversations (conversation_id) ON DELETE CASCADE
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Product methods

const productColumns = "id, product_id, product_name, category, price, stock_quantity, description"

func (s *SQLiteStore) ListProducts(skip, limit int) ([]Product, error) {
	rows, err := s.db.Query("SELECT "+productColumns+" FROM products ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *SQLiteStore) GetProductByProductID(productID int64) (*Product, error) {
	var p Product
	err := s.db.QueryRow("SELECT "+productColumns+" FROM products WHERE product_id = ?", productID).
		Scan(&p.ID, &p.ProductID, &p.ProductName, &p.Category, &p.Price, &p.StockQuantity, &p.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) GetProductsByCategory(category string) ([]Product, error) {
	rows, err := s.db.Query("SELECT "+productColumns+" FROM products WHERE category = ? ORDER BY id", category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// SearchProducts returns every product whose name, category or description
// contains term as a case-insensitive substring. The caller is expected to
// pass an already lower-cased term.
func (s *SQLiteStore) SearchProducts(term string) ([]Product, error) {
	query := "SELECT " + productColumns + ` FROM products
        WHERE instr(lower(product_name), ?) > 0
           OR instr(lower(category), ?) > 0
           OR instr(lower(description), ?) > 0
        ORDER BY id`
	rows, err := s.db.Query(query, term, term, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *SQLiteStore) GetAllProducts() ([]Product, error) {
	rows, err := s.db.Query("SELECT " + productColumns + " FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query all products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *SQLiteStore) GetCategories() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ProductID, &p.ProductName, &p.Category, &p.Price, &p.StockQuantity, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// User methods

func (s *SQLiteStore) CreateUser(userID, username, email string) (*User, error) {
	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO users (user_id, username, email, created_at, is_active) VALUES (?, ?, ?, ?, TRUE)",
		userID, username, email, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return &User{ID: id, UserID: userID, Username: username, Email: email, CreatedAt: now, IsActive: true}, nil
}

func (s *SQLiteStore) GetUserByUserID(userID string) (*User, error) {
	var user User
	err := s.db.QueryRow(
		"SELECT id, user_id, username, email, created_at, is_active FROM users WHERE user_id = ?", userID,
	).Scan(&user.ID, &user.UserID, &user.Username, &user.Email, &user.CreatedAt, &user.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// Conversation methods

func (s *SQLiteStore) CreateConversation(conversationID, userID string, title *string) (*Conversation, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO conversations (conversation_id, user_id, title, created_at, is_active) VALUES (?, ?, ?, ?, TRUE)",
		conversationID, userID, title, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Conversation{ID: id, ConversationID: conversationID, UserID: userID, Title: title, CreatedAt: now, IsActive: true}, nil
}

func (s *SQLiteStore) GetConversationByConversationID(conversationID string) (*Conversation, error) {
	var conv Conversation
	var title sql.NullString
	var updatedAt sql.NullTime
	err := s.db.QueryRow(
		"SELECT id, conversation_id, user_id, title, created_at, updated_at, is_active FROM conversations WHERE conversation_id = ?",
		conversationID,
	).Scan(&conv.ID, &conv.ConversationID, &conv.UserID, &title, &conv.CreatedAt, &updatedAt, &conv.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if title.Valid {
		conv.Title = &title.String
	}
	if updatedAt.Valid {
		conv.UpdatedAt = &updatedAt.Time
	}
	return &conv, nil
}

func (s *SQLiteStore) GetConversationsByUserID(userID string) ([]Conversation, error) {
	rows, err := s.db.Query(
		"SELECT id, conversation_id, user_id, title, created_at, updated_at, is_active FROM conversations WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var conv Conversation
		var title sql.NullString
		var updatedAt sql.NullTime
		if err := rows.Scan(&conv.ID, &conv.ConversationID, &conv.UserID, &title, &conv.CreatedAt, &updatedAt, &conv.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		if title.Valid {
			conv.Title = &title.String
		}
		if updatedAt.Valid {
			conv.UpdatedAt = &updatedAt.Time
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// TouchConversation refreshes updated_at after a new message. Concurrent
// chats against the same conversation race here, last write wins.
func (s *SQLiteStore) TouchConversation(conversationID string) error {
	res, err := s.db.Exec("UPDATE conversations SET updated_at = ? WHERE conversation_id = ?", time.Now(), conversationID)
	if err != nil {
		return fmt.Errorf("failed to update conversation timestamp: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("conversation not found, timestamp not updated")
	}
	return nil
}

// Message methods

func (s *SQLiteStore) CreateMessage(msg *Message) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	msg.CreatedAt = time.Now()

	res, err := s.db.Exec(
		"INSERT INTO messages (message_id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.MessageID, msg.ConversationID, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	msg.ID, _ = res.LastInsertId()
	return nil
}

// GetMessagesByConversationID returns the full history in non-decreasing
// creation-time order. The surrogate id breaks ties so a user message and
// the assistant reply written in the same instant keep their insert order.
func (s *SQLiteStore) GetMessagesByConversationID(conversationID string) ([]Message, error) {
	query := "SELECT id, message_id, conversation_id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC"
	rows, err := s.db.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.MessageID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
