package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

const expenseColumns = `id, description, amount, occurred_at, category_id, payer_id,
	split_type, split_with, split_details, is_settlement, tags, group_id, created_at`

// CreateExpense persists a new expense and applies its balance deltas in
// one transaction.
func (s *Store) CreateExpense(ctx context.Context, ownerID string, e *models.Expense, deltas map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	// Generate ID if not set
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	if e.Category == "" {
		e.Category = models.GeneralCategoryID
	}

	with, details, err := encodeSplit(e.Split)
	if err != nil {
		return nil, err
	}
	tags, err := encodeStrings(e.Tags)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO expenses (owner_id, `+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		ownerID, e.ID, e.Description, e.Amount, e.Date.Unix(), e.Category, e.PayerID,
		string(e.SplitKind()), with, details, e.IsSettlement, tags, e.GroupID, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	balances, err := s.adjustBalances(ctx, tx, ownerID, deltas)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balances, nil
}

// GetExpense retrieves an expense by ID.
func (s *Store) GetExpense(ctx context.Context, ownerID, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+expenseColumns+` FROM expenses WHERE owner_id = ? AND id = ?`),
		ownerID, expenseID,
	)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Kind: "expense", ID: expenseID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// DeleteExpense removes an expense by ID and applies deltas in one
// transaction.
func (s *Store) DeleteExpense(ctx context.Context, ownerID, expenseID string, deltas map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(
		"DELETE FROM expenses WHERE owner_id = ? AND id = ?"),
		ownerID, expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return nil, &models.NotFoundError{Kind: "expense", ID: expenseID}
	}

	balances, err := s.adjustBalances(ctx, tx, ownerID, deltas)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balances, nil
}

// ListExpenses retrieves the owner's expenses, oldest first.
func (s *Store) ListExpenses(ctx context.Context, ownerID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+expenseColumns+` FROM expenses WHERE owner_id = ? ORDER BY occurred_at, created_at, id`),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	var (
		e          models.Expense
		occurredAt int64
		splitType  string
		with       string
		details    string
		tags       string
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &occurredAt, &e.Category, &e.PayerID,
		&splitType, &with, &details, &e.IsSettlement, &tags, &e.GroupID, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Date = time.Unix(occurredAt, 0)

	split, err := decodeSplit(models.SplitKind(splitType), with, details)
	if err != nil {
		return nil, err
	}
	e.Split = split

	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	return &e, nil
}

func encodeSplit(split models.Split) (with, details string, err error) {
	var participants []string
	var shares map[string]decimal.Decimal
	switch s := split.(type) {
	case models.EqualSplit:
		participants = s.With
	case models.UnequalSplit:
		participants = s.With
		shares = s.Details
	}

	with, err = encodeStrings(participants)
	if err != nil {
		return "", "", err
	}
	if shares == nil {
		shares = map[string]decimal.Decimal{}
	}
	b, err := json.Marshal(shares)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode split details: %w", err)
	}
	return with, string(b), nil
}

func decodeSplit(kind models.SplitKind, with, details string) (models.Split, error) {
	var participants []string
	if err := json.Unmarshal([]byte(with), &participants); err != nil {
		return nil, fmt.Errorf("failed to decode split participants: %w", err)
	}

	if kind != models.SplitUnequal {
		return models.EqualSplit{With: participants}, nil
	}

	var shares map[string]decimal.Decimal
	if err := json.Unmarshal([]byte(details), &shares); err != nil {
		return nil, fmt.Errorf("failed to decode split details: %w", err)
	}
	return models.UnequalSplit{With: participants, Details: shares}, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}
