package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
	"github.com/mmynk/splitty/internal/storage"
)

// CreateFriend persists a new friend.
func (s *Store) CreateFriend(ctx context.Context, ownerID string, f *models.Friend) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO friends (id, owner_id, name, balance, linked_user_id) VALUES (?, ?, ?, ?, ?)`),
		f.ID, ownerID, f.Name, f.Balance, f.LinkedUserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friend: %w", err)
	}

	return nil
}

// ListFriends retrieves the owner's friends ordered by name.
func (s *Store) ListFriends(ctx context.Context, ownerID string) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		"SELECT id, name, balance, linked_user_id FROM friends WHERE owner_id = ? ORDER BY name, id"),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.Name, &f.Balance, &f.LinkedUserID); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}

	return friends, nil
}

// adjustBalances adds each delta to the friend's cached balance inside tx
// and returns the new balances. Friends are updated in ID order so
// concurrent transactions lock rows in the same order.
//
// PostgreSQL increments the NUMERIC column in place. SQLite stores balances
// as text, where + would fall back to floating point, so the sum is taken
// in decimal; the single connection serializes that read and write.
func (s *Store) adjustBalances(ctx context.Context, tx *sql.Tx, ownerID string, deltas map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(deltas))
	for id, d := range deltas {
		if !d.IsZero() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	balances := make(map[string]decimal.Decimal, len(ids))
	for _, friendID := range ids {
		var balance decimal.Decimal
		var err error
		if s.driver == DriverPostgres {
			err = tx.QueryRowContext(ctx, s.rebind(
				"UPDATE friends SET balance = balance + ? WHERE owner_id = ? AND id = ? RETURNING balance"),
				deltas[friendID], ownerID, friendID,
			).Scan(&balance)
		} else {
			err = tx.QueryRowContext(ctx,
				"SELECT balance FROM friends WHERE owner_id = ? AND id = ?",
				ownerID, friendID,
			).Scan(&balance)
			if err == nil {
				balance = balance.Add(deltas[friendID])
				_, err = tx.ExecContext(ctx,
					"UPDATE friends SET balance = ? WHERE owner_id = ? AND id = ?",
					balance, ownerID, friendID,
				)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Kind: "friend", ID: friendID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update balance of %s: %w", friendID, err)
		}
		balances[friendID] = balance
	}

	return balances, nil
}

// CorrectFriendBalances writes corrected balances in one transaction,
// skipping friends whose balance changed since it was read.
func (s *Store) CorrectFriendBalances(ctx context.Context, ownerID string, corrections []storage.BalanceCorrection) (map[string]decimal.Decimal, error) {
	written := make(map[string]decimal.Decimal, len(corrections))
	if len(corrections) == 0 {
		return written, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lock := ""
	if s.driver == DriverPostgres {
		lock = " FOR UPDATE"
	}

	for _, c := range corrections {
		var current decimal.Decimal
		err := tx.QueryRowContext(ctx, s.rebind(
			"SELECT balance FROM friends WHERE owner_id = ? AND id = ?"+lock),
			ownerID, c.FriendID,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read balance of %s: %w", c.FriendID, err)
		}
		if !current.Equal(c.Expected) {
			continue
		}

		if _, err := tx.ExecContext(ctx, s.rebind(
			"UPDATE friends SET balance = ? WHERE owner_id = ? AND id = ?"),
			c.Balance, ownerID, c.FriendID,
		); err != nil {
			return nil, fmt.Errorf("failed to update balance of %s: %w", c.FriendID, err)
		}
		written[c.FriendID] = c.Balance
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return written, nil
}

// ListOwners returns every owner with at least one friend.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT owner_id FROM friends ORDER BY owner_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}

	return owners, nil
}

// CreateGroup persists a new group with its members.
func (s *Store) CreateGroup(ctx context.Context, ownerID string, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		"INSERT INTO groups (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)"),
		g.ID, ownerID, g.Name, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	seen := make(map[string]bool, len(g.Members))
	for _, member := range g.Members {
		if member == "" || seen[member] {
			continue
		}
		seen[member] = true
		_, err = tx.ExecContext(ctx, s.rebind(
			"INSERT INTO group_members (group_id, member_id) VALUES (?, ?)"),
			g.ID, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListGroups retrieves the owner's groups with their members.
func (s *Store) ListGroups(ctx context.Context, ownerID string) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT g.id, g.name, g.created_at, COALESCE(m.member_id, '')
		 FROM groups g
		 LEFT JOIN group_members m ON m.group_id = g.id
		 WHERE g.owner_id = ?
		 ORDER BY g.created_at, g.id, m.member_id`),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var (
			g      models.Group
			member string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &member); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}

		if n := len(groups); n == 0 || groups[n-1].ID != g.ID {
			groups = append(groups, g)
		}
		if member != "" {
			last := &groups[len(groups)-1]
			last.Members = append(last.Members, member)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}
