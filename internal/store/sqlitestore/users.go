package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/jobnest/internal/store"
)

// UpsertUser はユーザーを登録する。既存ユーザーは最終アクセス日時のみ更新し、名前とロールは変えない。
func (s *Store) UpsertUser(ctx context.Context, user store.User, now time.Time) (store.UpdateResult, error) {
	stamp := now.UTC().Format(time.RFC3339Nano)

	var result store.UpdateResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE users SET last_seen_at = ? WHERE email = ?", stamp, user.Email)
		if err != nil {
			return fmt.Errorf("ユーザーの更新に失敗: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("更新件数の取得に失敗: %w", err)
		}
		if n > 0 {
			result = acknowledgedUpdate(n, n)
			return nil
		}

		id := store.NewID()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO users (email, id, name, role, first_seen_at, last_seen_at) VALUES (?, ?, ?, ?, ?, ?)",
			user.Email, id, user.Name, user.Role, stamp, stamp); err != nil {
			return fmt.Errorf("ユーザーの作成に失敗: %w", err)
		}
		result = store.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}
		return nil
	})
	return result, err
}

// GetUser はメールアドレスに一致するユーザーを返す。存在しない場合はnilを返す。
func (s *Store) GetUser(ctx context.Context, email string) (*store.User, error) {
	var (
		u                   store.User
		firstSeen, lastSeen string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT email, name, role, first_seen_at, last_seen_at FROM users WHERE email = ?", email).
		Scan(&u.Email, &u.Name, &u.Role, &firstSeen, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if u.Timestamp, err = time.Parse(time.RFC3339Nano, firstSeen); err != nil {
		return nil, fmt.Errorf("初回登録日時の解析に失敗: %w", err)
	}
	if u.TimestampNow, err = time.Parse(time.RFC3339Nano, lastSeen); err != nil {
		return nil, fmt.Errorf("最終アクセス日時の解析に失敗: %w", err)
	}
	return &u, nil
}
