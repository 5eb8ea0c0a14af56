// Package sqlitestore はSQLiteを使ったstore.Storeの実装を提供する。
//
// ドキュメントはJSON文字列としてdoc列に保存し、検索に使うキーは
// 生成列として切り出してインデックスを張る。ローカル開発とテストで使用する。
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/jobnest/internal/store"
	"github.com/nao1215/jobnest/pkg/migration"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath はインメモリデータベースを表すパス。
const MemoryPath = ":memory:"

// Store はSQLiteに保存するstore.Storeの実装。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open はpathのSQLiteデータベースを開き、マイグレーションを適用する。
// pathに MemoryPath を指定するとインメモリデータベースになる。
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != MemoryPath {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// 書き込みを直列化する。:memory: は接続ごとに別DBになるため1接続に固定する必要もある。
	db.SetMaxOpenConns(1)

	if err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// querier は *sql.DB と *sql.Tx の共通部分。
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx はfnをトランザクション内で実行する。
// 接続数が1のため、fnの中ではtx以外を使ってはならない。
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return nil
}

// jsonSetExpr は column に fields を json_set で書き込むSQL式とその引数を返す。
func jsonSetExpr(column string, fields []store.FieldValue) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(fields))

	b.WriteString("json_set(")
	b.WriteString(column)
	for _, f := range fields {
		// キーは固定の識別子のみなので埋め込んでよい
		fmt.Fprintf(&b, ", '$.%s', ?", f.Key)
		args = append(args, f.Value)
	}
	b.WriteString(")")
	return b.String(), args
}

// isUniqueViolation はエラーがUNIQUE制約違反かを判定する。
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

func acknowledgedUpdate(matched, modified int64) store.UpdateResult {
	return store.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  matched,
		ModifiedCount: modified,
	}
}
