package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidID はIDがドキュメントIDとして解釈できないことを表す。
	ErrInvalidID = errors.New("IDの形式が不正です")
	// ErrNotFound は対象のドキュメントが存在しないことを表す。
	ErrNotFound = errors.New("ドキュメントが見つかりません")
	// ErrDuplicateApplication は同じ求人・応募者の組み合わせの応募が既に存在することを表す。
	ErrDuplicateApplication = errors.New("この求人には既に応募済みです")
)

// Store は求人ボードが必要とする永続化操作の集合。
// 取得系メソッドは対象が存在しない場合 nil とエラーなしを返す。
type Store interface {
	// ListJobs はフィルタに一致する求人を挿入順で返す。一致しない場合は空スライスを返す。
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	// GetJob は指定IDの求人を返す。
	GetJob(ctx context.Context, id string) (*Job, error)
	// CreateJob は求人を新規に保存する。
	CreateJob(ctx context.Context, job Job) (InsertResult, error)
	// UpdateJob は求人の編集可能フィールドを上書きする。
	// upsertがtrueで対象が存在しない場合は、指定IDで新規作成する。
	UpdateJob(ctx context.Context, id string, update JobUpdate, upsert bool) (UpdateResult, error)
	// UpdateJobCascade はUpdateJobとUpdateApplicationsForJobを1トランザクションで実行する。
	UpdateJobCascade(ctx context.Context, id string, update JobUpdate, upsert bool) (UpdateResult, error)
	// IncrementApplicants は応募者数をアトミックに1増やす。
	IncrementApplicants(ctx context.Context, id string) (UpdateResult, error)
	// DeleteJob は求人を1件だけ削除する。応募レコードには触れない。
	DeleteJob(ctx context.Context, id string) (DeleteResult, error)
	// DeleteJobCascade は求人とその応募レコードを1トランザクションで削除する。
	DeleteJobCascade(ctx context.Context, id string) (DeleteResult, error)

	// CreateApplication は応募を保存する。同じ組み合わせが既にあれば ErrDuplicateApplication を返す。
	CreateApplication(ctx context.Context, app AppliedJob) (InsertResult, error)
	// FindApplication は求人IDと応募者メールアドレスに一致する応募を返す。
	FindApplication(ctx context.Context, jobID, applicantEmail string) (*AppliedJob, error)
	// ListApplicationsForUser は応募者メールアドレスに一致する応募を返す。
	ListApplicationsForUser(ctx context.Context, applicantEmail string) ([]AppliedJob, error)
	// DeleteApplicationsForJob は求人IDを参照する応募をすべて削除する。
	DeleteApplicationsForJob(ctx context.Context, jobID string) (DeleteResult, error)
	// UpdateApplicationsForJob は応募に複製された求人情報を一括で更新する。
	UpdateApplicationsForJob(ctx context.Context, jobID string, update JobUpdate) (UpdateResult, error)

	// UpsertUser はユーザーを登録する。既存ユーザーは最終アクセス日時のみ更新する。
	UpsertUser(ctx context.Context, user User, now time.Time) (UpdateResult, error)
	// GetUser はメールアドレスに一致するユーザーを返す。
	GetUser(ctx context.Context, email string) (*User, error)

	// Close はデータベース接続を閉じる。
	Close(ctx context.Context) error
}

// InsertResult は挿入操作の結果。
type InsertResult struct {
	// Acknowledged は書き込みが確認されたかどうか。
	Acknowledged bool `json:"acknowledged"`
	// InsertedID は新規ドキュメントのID。
	InsertedID string `json:"insertedId"`
}

// UpdateResult は更新操作の結果。
type UpdateResult struct {
	// Acknowledged は書き込みが確認されたかどうか。
	Acknowledged bool `json:"acknowledged"`
	// MatchedCount は条件に一致したドキュメント数。
	MatchedCount int64 `json:"matchedCount"`
	// ModifiedCount は実際に更新されたドキュメント数。
	ModifiedCount int64 `json:"modifiedCount"`
	// UpsertedCount はupsertで新規作成されたドキュメント数。
	UpsertedCount int64 `json:"upsertedCount"`
	// UpsertedID はupsertで新規作成されたドキュメントのID。作成されなかった場合はnull。
	UpsertedID *string `json:"upsertedId"`
}

// DeleteResult は削除操作の結果。
type DeleteResult struct {
	// Acknowledged は書き込みが確認されたかどうか。
	Acknowledged bool `json:"acknowledged"`
	// DeletedCount は削除されたドキュメント数。
	DeletedCount int64 `json:"deletedCount"`
}
