package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nao1215/jobnest/internal/store"
)

// CreateApplication は応募を保存する。
// 同じ求人・応募者の応募が既にある場合は store.ErrDuplicateApplication を返す。
func (s *Store) CreateApplication(ctx context.Context, app store.AppliedJob) (store.InsertResult, error) {
	id := store.NewID()
	app.ID = ""

	doc, err := json.Marshal(app)
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("応募のシリアライズに失敗: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO applied_jobs (id, doc) VALUES (?, ?)", id, string(doc)); err != nil {
		if isUniqueViolation(err) {
			return store.InsertResult{}, store.ErrDuplicateApplication
		}
		return store.InsertResult{}, fmt.Errorf("応募の保存に失敗: %w", err)
	}
	return store.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// FindApplication は求人IDと応募者メールアドレスに一致する応募を返す。存在しない場合はnilを返す。
func (s *Store) FindApplication(ctx context.Context, jobID, applicantEmail string) (*store.AppliedJob, error) {
	var id, doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, doc FROM applied_jobs WHERE job_id = ? AND applicant_email = ? LIMIT 1",
		jobID, applicantEmail).Scan(&id, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗: %w", err)
	}

	app, err := decodeApplication(id, doc)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplicationsForUser は応募者の応募を挿入順で返す。
func (s *Store) ListApplicationsForUser(ctx context.Context, applicantEmail string) ([]store.AppliedJob, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, doc FROM applied_jobs WHERE applicant_email = ? ORDER BY rowid", applicantEmail)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	apps := make([]store.AppliedJob, 0)
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("応募の読み取りに失敗: %w", err)
		}
		app, err := decodeApplication(id, doc)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗: %w", err)
	}
	return apps, nil
}

// DeleteApplicationsForJob は求人IDを参照する応募をすべて削除する。
func (s *Store) DeleteApplicationsForJob(ctx context.Context, jobID string) (store.DeleteResult, error) {
	return deleteApplications(ctx, s.db, jobID)
}

// UpdateApplicationsForJob は求人IDを参照する応募の複製フィールドを更新する。
func (s *Store) UpdateApplicationsForJob(ctx context.Context, jobID string, update store.JobUpdate) (store.UpdateResult, error) {
	var result store.UpdateResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = updateApplications(ctx, tx, jobID, update)
		return err
	})
	return result, err
}

func deleteApplications(ctx context.Context, q querier, jobID string) (store.DeleteResult, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM applied_jobs WHERE job_id = ?", jobID)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("応募の削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func updateApplications(ctx context.Context, q querier, jobID string, update store.JobUpdate) (store.UpdateResult, error) {
	var matched int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM applied_jobs WHERE job_id = ?", jobID).Scan(&matched); err != nil {
		return store.UpdateResult{}, fmt.Errorf("応募件数の取得に失敗: %w", err)
	}
	if matched == 0 {
		return acknowledgedUpdate(0, 0), nil
	}

	expr, args := jsonSetExpr("doc", update.Fields())
	query := "UPDATE applied_jobs SET doc = " + expr + " WHERE job_id = ? AND doc <> " + expr
	params := append(append(append([]any{}, args...), jobID), args...)
	res, err := q.ExecContext(ctx, query, params...)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("応募の更新に失敗: %w", err)
	}
	modified, err := res.RowsAffected()
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	return acknowledgedUpdate(matched, modified), nil
}

func decodeApplication(id, doc string) (store.AppliedJob, error) {
	var app store.AppliedJob
	if err := json.Unmarshal([]byte(doc), &app); err != nil {
		return store.AppliedJob{}, fmt.Errorf("応募 %s のデシリアライズに失敗: %w", id, err)
	}
	app.ID = id
	return app, nil
}
