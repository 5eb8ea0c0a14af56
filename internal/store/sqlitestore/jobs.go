package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nao1215/jobnest/internal/store"
)

// ListJobs はフィルタに一致する求人を挿入順で返す。
func (s *Store) ListJobs(ctx context.Context, filter store.JobFilter) ([]store.Job, error) {
	query := "SELECT id, doc FROM jobs"
	var args []any
	switch filter.Kind {
	case store.JobFilterCategory:
		query += " WHERE job_category = ?"
		args = append(args, filter.Value)
	case store.JobFilterSearch:
		// instrは引数をそのまま部分文字列として扱うため、LIKEのようなエスケープは不要
		query += " WHERE instr(lower(job_title), lower(?)) > 0"
		args = append(args, filter.Value)
	case store.JobFilterAuthorEmail:
		query += " WHERE author_email = ?"
		args = append(args, filter.Value)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]store.Job, 0)
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("求人の読み取りに失敗: %w", err)
		}
		job, err := decodeJob(id, doc)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗: %w", err)
	}
	return jobs, nil
}

// GetJob は指定IDの求人を返す。存在しない場合はnilを返す。
func (s *Store) GetJob(ctx context.Context, id string) (*store.Job, error) {
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM jobs WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求人の取得に失敗: %w", err)
	}

	job, err := decodeJob(id, doc)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob は求人を新しいIDで保存する。
func (s *Store) CreateJob(ctx context.Context, job store.Job) (store.InsertResult, error) {
	id := store.NewID()
	job.ID = ""

	doc, err := json.Marshal(job)
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("求人のシリアライズに失敗: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO jobs (id, doc) VALUES (?, ?)", id, string(doc)); err != nil {
		return store.InsertResult{}, fmt.Errorf("求人の保存に失敗: %w", err)
	}
	return store.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// UpdateJob は求人の編集可能フィールドを上書きする。
func (s *Store) UpdateJob(ctx context.Context, id string, update store.JobUpdate, upsert bool) (store.UpdateResult, error) {
	if err := store.ValidateID(id); err != nil {
		return store.UpdateResult{}, err
	}

	var result store.UpdateResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = updateJob(ctx, tx, id, update, upsert)
		return err
	})
	return result, err
}

// UpdateJobCascade は求人と、その求人を参照する応募の複製フィールドを同時に更新する。
func (s *Store) UpdateJobCascade(ctx context.Context, id string, update store.JobUpdate, upsert bool) (store.UpdateResult, error) {
	if err := store.ValidateID(id); err != nil {
		return store.UpdateResult{}, err
	}

	var result store.UpdateResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if result, err = updateJob(ctx, tx, id, update, upsert); err != nil {
			return err
		}
		_, err = updateApplications(ctx, tx, id, update)
		return err
	})
	return result, err
}

// updateJob は既存の求人を更新し、存在しなければupsertに応じて作成する。
func updateJob(ctx context.Context, q querier, id string, update store.JobUpdate, upsert bool) (store.UpdateResult, error) {
	var exists bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM jobs WHERE id = ?)", id).Scan(&exists); err != nil {
		return store.UpdateResult{}, fmt.Errorf("求人の存在確認に失敗: %w", err)
	}

	if exists {
		expr, args := jsonSetExpr("doc", update.Fields())
		// 値が変わらない行は更新件数に含めない
		query := "UPDATE jobs SET doc = " + expr + " WHERE id = ? AND doc <> " + expr
		params := append(append(append([]any{}, args...), id), args...)
		res, err := q.ExecContext(ctx, query, params...)
		if err != nil {
			return store.UpdateResult{}, fmt.Errorf("求人の更新に失敗: %w", err)
		}
		modified, err := res.RowsAffected()
		if err != nil {
			return store.UpdateResult{}, fmt.Errorf("更新件数の取得に失敗: %w", err)
		}
		return acknowledgedUpdate(1, modified), nil
	}

	if !upsert {
		return acknowledgedUpdate(0, 0), nil
	}

	doc, err := json.Marshal(update)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("求人のシリアライズに失敗: %w", err)
	}
	if _, err := q.ExecContext(ctx, "INSERT INTO jobs (id, doc) VALUES (?, ?)", id, string(doc)); err != nil {
		return store.UpdateResult{}, fmt.Errorf("求人の作成に失敗: %w", err)
	}
	return store.UpdateResult{
		Acknowledged:  true,
		UpsertedCount: 1,
		UpsertedID:    &id,
	}, nil
}

// IncrementApplicants は応募者数を1つの UPDATE 文で1増やす。
func (s *Store) IncrementApplicants(ctx context.Context, id string) (store.UpdateResult, error) {
	if err := store.ValidateID(id); err != nil {
		return store.UpdateResult{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET doc = json_set(doc, '$.applicants', COALESCE(json_extract(doc, '$.applicants'), 0) + 1) WHERE id = ?`,
		id)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("応募者数の更新に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	return acknowledgedUpdate(n, n), nil
}

// DeleteJob は求人を1件削除する。応募レコードは残る。
func (s *Store) DeleteJob(ctx context.Context, id string) (store.DeleteResult, error) {
	if err := store.ValidateID(id); err != nil {
		return store.DeleteResult{}, err
	}
	return deleteJob(ctx, s.db, id)
}

// DeleteJobCascade は求人とその応募を同一トランザクションで削除する。
func (s *Store) DeleteJobCascade(ctx context.Context, id string) (store.DeleteResult, error) {
	if err := store.ValidateID(id); err != nil {
		return store.DeleteResult{}, err
	}

	var result store.DeleteResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if result, err = deleteJob(ctx, tx, id); err != nil {
			return err
		}
		_, err = deleteApplications(ctx, tx, id)
		return err
	})
	return result, err
}

func deleteJob(ctx context.Context, q querier, id string) (store.DeleteResult, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("求人の削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func decodeJob(id, doc string) (store.Job, error) {
	var job store.Job
	if err := json.Unmarshal([]byte(doc), &job); err != nil {
		return store.Job{}, fmt.Errorf("求人 %s のデシリアライズに失敗: %w", id, err)
	}
	job.ID = id
	return job, nil
}
