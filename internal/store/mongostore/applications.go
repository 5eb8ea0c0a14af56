package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/jobnest/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateApplication は応募を保存する。
// 一意インデックスに違反した場合は store.ErrDuplicateApplication を返す。
func (s *Store) CreateApplication(ctx context.Context, app store.AppliedJob) (store.InsertResult, error) {
	app.ID = ""
	res, err := s.applications.InsertOne(ctx, bson.M(app.Document()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.InsertResult{}, store.ErrDuplicateApplication
		}
		return store.InsertResult{}, fmt.Errorf("応募の保存に失敗: %w", err)
	}
	return store.InsertResult{Acknowledged: true, InsertedID: insertedID(res.InsertedID)}, nil
}

// FindApplication は求人IDと応募者メールアドレスに一致する応募を返す。存在しない場合はnilを返す。
func (s *Store) FindApplication(ctx context.Context, jobID, applicantEmail string) (*store.AppliedJob, error) {
	var doc bson.M
	err := s.applications.FindOne(ctx, bson.M{"jobID": jobID, "applicantEmail": applicantEmail}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("応募の取得に失敗: %w", err)
	}
	app := applicationFromDocument(doc)
	return &app, nil
}

// ListApplicationsForUser は応募者の応募を自然順で返す。
func (s *Store) ListApplicationsForUser(ctx context.Context, applicantEmail string) ([]store.AppliedJob, error) {
	cursor, err := s.applications.Find(ctx, bson.M{"applicantEmail": applicantEmail})
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗: %w", err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("応募一覧の読み取りに失敗: %w", err)
	}

	apps := make([]store.AppliedJob, 0, len(docs))
	for _, d := range docs {
		apps = append(apps, applicationFromDocument(d))
	}
	return apps, nil
}

// DeleteApplicationsForJob は求人IDを参照する応募をすべて削除する。
func (s *Store) DeleteApplicationsForJob(ctx context.Context, jobID string) (store.DeleteResult, error) {
	return s.deleteApplications(ctx, jobID)
}

// UpdateApplicationsForJob は求人IDを参照する応募の複製フィールドを更新する。
func (s *Store) UpdateApplicationsForJob(ctx context.Context, jobID string, update store.JobUpdate) (store.UpdateResult, error) {
	return s.updateApplications(ctx, jobID, update)
}

func (s *Store) deleteApplications(ctx context.Context, jobID string) (store.DeleteResult, error) {
	res, err := s.applications.DeleteMany(ctx, bson.M{"jobID": jobID})
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("応募の削除に失敗: %w", err)
	}
	return toDeleteResult(res), nil
}

func (s *Store) updateApplications(ctx context.Context, jobID string, update store.JobUpdate) (store.UpdateResult, error) {
	res, err := s.applications.UpdateMany(ctx, bson.M{"jobID": jobID}, bson.M{"$set": update})
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("応募の更新に失敗: %w", err)
	}
	return toUpdateResult(res), nil
}

// applicationFromDocument はデコードしたBSONドキュメントを応募に変換する。
func applicationFromDocument(doc bson.M) store.AppliedJob {
	plain := make(map[string]any, len(doc))
	for k, v := range doc {
		plain[k] = plainValue(v)
	}
	return store.AppliedJobFromDocument(plain)
}

// plainValue はBSON固有の型をJSONにそのまま出力できる型に置き換える。
func plainValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = plainValue(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, 0, len(val))
		for _, e := range val {
			out = append(out, plainValue(e))
		}
		return out
	default:
		return v
	}
}
