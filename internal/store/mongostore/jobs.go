package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/nao1215/jobnest/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// jobDocument はalljobsコレクションのドキュメント形式。
type jobDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	store.Job `bson:",inline"`
}

func (d jobDocument) toJob() store.Job {
	job := d.Job
	job.ID = d.ID.Hex()
	return job
}

// jobFilterDocument は絞り込み条件をクエリドキュメントに変換する。
// 検索語は正規表現としてではなく文字列として照合する。
func jobFilterDocument(filter store.JobFilter) bson.M {
	switch filter.Kind {
	case store.JobFilterCategory:
		return bson.M{"jobCategory": filter.Value}
	case store.JobFilterSearch:
		return bson.M{"jobTitle": primitive.Regex{Pattern: regexp.QuoteMeta(filter.Value), Options: "i"}}
	case store.JobFilterAuthorEmail:
		return bson.M{"authorEmail": filter.Value}
	default:
		return bson.M{}
	}
}

// ListJobs はフィルタに一致する求人を自然順で返す。
func (s *Store) ListJobs(ctx context.Context, filter store.JobFilter) ([]store.Job, error) {
	cursor, err := s.jobs.Find(ctx, jobFilterDocument(filter))
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗: %w", err)
	}

	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("求人一覧の読み取りに失敗: %w", err)
	}

	jobs := make([]store.Job, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, d.toJob())
	}
	return jobs, nil
}

// GetJob は指定IDの求人を返す。存在しない場合はnilを返す。
func (s *Store) GetJob(ctx context.Context, id string) (*store.Job, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc jobDocument
	if err := s.jobs.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("求人の取得に失敗: %w", err)
	}
	job := doc.toJob()
	return &job, nil
}

// CreateJob は求人を保存する。IDはドライバが生成する。
func (s *Store) CreateJob(ctx context.Context, job store.Job) (store.InsertResult, error) {
	res, err := s.jobs.InsertOne(ctx, jobDocument{Job: job})
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("求人の保存に失敗: %w", err)
	}
	return store.InsertResult{Acknowledged: true, InsertedID: insertedID(res.InsertedID)}, nil
}

// UpdateJob は求人の編集可能フィールドを$setで上書きする。
func (s *Store) UpdateJob(ctx context.Context, id string, update store.JobUpdate, upsert bool) (store.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return s.updateJob(ctx, oid, update, upsert)
}

// UpdateJobCascade は求人と応募の複製フィールドを1トランザクションで更新する。
func (s *Store) UpdateJobCascade(ctx context.Context, id string, update store.JobUpdate, upsert bool) (store.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return store.UpdateResult{}, err
	}

	var result store.UpdateResult
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		if result, err = s.updateJob(ctx, oid, update, upsert); err != nil {
			return err
		}
		_, err = s.updateApplications(ctx, id, update)
		return err
	})
	return result, err
}

func (s *Store) updateJob(ctx context.Context, oid primitive.ObjectID, update store.JobUpdate, upsert bool) (store.UpdateResult, error) {
	res, err := s.jobs.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": update},
		options.Update().SetUpsert(upsert))
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("求人の更新に失敗: %w", err)
	}
	return toUpdateResult(res), nil
}

// IncrementApplicants は応募者数を$incでアトミックに1増やす。
func (s *Store) IncrementApplicants(ctx context.Context, id string) (store.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return store.UpdateResult{}, err
	}

	res, err := s.jobs.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"applicants": 1}})
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("応募者数の更新に失敗: %w", err)
	}
	return toUpdateResult(res), nil
}

// DeleteJob は求人を1件削除する。応募レコードは残る。
func (s *Store) DeleteJob(ctx context.Context, id string) (store.DeleteResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return store.DeleteResult{}, err
	}
	return s.deleteJob(ctx, oid)
}

// DeleteJobCascade は求人とその応募を1トランザクションで削除する。
func (s *Store) DeleteJobCascade(ctx context.Context, id string) (store.DeleteResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return store.DeleteResult{}, err
	}

	var result store.DeleteResult
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		if result, err = s.deleteJob(ctx, oid); err != nil {
			return err
		}
		_, err = s.deleteApplications(ctx, id)
		return err
	})
	return result, err
}

func (s *Store) deleteJob(ctx context.Context, oid primitive.ObjectID) (store.DeleteResult, error) {
	res, err := s.jobs.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("求人の削除に失敗: %w", err)
	}
	return toDeleteResult(res), nil
}
