// Package mongostore はMongoDBを使ったstore.Storeの実装を提供する。
//
// 求人の削除・更新とそれに伴う応募の更新は、マルチドキュメントトランザクションで
// まとめて実行する。トランザクションにはレプリカセット（Atlas等）が必要なため、
// スタンドアロンサーバーではOptions.Transactionsをfalseにする。
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/jobnest/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// コレクション名。
const (
	collectionJobs         = "alljobs"
	collectionApplications = "AppliedJobs"
	collectionUsers        = "AllUsers"
)

// Options はMongoDBストアの接続設定。
type Options struct {
	// URI はMongoDBの接続文字列。
	URI string
	// Database はデータベース名。
	Database string
	// Transactions はカスケード操作をトランザクションで実行するかどうか。
	Transactions bool
	// ConnectTimeout は接続確認までのタイムアウト。
	ConnectTimeout time.Duration
}

// Store はMongoDBに保存するstore.Storeの実装。
type Store struct {
	client       *mongo.Client
	jobs         *mongo.Collection
	applications *mongo.Collection
	users        *mongo.Collection
	transactions bool
}

var _ store.Store = (*Store)(nil)

// Open はMongoDBに接続し、疎通確認とインデックス作成を行う。
func Open(ctx context.Context, opts Options) (*Store, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerAPIOptions(serverAPI).
		// 自由形式の応募ドキュメントを入れ子までmapとして扱う
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDBの疎通確認に失敗: %w", err)
	}

	db := client.Database(opts.Database)
	s := &Store{
		client:       client,
		jobs:         db.Collection(collectionJobs),
		applications: db.Collection(collectionApplications),
		users:        db.Collection(collectionUsers),
		transactions: opts.Transactions,
	}
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// EnsureIndexes は検索と一意制約に必要なインデックスを作成する。既存のものはそのまま残る。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.jobs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobCategory", Value: 1}}},
		{Keys: bson.D{{Key: "authorEmail", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("求人インデックスの作成に失敗: %w", err)
	}

	if _, err := s.applications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "jobID", Value: 1}, {Key: "applicantEmail", Value: 1}},
			Options: options.Index().
				SetName("jobID_applicantEmail_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"jobID":          bson.M{"$exists": true},
					"applicantEmail": bson.M{"$exists": true},
				}),
		},
		{Keys: bson.D{{Key: "applicantEmail", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("応募インデックスの作成に失敗: %w", err)
	}

	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("ユーザーインデックスの作成に失敗: %w", err)
	}
	return nil
}

// Close はMongoDBとの接続を切断する。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// inTransaction はfnをトランザクション内で実行する。
// トランザクションが無効な場合はそのまま順に実行する。
func (s *Store) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("セッション開始に失敗: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// parseObjectID は16進表現のIDをObjectIDに変換する。
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return oid, nil
}

// insertedID はドライバが返した挿入IDを文字列にする。
func insertedID(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

func toUpdateResult(res *mongo.UpdateResult) store.UpdateResult {
	out := store.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		id := insertedID(res.UpsertedID)
		out.UpsertedID = &id
	}
	return out
}

func toDeleteResult(res *mongo.DeleteResult) store.DeleteResult {
	return store.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}
}

// isNoDocuments は検索結果が0件であることを表すエラーかを判定する。
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
