package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/jobnest/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userUpsertDocument はユーザーupsertの更新ドキュメントを組み立てる。
// 既存ユーザーではtimestampNowだけが変わり、新規ユーザーでは残りのフィールドも設定される。
func userUpsertDocument(user store.User, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{"timestampNow": now},
		"$setOnInsert": bson.M{
			"name":      user.Name,
			"role":      user.Role,
			"timestamp": now,
		},
	}
}

// UpsertUser はユーザーを1回のupsertで登録する。
func (s *Store) UpsertUser(ctx context.Context, user store.User, now time.Time) (store.UpdateResult, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": user.Email},
		userUpsertDocument(user, now),
		options.Update().SetUpsert(true))
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}
	return toUpdateResult(res), nil
}

// GetUser はメールアドレスに一致するユーザーを返す。存在しない場合はnilを返す。
func (s *Store) GetUser(ctx context.Context, email string) (*store.User, error) {
	var user store.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return &user, nil
}
