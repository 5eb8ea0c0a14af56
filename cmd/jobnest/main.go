// JobNestのエントリポイント。
// 求人の掲載・検索・応募を扱う求人ボードAPIを起動する。
// MongoDBの接続先が設定されていればMongoDBを、なければSQLiteを使う。
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/nao1215/jobnest/internal/config"
	"github.com/nao1215/jobnest/internal/jobboard"
	"github.com/nao1215/jobnest/internal/store"
	"github.com/nao1215/jobnest/internal/store/mongostore"
	"github.com/nao1215/jobnest/internal/store/sqlitestore"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf(".envの読み込みに失敗: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}
	if cfg.Auth.Secret == config.DevSecret {
		log.Printf("[WARN] JWT_SECRETが未設定のため開発用の秘密鍵を使用します")
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("データベースの初期化に失敗: %v", err)
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			log.Printf("データベースのクローズに失敗: %v", err)
		}
	}()

	server := jobboard.NewServer(cfg, st)

	log.Printf("JobNestを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Printf("JobNestの起動に失敗: %v", err)
	}
}

// openStore は設定に応じてMongoDBまたはSQLiteのストアを開く。
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.UseMongo() {
		log.Printf("MongoDBに接続します: database=%s", cfg.Mongo.Database)
		return mongostore.Open(ctx, mongostore.Options{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			Transactions:   cfg.Mongo.Transactions,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		})
	}
	log.Printf("SQLiteを使用します: %s", cfg.SQLitePath)
	return sqlitestore.Open(ctx, cfg.SQLitePath)
}
