// Package config はJobNestサーバーの設定を読み込む。
//
// 設定はデフォルト値、CONFIG_FILEで指定したYAMLファイル、環境変数の順に
// 上書きされる。.envファイルの読み込みはmainで行う。
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はサーバー全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `yaml:"port"`
	// Mongo はMongoDBの接続設定。URIが空の場合はSQLiteを使う。
	Mongo MongoConfig `yaml:"mongo"`
	// SQLitePath はSQLiteデータベースファイルのパス。
	SQLitePath string `yaml:"sqlite_path"`
	// Auth はセッショントークンの設定。
	Auth AuthConfig `yaml:"auth"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `yaml:"allowed_origins"`
	// JobUpdateUpsert は求人更新で存在しないIDを新規作成するかどうか。
	JobUpdateUpsert bool `yaml:"job_update_upsert"`
}

// MongoConfig はMongoDBの接続設定。
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	Transactions   bool          `yaml:"transactions"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// AuthConfig はセッショントークンとクッキーの設定。
type AuthConfig struct {
	// Secret はJWT署名用の秘密鍵。
	Secret string `yaml:"secret"`
	// TokenTTL はトークンとクッキーの有効期間。
	TokenTTL time.Duration `yaml:"token_ttl"`
	// CookieSecure はクッキーにSecure属性を付けるかどうか。ローカルのhttp開発時のみfalseにする。
	CookieSecure bool `yaml:"cookie_secure"`
}

// DevSecret は秘密鍵が未設定の場合に使う開発用の値。
const DevSecret = "dev-secret-key"

// Default はデフォルト設定を返す。
func Default() Config {
	return Config{
		Port: "5000",
		Mongo: MongoConfig{
			Database:       "JobNestDB",
			Transactions:   true,
			ConnectTimeout: 10 * time.Second,
		},
		SQLitePath: "jobnest.db",
		Auth: AuthConfig{
			Secret:       DevSecret,
			TokenTTL:     time.Hour,
			CookieSecure: true,
		},
		AllowedOrigins:  []string{"http://localhost:5173"},
		JobUpdateUpsert: true,
	}
}

// Load はデフォルト設定にYAMLファイルと環境変数を重ねて返す。
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UseMongo はMongoDBを使う設定かどうかを返す。
func (c Config) UseMongo() bool {
	return c.Mongo.URI != ""
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗: %w", err)
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする。未設定の変数は無視する。
func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := getenv(key); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Port, "PORT")
	setString(&c.Mongo.URI, "MONGODB_URI")
	setString(&c.Mongo.Database, "MONGODB_DATABASE")
	setString(&c.SQLitePath, "SQLITE_PATH")
	setString(&c.Auth.Secret, "JWT_SECRET", "ACCESS_TOKEN_SECRET")

	if c.Mongo.URI == "" {
		c.Mongo.URI = atlasURI(getenv("DB_USER"), getenv("DB_PASS"), getenv("DB_HOST"))
	}

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"MONGODB_TRANSACTIONS", &c.Mongo.Transactions},
		{"COOKIE_SECURE", &c.Auth.CookieSecure},
		{"JOB_UPDATE_UPSERT", &c.JobUpdateUpsert},
	}
	for _, b := range bools {
		v := getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s の値が不正です: %w", b.key, err)
		}
		*b.dst = parsed
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TOKEN_TTL", &c.Auth.TokenTTL},
		{"MONGODB_CONNECT_TIMEOUT", &c.Mongo.ConnectTimeout},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s の値が不正です: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c Config) validate() error {
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("トークンの有効期間は正の値である必要があります: %s", c.Auth.TokenTTL)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("CORSで許可するオリジンが1つも設定されていません")
	}
	if c.UseMongo() && c.Mongo.Database == "" {
		return fmt.Errorf("MongoDBのデータベース名が設定されていません")
	}
	return nil
}

// atlasURI はユーザー名・パスワード・ホストからAtlasの接続文字列を組み立てる。
// いずれかが空の場合は空文字列を返す。
func atlasURI(user, pass, host string) string {
	if user == "" || pass == "" || host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
