package mongostore

import (
	"context"
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/nao1215/jobnest/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestJobFilterDocument は絞り込み条件からクエリドキュメントへの変換を検証する。
func TestJobFilterDocument(t *testing.T) {
	t.Parallel()

	t.Run("絞り込みなしは空のクエリになること", func(t *testing.T) {
		t.Parallel()

		if got := jobFilterDocument(store.NewJobFilter("", "", "")); len(got) != 0 {
			t.Errorf("jobFilterDocument() = %v, want empty", got)
		}
	})

	t.Run("カテゴリは正規化済みの値で完全一致すること", func(t *testing.T) {
		t.Parallel()

		got := jobFilterDocument(store.NewJobFilter("Software Engineering", "", ""))
		if got["jobCategory"] != "softwareengineering" {
			t.Errorf("jobFilterDocument() = %v", got)
		}
	})

	t.Run("メールアドレスはauthorEmailの完全一致になること", func(t *testing.T) {
		t.Parallel()

		got := jobFilterDocument(store.NewJobFilter("", "", "a@example.com"))
		if got["authorEmail"] != "a@example.com" {
			t.Errorf("jobFilterDocument() = %v", got)
		}
	})

	t.Run("検索語は大文字小文字を区別しないリテラル照合になること", func(t *testing.T) {
		t.Parallel()

		got := jobFilterDocument(store.NewJobFilter("", "c++ (senior)", ""))
		re, ok := got["jobTitle"].(primitive.Regex)
		if !ok {
			t.Fatalf("jobTitle = %T, want primitive.Regex", got["jobTitle"])
		}
		if re.Options != "i" {
			t.Errorf("Options = %q, want %q", re.Options, "i")
		}

		// サーバー側と同じ意味になるよう、Goの正規表現で照合結果を確認する
		compiled := regexp.MustCompile("(?i)" + re.Pattern)
		for title, want := range map[string]bool{
			"Lead C++ (Senior) Engineer": true,
			"c++ (senior)":               true,
			"cc (senior)":                false,
			"C++ senior":                 false,
		} {
			if got := compiled.MatchString(title); got != want {
				t.Errorf("%q に対する照合 = %v, want %v", title, got, want)
			}
		}
	})
}

// TestApplicationFromDocument はBSONドキュメントから応募への変換を検証する。
func TestApplicationFromDocument(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	submitted := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := bson.M{
		"_id":            oid,
		"jobID":          "665f1c2e9b1d4a3f8c7e6d5a",
		"applicantEmail": "x@example.com",
		"submittedAt":    primitive.NewDateTimeFromTime(submitted),
		"profile":        bson.M{"links": bson.A{"https://example.com", int32(3)}},
		"answers":        bson.D{{Key: "q1", Value: "yes"}},
	}

	app := applicationFromDocument(doc)

	if app.ID != oid.Hex() {
		t.Errorf("ID = %q, want %q", app.ID, oid.Hex())
	}
	if app.JobID != "665f1c2e9b1d4a3f8c7e6d5a" || app.ApplicantEmail != "x@example.com" {
		t.Errorf("JobID/ApplicantEmail = %q/%q", app.JobID, app.ApplicantEmail)
	}
	if app.Fields["submittedAt"] != submitted.Format(time.RFC3339Nano) {
		t.Errorf("submittedAt = %v", app.Fields["submittedAt"])
	}

	profile, ok := app.Fields["profile"].(map[string]any)
	if !ok {
		t.Fatalf("profile = %T, want map[string]any", app.Fields["profile"])
	}
	links, ok := profile["links"].([]any)
	if !ok || len(links) != 2 || links[0] != "https://example.com" {
		t.Errorf("links = %#v", profile["links"])
	}

	answers, ok := app.Fields["answers"].(map[string]any)
	if !ok || answers["q1"] != "yes" {
		t.Errorf("answers = %#v", app.Fields["answers"])
	}

	if _, ok := doc["_id"].(primitive.ObjectID); !ok {
		t.Error("元のドキュメントが変更された")
	}
}

// TestToUpdateResult はドライバの更新結果の変換を検証する。
func TestToUpdateResult(t *testing.T) {
	t.Parallel()

	t.Run("upsertされた場合はIDが16進文字列になること", func(t *testing.T) {
		t.Parallel()

		oid := primitive.NewObjectID()
		got := toUpdateResult(&mongo.UpdateResult{UpsertedCount: 1, UpsertedID: oid})
		if !got.Acknowledged || got.UpsertedCount != 1 || got.UpsertedID == nil || *got.UpsertedID != oid.Hex() {
			t.Errorf("toUpdateResult() = %+v", got)
		}
	})

	t.Run("upsertされなかった場合はIDがnilになること", func(t *testing.T) {
		t.Parallel()

		got := toUpdateResult(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1})
		if got.MatchedCount != 1 || got.ModifiedCount != 1 || got.UpsertedID != nil {
			t.Errorf("toUpdateResult() = %+v", got)
		}
	})
}

// TestParseObjectID はID変換のエラーを検証する。
func TestParseObjectID(t *testing.T) {
	t.Parallel()

	if _, err := parseObjectID("bad"); !errors.Is(err, store.ErrInvalidID) {
		t.Errorf("parseObjectID() error = %v, want ErrInvalidID", err)
	}

	oid := primitive.NewObjectID()
	got, err := parseObjectID(oid.Hex())
	if err != nil || got != oid {
		t.Errorf("parseObjectID() = %v, %v", got, err)
	}
}

// TestUserUpsertDocument はユーザーupsertの更新ドキュメントを検証する。
func TestUserUpsertDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := userUpsertDocument(store.User{Email: "a@example.com", Name: "Alice", Role: "admin"}, now)

	set, ok := doc["$set"].(bson.M)
	if !ok || len(set) != 1 || set["timestampNow"] != now {
		t.Errorf("$set = %#v", doc["$set"])
	}
	onInsert, ok := doc["$setOnInsert"].(bson.M)
	if !ok {
		t.Fatalf("$setOnInsert = %#v", doc["$setOnInsert"])
	}
	if onInsert["name"] != "Alice" || onInsert["role"] != "admin" || onInsert["timestamp"] != now {
		t.Errorf("$setOnInsert = %#v", onInsert)
	}
	if _, ok := onInsert["timestampNow"]; ok {
		t.Error("timestampNowが$setと$setOnInsertの両方に含まれている")
	}
}

// TestStoreWithServer は実際のMongoDBに対してストアの振る舞いを検証する。
// MONGODB_TEST_URI が設定されていない場合はスキップする。
func TestStoreWithServer(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI が未設定のためスキップ")
	}

	ctx := context.Background()
	dbName := "jobnest_test_" + primitive.NewObjectID().Hex()
	s, err := Open(ctx, Options{
		URI:          uri,
		Database:     dbName,
		Transactions: os.Getenv("MONGODB_TEST_TRANSACTIONS") == "true",
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.client.Database(dbName).Drop(ctx)
		_ = s.Close(ctx)
	})

	res, err := s.CreateJob(ctx, store.Job{JobTitle: "Senior Engineer", JobCategory: "softwareengineering"})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	id := res.InsertedID

	jobs, err := s.ListJobs(ctx, store.NewJobFilter("Software Engineering", "", ""))
	if err != nil || len(jobs) != 1 || jobs[0].ID != id {
		t.Fatalf("ListJobs() = %+v, %v", jobs, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.IncrementApplicants(ctx, id); err != nil {
			t.Fatalf("IncrementApplicants() error = %v", err)
		}
	}
	job, err := s.GetJob(ctx, id)
	if err != nil || job == nil || job.Applicants != 2 {
		t.Fatalf("GetJob() = %+v, %v", job, err)
	}

	app := store.AppliedJob{JobID: id, ApplicantEmail: "x@example.com"}
	if _, err := s.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	if _, err := s.CreateApplication(ctx, app); !errors.Is(err, store.ErrDuplicateApplication) {
		t.Fatalf("CreateApplication() error = %v, want ErrDuplicateApplication", err)
	}

	if _, err := s.DeleteJobCascade(ctx, id); err != nil {
		t.Fatalf("DeleteJobCascade() error = %v", err)
	}
	found, err := s.FindApplication(ctx, id, "x@example.com")
	if err != nil || found != nil {
		t.Fatalf("FindApplication() = %+v, %v, want nil", found, err)
	}
}
