package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job は求人ドキュメント。
type Job struct {
	// ID はドキュメントの一意識別子（ObjectIDの16進表現）。
	ID string `json:"_id,omitempty" bson:"-"`
	// AuthorName は投稿者の名前。
	AuthorName string `json:"authorName" bson:"authorName"`
	// AuthorEmail は投稿者のメールアドレス。
	AuthorEmail string `json:"authorEmail" bson:"authorEmail"`
	// JobTitle は求人のタイトル。
	JobTitle string `json:"jobTitle" bson:"jobTitle"`
	// CompanyImgURL は企業ロゴのURL。
	CompanyImgURL string `json:"companyImgURL" bson:"companyImgURL"`
	// BannerImgURL はバナー画像のURL。
	BannerImgURL string `json:"bannerImgURL" bson:"bannerImgURL"`
	// JobCategory は求人カテゴリ。
	JobCategory string `json:"jobCategory" bson:"jobCategory"`
	// JobDescription は求人の説明文。
	JobDescription string `json:"jobDescription" bson:"jobDescription"`
	// JobPostingDate は掲載日。解釈せず文字列のまま保存する。
	JobPostingDate string `json:"jobPostingDate" bson:"jobPostingDate"`
	// ApplicationDeadline は応募締切日。解釈せず文字列のまま保存する。
	ApplicationDeadline string `json:"applicationDeadline" bson:"applicationDeadline"`
	// SalaryRangeStart は給与レンジの下限。
	SalaryRangeStart string `json:"salaryRangeStart" bson:"salaryRangeStart"`
	// SalaryRangeEnd は給与レンジの上限。
	SalaryRangeEnd string `json:"salaryRangeEnd" bson:"salaryRangeEnd"`
	// Applicants は応募者数。最初の応募まではフィールド自体が存在しない。
	Applicants int64 `json:"applicants,omitempty" bson:"applicants,omitempty"`
}

// JobUpdate は求人更新時に上書きされるフィールドの集合。
// 応募レコードに複製された求人情報の同期にも同じフィールドを使う。
type JobUpdate struct {
	JobTitle            string `json:"jobTitle" bson:"jobTitle"`
	CompanyImgURL       string `json:"companyImgURL" bson:"companyImgURL"`
	BannerImgURL        string `json:"bannerImgURL" bson:"bannerImgURL"`
	JobCategory         string `json:"jobCategory" bson:"jobCategory"`
	JobDescription      string `json:"jobDescription" bson:"jobDescription"`
	ApplicationDeadline string `json:"applicationDeadline" bson:"applicationDeadline"`
	SalaryRangeStart    string `json:"salaryRangeStart" bson:"salaryRangeStart"`
	SalaryRangeEnd      string `json:"salaryRangeEnd" bson:"salaryRangeEnd"`
}

// Fields はJSONキーと値の組を固定順で返す。
// SQLiteのjson_setなど、キーを列挙して更新する実装で使う。
func (u JobUpdate) Fields() []FieldValue {
	return []FieldValue{
		{Key: "jobTitle", Value: u.JobTitle},
		{Key: "companyImgURL", Value: u.CompanyImgURL},
		{Key: "bannerImgURL", Value: u.BannerImgURL},
		{Key: "jobCategory", Value: u.JobCategory},
		{Key: "jobDescription", Value: u.JobDescription},
		{Key: "applicationDeadline", Value: u.ApplicationDeadline},
		{Key: "salaryRangeStart", Value: u.SalaryRangeStart},
		{Key: "salaryRangeEnd", Value: u.SalaryRangeEnd},
	}
}

// FieldValue はドキュメントのキーと値の組。
type FieldValue struct {
	Key   string
	Value string
}

// JobFilterKind は求人一覧の絞り込み方法。
type JobFilterKind int

const (
	// JobFilterAll は絞り込みなし。
	JobFilterAll JobFilterKind = iota
	// JobFilterCategory は正規化済みカテゴリの完全一致。
	JobFilterCategory
	// JobFilterSearch はタイトルの大文字小文字を区別しない部分一致。
	JobFilterSearch
	// JobFilterAuthorEmail は投稿者メールアドレスの完全一致。
	JobFilterAuthorEmail
)

// JobFilter は求人一覧の絞り込み条件。
type JobFilter struct {
	Kind  JobFilterKind
	Value string
}

// NewJobFilter はクエリパラメータから絞り込み条件を組み立てる。
// 複数指定された場合は category, search, email の順に優先する。
func NewJobFilter(category, search, email string) JobFilter {
	switch {
	case category != "":
		return JobFilter{Kind: JobFilterCategory, Value: NormalizeCategory(category)}
	case search != "":
		return JobFilter{Kind: JobFilterSearch, Value: search}
	case email != "":
		return JobFilter{Kind: JobFilterAuthorEmail, Value: email}
	default:
		return JobFilter{Kind: JobFilterAll}
	}
}

// NormalizeCategory はカテゴリ名から空白を取り除き小文字にする。
// 例: "Software Engineering" -> "softwareengineering"
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.ReplaceAll(category, " ", ""))
}

// AppliedJob は応募ドキュメント。
// JobIDとApplicantEmail以外のフィールドは自由形式で、Fieldsにそのまま保持する。
type AppliedJob struct {
	// ID はドキュメントの一意識別子。
	ID string
	// JobID は応募先求人のID。
	JobID string
	// ApplicantEmail は応募者のメールアドレス。
	ApplicantEmail string
	// Fields は上記以外の送信されたフィールド。
	Fields map[string]any
}

const (
	keyID             = "_id"
	keyJobID          = "jobID"
	keyApplicantEmail = "applicantEmail"
)

// Document は応募をフラットなキー・値のマップに変換する。
// IDが空の場合は _id を含めない。
func (a AppliedJob) Document() map[string]any {
	doc := make(map[string]any, len(a.Fields)+3)
	for k, v := range a.Fields {
		doc[k] = v
	}
	if a.ID != "" {
		doc[keyID] = a.ID
	} else {
		delete(doc, keyID)
	}
	doc[keyJobID] = a.JobID
	doc[keyApplicantEmail] = a.ApplicantEmail
	return doc
}

// AppliedJobFromDocument はフラットなマップから応募を組み立てる。
// 引数のマップは変更しない。
func AppliedJobFromDocument(doc map[string]any) AppliedJob {
	fields := make(map[string]any, len(doc))
	for k, v := range doc {
		fields[k] = v
	}

	var a AppliedJob
	if v, ok := fields[keyID].(string); ok {
		a.ID = v
		delete(fields, keyID)
	}
	if v, ok := fields[keyJobID].(string); ok {
		a.JobID = v
		delete(fields, keyJobID)
	}
	if v, ok := fields[keyApplicantEmail].(string); ok {
		a.ApplicantEmail = v
		delete(fields, keyApplicantEmail)
	}
	a.Fields = fields
	return a
}

// MarshalJSON は応募をフラットなJSONオブジェクトとして出力する。
func (a AppliedJob) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Document())
}

// UnmarshalJSON はフラットなJSONオブジェクトから応募を読み込む。
func (a *AppliedJob) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("応募はJSONオブジェクトである必要があります")
	}
	*a = AppliedJobFromDocument(doc)
	return nil
}

// User はユーザードキュメント。
type User struct {
	// Email はユーザーを一意に識別するメールアドレス。
	Email string `json:"email" bson:"email"`
	// Name は表示名。
	Name string `json:"name" bson:"name"`
	// Role はユーザーの権限ロール。
	Role string `json:"role" bson:"role"`
	// Timestamp は初回登録日時。
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	// TimestampNow は最終アクセス日時。
	TimestampNow time.Time `json:"timestampNow" bson:"timestampNow"`
}

// NewID は新しいドキュメントIDを生成する。
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidateID はIDがドキュメントIDとして正しい形式かを検証する。
func ValidateID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
