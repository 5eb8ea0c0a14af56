package store

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestNewJobFilter はクエリパラメータから絞り込み条件が組み立てられることを検証する。
func TestNewJobFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category string
		search   string
		email    string
		want     JobFilter
	}{
		{
			name: "指定なしの場合は全件",
			want: JobFilter{Kind: JobFilterAll},
		},
		{
			name:     "カテゴリは空白除去と小文字化される",
			category: "Software Engineering",
			want:     JobFilter{Kind: JobFilterCategory, Value: "softwareengineering"},
		},
		{
			name:   "検索語はそのまま使われる",
			search: "Engineer",
			want:   JobFilter{Kind: JobFilterSearch, Value: "Engineer"},
		},
		{
			name:  "メールアドレスはそのまま使われる",
			email: "a@example.com",
			want:  JobFilter{Kind: JobFilterAuthorEmail, Value: "a@example.com"},
		},
		{
			name:     "カテゴリが検索語より優先される",
			category: "Remote",
			search:   "engineer",
			email:    "a@example.com",
			want:     JobFilter{Kind: JobFilterCategory, Value: "remote"},
		},
		{
			name:   "検索語がメールアドレスより優先される",
			search: "lead",
			email:  "a@example.com",
			want:   JobFilter{Kind: JobFilterSearch, Value: "lead"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewJobFilter(tt.category, tt.search, tt.email)
			if got != tt.want {
				t.Errorf("NewJobFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestValidateID はドキュメントIDの形式検証を確認する。
func TestValidateID(t *testing.T) {
	t.Parallel()

	t.Run("生成したIDは有効であること", func(t *testing.T) {
		t.Parallel()

		if err := ValidateID(NewID()); err != nil {
			t.Errorf("ValidateID() error = %v", err)
		}
	})

	t.Run("16進24桁でないIDはErrInvalidIDになること", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz", "0123456789abcdef0123456789"} {
			if err := ValidateID(id); !errors.Is(err, ErrInvalidID) {
				t.Errorf("ValidateID(%q) error = %v, want ErrInvalidID", id, err)
			}
		}
	})
}

// TestAppliedJobJSON は応募のJSON変換で自由形式のフィールドが保持されることを検証する。
func TestAppliedJobJSON(t *testing.T) {
	t.Parallel()

	t.Run("既知のキーは専用フィールドに、それ以外はFieldsに入ること", func(t *testing.T) {
		t.Parallel()

		input := `{"_id":"665f1c2e9b1d4a3f8c7e6d5a","jobID":"job-1","applicantEmail":"a@example.com","resumeLink":"https://example.com/cv.pdf","jobTitle":"Engineer"}`

		var a AppliedJob
		if err := json.Unmarshal([]byte(input), &a); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}

		if a.ID != "665f1c2e9b1d4a3f8c7e6d5a" {
			t.Errorf("ID = %q", a.ID)
		}
		if a.JobID != "job-1" {
			t.Errorf("JobID = %q, want %q", a.JobID, "job-1")
		}
		if a.ApplicantEmail != "a@example.com" {
			t.Errorf("ApplicantEmail = %q, want %q", a.ApplicantEmail, "a@example.com")
		}
		if len(a.Fields) != 2 {
			t.Errorf("len(Fields) = %d, want 2: %v", len(a.Fields), a.Fields)
		}
		if a.Fields["resumeLink"] != "https://example.com/cv.pdf" {
			t.Errorf("Fields[resumeLink] = %v", a.Fields["resumeLink"])
		}
	})

	t.Run("出力はフラットなオブジェクトになること", func(t *testing.T) {
		t.Parallel()

		a := AppliedJob{
			JobID:          "job-2",
			ApplicantEmail: "b@example.com",
			Fields:         map[string]any{"note": "hello"},
		}
		data, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		if _, ok := got["_id"]; ok {
			t.Error("IDが空なのに _id が出力された")
		}
		if got["jobID"] != "job-2" || got["applicantEmail"] != "b@example.com" || got["note"] != "hello" {
			t.Errorf("出力 = %v", got)
		}
	})

	t.Run("JSONオブジェクト以外はエラーになること", func(t *testing.T) {
		t.Parallel()

		var a AppliedJob
		if err := json.Unmarshal([]byte(`null`), &a); err == nil {
			t.Error("nullの読み込みがエラーを返すべき")
		}
	})
}

// TestAppliedJobDocument はDocumentがFieldsを共有しないことを検証する。
func TestAppliedJobDocument(t *testing.T) {
	t.Parallel()

	fields := map[string]any{"note": "x"}
	a := AppliedJob{JobID: "j", ApplicantEmail: "e", Fields: fields}

	doc := a.Document()
	doc["note"] = "changed"

	if fields["note"] != "x" {
		t.Errorf("Document()の変更が元のFieldsに反映された: %v", fields)
	}
}
