// Package store は求人ボードの永続化層の契約を定義する。
//
// 求人（Job）、応募（AppliedJob）、ユーザー（User）の3種類のドキュメントを扱う。
// ハンドラはすべてStoreインターフェース経由でデータにアクセスし、
// 具体的な実装（MongoDB / SQLite）には依存しない。
//
// 実装:
//   - mongostore: 本番用のMongoDB実装
//   - sqlitestore: ローカル開発・テスト用のSQLite実装（JSONドキュメントとして保存）
package store
