// Package jobboard はJobNestの求人ボードAPIを提供する。
//
// 求人の掲載・検索・更新・削除、応募の記録と一覧、ユーザー登録と
// ロール取得、クッキーによるセッショントークンの発行と失効を扱う。
// 永続化はすべて store.Store を通して行う。
package jobboard
