// Package middleware はJobNest APIで使用するGinミドルウェアを提供する。
//
// クッキーに保存したJWTセッショントークンの発行と検証、
// パニックリカバリ、CORS設定を含む。
package middleware
