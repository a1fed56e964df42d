// Package middleware 提供 gin 的中間件：JWT 身份驗證與 zap 請求日誌。
package middleware
