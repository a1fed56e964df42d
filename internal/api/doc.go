// Package api 處理 HTTP 請求路由。
//
// handlers 子包把 HTTP 請求轉換為 service 調用，錯誤一律以 {"error": ...} 回傳。
// 房間的即時事件透過 /api/rooms/:id/ws 推送。
package api
