// Package debate 實作辯論的回合推進規則。
//
// 這裡的函式都是純函式或只持有本地狀態的小物件：回合/輪次計算、發言資格判斷、
// 發言倒數計時、以及辯論結束的觸發判斷。伺服器用它們做權威檢查，
// 客戶端用它們從輪詢得到的狀態重新推算畫面。
package debate
