package models

// DailyStats representa estadísticas de un solo día
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
