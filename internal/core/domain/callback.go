package domain

import "time"

// CallbackLog is one append-only record per notification attempt.
// Response bodies are truncated to 2000 bytes before persisting.
type CallbackLog struct {
	ID         int64     `json:"id"`
	TradeNo    string    `json:"trade_no"`
	Attempt    int       `json:"attempt"`
	URL        string    `json:"url"`
	HTTPStatus int       `json:"http_status"`
	Response   string    `json:"response"`
	CreatedAt  time.Time `json:"created_at"`
}
