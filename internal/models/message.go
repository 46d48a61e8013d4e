package models

import "time"

// Message 屬於某一個配對的聊天訊息
type Message struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	MatchID         uint      `gorm:"not null;index:idx_message_match_sent,priority:1" json:"match_id"`
	SenderAccountID uint      `gorm:"not null" json:"sender_account_id"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	SentAt          time.Time `gorm:"not null;index:idx_message_match_sent,priority:2" json:"sent_at"`
	Read            bool      `gorm:"not null;default:false" json:"read"`
}
