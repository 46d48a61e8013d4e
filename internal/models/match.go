package models

import "time"

// Match 是兩隻互相喜歡的貓咪之間的配對
// 一律以較小的貓咪 ID 作為 A 方儲存，唯一性只需比對 (cat_a_id, cat_b_id)
type Match struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CatAID        uint       `gorm:"not null;uniqueIndex:idx_match_pair,priority:1" json:"cat_a_id"`
	AccountAID    uint       `gorm:"not null;index" json:"account_a_id"`
	CatBID        uint       `gorm:"not null;uniqueIndex:idx_match_pair,priority:2" json:"cat_b_id"`
	AccountBID    uint       `gorm:"not null;index" json:"account_b_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PairSide 是配對中的一方
type PairSide struct {
	CatID     uint
	AccountID uint
}

// CanonicalPair 回傳排序後的兩方，所有建立或查詢配對的路徑都必須使用它
func CanonicalPair(x, y PairSide) (a, b PairSide) {
	if x.CatID <= y.CatID {
		return x, y
	}
	return y, x
}

// NewMatch 以正規順序建立一個尚未儲存的配對
func NewMatch(x, y PairSide) *Match {
	a, b := CanonicalPair(x, y)
	return &Match{
		CatAID:     a.CatID,
		AccountAID: a.AccountID,
		CatBID:     b.CatID,
		AccountBID: b.AccountID,
	}
}

// HasAccount 檢查帳號是否為配對的其中一方
func (m *Match) HasAccount(accountID uint) bool {
	return m.AccountAID == accountID || m.AccountBID == accountID
}

// OtherAccount 回傳另一方的帳號
func (m *Match) OtherAccount(accountID uint) (uint, bool) {
	switch accountID {
	case m.AccountAID:
		return m.AccountBID, true
	case m.AccountBID:
		return m.AccountAID, true
	}
	return 0, false
}

// MatchDetail 是附帶雙方摘要的配對
type MatchDetail struct {
	*Match
	CatA CatSummary `json:"cat_a"`
	CatB CatSummary `json:"cat_b"`
}
