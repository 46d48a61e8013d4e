package models

import "time"

// InterestKind 定義對另一隻貓的動作種類
type InterestKind string

const (
	InterestLike      InterestKind = "like"
	InterestSuperLike InterestKind = "super_like" // 每日額度受限
	InterestPass      InterestKind = "pass"
)

// Valid 檢查動作種類是否合法
func (k InterestKind) Valid() bool {
	switch k {
	case InterestLike, InterestSuperLike, InterestPass:
		return true
	}
	return false
}

// Favorable 表示此動作可以構成配對
func (k InterestKind) Favorable() bool {
	return k == InterestLike || k == InterestSuperLike
}

// Interest 是一筆有方向的興趣紀錄，每個 (cat_id, target_cat_id) 只能有一筆，建立後不可修改
type Interest struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	AccountID   uint         `gorm:"not null;index" json:"account_id"`
	CatID       uint         `gorm:"not null;uniqueIndex:idx_interest_pair,priority:1" json:"cat_id"`
	TargetCatID uint         `gorm:"not null;uniqueIndex:idx_interest_pair,priority:2;index" json:"target_cat_id"`
	Kind        InterestKind `gorm:"type:varchar(16);not null" json:"kind"`
	CreatedAt   time.Time    `json:"created_at"`
}
