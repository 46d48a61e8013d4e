package models

import (
	"gorm.io/gorm"
)

// Gender 是用於排除同向候選者的方向屬性
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Cat 表示一個可以表達興趣、被配對的貓咪檔案
type Cat struct {
	gorm.Model
	AccountID uint     `gorm:"index;not null" json:"account_id"`
	Name      string   `gorm:"not null" json:"name"`
	Gender    Gender   `gorm:"type:varchar(16);not null" json:"gender"`
	Breed     string   `json:"breed"`
	Photos    []string `gorm:"serializer:json" json:"photos"`
	Active    bool     `gorm:"not null" json:"active"`

	// 每日超級喜歡的額度狀態，日期以 UTC 的 2006-01-02 表示
	SuperLikeDate  string `gorm:"type:varchar(10)" json:"-"`
	SuperLikeCount int    `gorm:"not null;default:0" json:"-"`
}

// CatSummary 是配對回應中呈現給對方的摘要資料
type CatSummary struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Photos       []string `json:"photos"`
	OwnerID      uint     `json:"owner_id"`
	OwnerName    string   `json:"owner_name"`
	OwnerContact string   `json:"owner_contact"`
}

// Summarize 組合貓咪與飼主的摘要
func (c *Cat) Summarize(owner *Account) CatSummary {
	s := CatSummary{
		ID:      c.ID,
		Name:    c.Name,
		Photos:  c.Photos,
		OwnerID: c.AccountID,
	}
	if owner != nil {
		s.OwnerName = owner.Username
		s.OwnerContact = owner.Contact
	}
	if s.Photos == nil {
		s.Photos = []string{}
	}
	return s
}
