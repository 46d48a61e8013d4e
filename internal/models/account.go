package models

import (
	"gorm.io/gorm"
)

// Account 表示擁有貓咪檔案的飼主帳號
type Account struct {
	gorm.Model        // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string `gorm:"uniqueIndex;not null" json:"username"`
	Contact    string `json:"contact"` // 配對成功後提供給對方的聯絡方式
}
