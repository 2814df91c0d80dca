package models

// User владелец коротких ссылок. UUID выдается при первом обращении и
// является единственным "пропуском" к управлению ссылками.
type User struct {
	UUID  string `json:"uuid" gorm:"type:char(36);primaryKey"`
	Email string `json:"email"`

	Links []Link `json:"-" gorm:"foreignKey:UserUUID;references:UUID"`
}
