package models

import "time"

// ShortCodeLength длина короткого кода ссылки.
const ShortCodeLength = 8

// Link структура модели короткой ссылки.
//
// В хранилище лежит только ShortCode; полный короткий URL собирается на
// границе транспорта из публичного базового адреса. Так смена базового
// адреса не "ломает" уже выданные ссылки.
type Link struct {
	ID            uint      `json:"ID"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	OriginalURL   string    `json:"originalURL"`
	ShortCode     string    `json:"shortCode" gorm:"size:8;uniqueIndex"`
	CurrentClicks int       `json:"currentClicks"`
	ClickLimit    int       `json:"clickLimit"`
	Active        bool      `json:"active"`
	UserUUID      string    `json:"userUUID" gorm:"type:char(36);index"`
}

// IsExpired сообщает, истек ли срок жизни ссылки на момент now.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// IsExhausted сообщает, исчерпан ли лимит переходов.
func (l *Link) IsExhausted() bool {
	return l.CurrentClicks >= l.ClickLimit
}
