package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ferbator/shortlink/internal/models"
	"github.com/google/uuid"
)

// MintShortCode генерирует короткий код для пары (URL, UUID владельца).
//
// В хешируемую строку подмешиваются случайная соль и текущее время в
// миллисекундах, поэтому два вызова с одинаковыми аргументами дают разные
// коды с подавляющей вероятностью. Функция трактуется как
// недетерминированная: уникальность кода гарантирует не она, а уникальный
// индекс в хранилище и цикл повторных попыток в сервисе.
func MintShortCode(originalURL, userUUID string) string {
	salt := uuid.NewString()[:models.ShortCodeLength]
	now := time.Now().UnixMilli()

	input := fmt.Sprintf("%s%s%s%d", originalURL, userUUID, salt, now)
	sum := sha256.Sum256([]byte(input))

	return hex.EncodeToString(sum[:])[:models.ShortCodeLength]
}
