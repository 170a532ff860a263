package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// nextCode draws the next value from a PostgreSQL sequence and formats it as
// PREFIX-YYYY-NNNNN. Sequences are created by infra.NewDatabase.
func nextCode(db *gorm.DB, sequence, prefix string) (string, error) {
	var n int64
	if err := db.Raw("SELECT nextval(?)", sequence).Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, time.Now().Year(), n), nil
}
