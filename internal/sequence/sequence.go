// Package sequence issues human-readable yearly ticket and booking
// numbers (MNT-2026-0001) from a counters table. The counter row is
// bumped with a single atomic UPDATE inside a transaction, so concurrent
// creators never mint the same number.
package sequence

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Counter is one named sequence, scoped per prefix and year.
type Counter struct {
	Scope string `gorm:"primaryKey;size:20"`
	Value int64  `gorm:"not null"`
}

func (Counter) TableName() string {
	return "number_sequences"
}

type Generator struct {
	db *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Next returns the next number for the prefix in the current year,
// formatted as PREFIX-YYYY-NNNN.
func (g *Generator) Next(prefix string) (string, error) {
	return g.NextAt(prefix, time.Now())
}

func (g *Generator) NextAt(prefix string, now time.Time) (string, error) {
	scope := fmt.Sprintf("%s-%d", prefix, now.Year())
	var value int64
	err := g.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Counter{}).Where("scope = ?", scope).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&Counter{Scope: scope, Value: 1}).Error; err != nil {
				// Lost the race to create the row; bump it instead.
				res = tx.Model(&Counter{}).Where("scope = ?", scope).
					Update("value", gorm.Expr("value + 1"))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return err
				}
			}
		}
		var ctr Counter
		if err := tx.Where("scope = ?", scope).First(&ctr).Error; err != nil {
			return err
		}
		value = ctr.Value
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", scope, value), nil
}
