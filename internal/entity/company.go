package entity

import (
	"time"

	"github.com/lib/pq"
)

// Company is an entry in the tracked-company registry. The registry is
// immutable reference data loaded once at the start of each batch run.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Ticker    string         `gorm:"unique;not null" json:"ticker"`
	Name      string         `gorm:"not null" json:"name"`
	Keywords  pq.StringArray `gorm:"type:text[];not null" json:"keywords"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}
