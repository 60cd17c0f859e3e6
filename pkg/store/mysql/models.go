package mysql

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONStringArray stores a []string as a JSON column.
type JSONStringArray []string

// Value implements driver.Valuer.
func (a JSONStringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONStringArray: %T", value)
	}
	return json.Unmarshal(data, a)
}

// Report is a persisted synthesis report (aggregate or team). The
// coordinator only ever writes these rows.
type Report struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	Kind         string          `gorm:"type:varchar(64);index"`
	TaskIDs      JSONStringArray `gorm:"type:json"`
	Contributors JSONStringArray `gorm:"type:json"`
	Content      string          `gorm:"type:text"`
	CreatedAt    time.Time
}

// TaskArchive is one finalized task, written on Finalize for durable
// reporting. Never read back by the coordinator.
type TaskArchive struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	TaskID      string `gorm:"type:varchar(64);uniqueIndex"`
	AgentName   string `gorm:"type:varchar(128);index"`
	Description string `gorm:"type:text"`
	Priority    string `gorm:"type:varchar(16)"`
	Status      string `gorm:"type:varchar(16)"`
	Success     bool
	Output      string `gorm:"type:text"`
	Error       string `gorm:"type:text"`
	SubmittedAt time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}
