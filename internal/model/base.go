package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers so every backend speaks the same shape
	decimal.MarshalJSONWithoutQuotes = true
}

// Timestamps is stamped by the repository, never by GORM hooks
type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// jsonValue dipakai untuk kolom list (items, attendance) yang disimpan sebagai text JSON
func jsonValue(v any, empty bool) (driver.Value, error) {
	if empty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(value any, dst any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}
