package idgen

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record prefixes
const (
	Employee      = "EMP"
	Product       = "PRD"
	StockMovement = "STK"
	Transaction   = "TRX"
	Production    = "PRO"
	Meeting       = "MTG"
)

// Generator builds ids shaped PREFIX-YYYYMMDD-XXXXXX, dated in the business timezone
type Generator struct {
	now func() time.Time
	loc *time.Location
}

func New(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{now: time.Now, loc: loc}
}

// WithClock returns a copy of the generator reading time from now
func (g *Generator) WithClock(now func() time.Time) *Generator {
	return &Generator{now: now, loc: g.loc}
}

func (g *Generator) New(prefix string) string {
	return Format(Code(prefix), g.now().In(g.loc), Token())
}

// Code normalizes short prefixes (emp, prd, stk, trx, ...) to their upper-case form
func Code(prefix string) string {
	return strings.ToUpper(strings.TrimSpace(prefix))
}

func Format(code string, day time.Time, token string) string {
	return code + "-" + day.Format("20060102") + "-" + token
}

// Token is six upper-case hex characters taken from a random UUID
func Token() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:3]))
}
