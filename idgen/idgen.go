// Package idgen builds the human-readable order and task identifiers,
// "order_20260115_k3x9q0m2ab" and "task_20260115_k3x9q0m2ab".
//
// The suffix carries about 51 bits of randomness. Uniqueness is enforced by
// the store's unique index on order_id; callers regenerate on a duplicate.
package idgen

import (
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OrderPrefix = "order"
	TaskPrefix  = "task"

	DefaultSuffixLen = 10
	dateLayout       = "20060102"
)

type IDs struct {
	OrderID string
	TaskID  string
}

type Generator struct {
	suffixLen int
	newUUID   func() uuid.UUID
}

func New() *Generator {
	return &Generator{suffixLen: DefaultSuffixLen, newUUID: uuid.New}
}

// Next returns an order/task id pair sharing the same date and suffix.
// The date is taken in UTC.
func (g *Generator) Next(now time.Time) IDs {
	date := now.UTC().Format(dateLayout)
	suffix := g.suffix()
	return IDs{
		OrderID: OrderPrefix + "_" + date + "_" + suffix,
		TaskID:  TaskPrefix + "_" + date + "_" + suffix,
	}
}

func (g *Generator) suffix() string {
	u := g.newUUID()
	s := new(big.Int).SetBytes(u[:]).Text(36)
	if len(s) < g.suffixLen {
		s = strings.Repeat("0", g.suffixLen-len(s)) + s
	}
	return s[len(s)-g.suffixLen:]
}
