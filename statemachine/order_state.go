package statemachine

import (
	"fmt"
	"strings"

	"water-delivery-api/models"
)

// Transition is one permitted status change.
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// statuses is the full order status vocabulary, in lifecycle order.
var statuses = []models.OrderStatus{
	models.StatusPlanned,
	models.StatusInProgress,
	models.StatusCompleted,
	models.StatusCancelled,
}

// validTransitions connects every status to every status, itself included.
// None is terminal: completed and cancelled orders can be reopened, which
// admins use to correct mistakes.
var validTransitions = func() []Transition {
	var ts []Transition
	for _, from := range statuses {
		for _, to := range statuses {
			ts = append(ts, Transition{From: from, To: to})
		}
	}
	return ts
}()

var known = func() map[models.OrderStatus]bool {
	m := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		m[s] = true
	}
	return m
}()

// Statuses returns the known order statuses.
func Statuses() []models.OrderStatus {
	out := make([]models.OrderStatus, len(statuses))
	copy(out, statuses)
	return out
}

// IsValid reports whether status belongs to the vocabulary.
func IsValid(status models.OrderStatus) bool {
	return known[status]
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	if !known[status] {
		return nil
	}
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition only rejects a target outside the vocabulary. The current
// status is not checked, so legacy rows with unknown values can be repaired.
func CanTransition(from, to models.OrderStatus) error {
	if !known[to] {
		return fmt.Errorf("invalid status %q: must be one of %s", to, describe(statuses))
	}
	return nil
}

func describe(list []models.OrderStatus) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
