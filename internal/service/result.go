package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispetcher/backend/internal/model"
)

// ErrPreconditionNotMet marks an operation that was skipped rather than failed.
var ErrPreconditionNotMet = errors.New("precondition not met")

// Result is the outcome of an operation that is allowed to be a no-op.
// When Applied is false, Reason wraps ErrPreconditionNotMet and the precise cause.
type Result struct {
	Applied bool
	Reason  error
}

func applied() Result { return Result{Applied: true} }

func skipped(cause error) Result {
	return Result{Reason: fmt.Errorf("%w: %w", ErrPreconditionNotMet, cause)}
}

// ReasonText is the reason as text, empty when applied.
func (r Result) ReasonText() string {
	if r.Reason == nil {
		return ""
	}
	return r.Reason.Error()
}

// ── shared helpers ──

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// roundTo1 rounds to one decimal place, halves toward +Inf.
func roundTo1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

func isDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func inRange(datetime, from, to string) bool {
	d := model.DatePart(datetime)
	return d >= from && d <= to
}

func strPtr(s string) *string { return &s }
