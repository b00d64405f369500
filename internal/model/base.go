package model

import (
	"strings"
	"time"
)

// ── timestamps ──

// TimeLayout is the wire format for every stored timestamp (UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the stored timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// localLayouts are the zone-less datetimes the order form writes.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTime accepts any RFC 3339 timestamp. A datetime without a zone is read
// as wall time in loc (UTC when loc is nil).
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if lt, lerr := time.ParseInLocation(layout, s, loc); lerr == nil {
			return lt, nil
		}
	}
	return time.Time{}, err
}

// DatePart returns the YYYY-MM-DD prefix of a stored datetime.
func DatePart(datetime string) string {
	if i := strings.IndexByte(datetime, 'T'); i >= 0 {
		return datetime[:i]
	}
	return datetime
}

// ── enums ──

const (
	OrderStatusActive    = "active"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

const (
	PaymentTypeCash    = "cash"
	PaymentTypeNonCash = "non-cash"
)

const (
	DispatcherStatusActive  = "active"
	DispatcherStatusBreak   = "break"
	DispatcherStatusOffline = "offline"
)

const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleWorker     = "worker"
)

const (
	EmployeeStatusNew         = "new"
	EmployeeStatusExperienced = "experienced"
)

const (
	ContextDispatcher = "dispatcher"
	ContextWorker     = "worker"
	ContextCustomer   = "customer"
	ContextAdmin      = "admin"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)
