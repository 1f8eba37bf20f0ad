package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day rendered as YYYY-MM-DD.
type Date time.Time

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) Time() time.Time {
	return time.Time(d)
}

// DatePtr wraps t unless it is zero.
func DatePtr(t time.Time) *Date {
	if t.IsZero() {
		return nil
	}
	d := Date(t)
	return &d
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// RoundRating rounds an average rating to two decimals.
func RoundRating(avg float64) float64 {
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0
	}
	return math.Round(avg*100) / 100
}

// AverageOrZero maps a missing average to 0 and rounds the rest.
func AverageOrZero(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return RoundRating(*avg)
}

// Truncate shortens s to at most n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// Photo is an attachment id and its public URL.
type Photo struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
