package quiver

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quiverwsb/internal/domain"
)

// ErrMalformedPayload is returned when a payload is not valid JSON or rows
// are missing required fields.
var ErrMalformedPayload = errors.New("malformed payload")

// wsbRow mirrors one element of the upstream JSON array. Pointer fields
// distinguish a missing key from a zero value.
type wsbRow struct {
	Ticker    *string  `json:"Ticker"`
	Date      *string  `json:"Date"`
	Mentions  *int64   `json:"Mentions"`
	Rank      *int64   `json:"Rank"`
	Sentiment *float64 `json:"Sentiment"`
}

// dateLayouts are the timestamp formats the upstream API has been observed
// to emit. All are interpreted as UTC.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Decode deserializes a JSON array of WallStreetBets mention rows into
// domain records. The payload must be non-empty; callers short-circuit the
// empty "no data" case before decoding.
func Decode(payload string) ([]domain.MentionRecord, error) {
	var rows []wsbRow
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	records := make([]domain.MentionRecord, 0, len(rows))
	for i, row := range rows {
		if row.Ticker == nil || row.Date == nil || row.Mentions == nil || row.Rank == nil || row.Sentiment == nil {
			return nil, fmt.Errorf("%w: row %d is missing required fields", ErrMalformedPayload, i)
		}

		date, err := parseDate(*row.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedPayload, i, err)
		}

		records = append(records, domain.MentionRecord{
			Ticker:    *row.Ticker,
			Date:      date,
			Mentions:  *row.Mentions,
			Rank:      *row.Rank,
			Sentiment: *row.Sentiment,
		})
	}
	return records, nil
}

// parseDate parses an upstream timestamp as UTC.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
