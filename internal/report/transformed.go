package report

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/reillywatson/reviewturnaround/internal/review"
)

// Record is one classified obligation in the transformed output.
type Record struct {
	Reviewer string        `json:"reviewer"`
	Status   review.Status `json:"status"`
	TimeDue  string        `json:"time_due"`
}

// Records converts obligations to transformed records, dropping ignored
// reviewers. Due times are rendered in loc.
func Records(obligations []review.Obligation, ignore []string, loc *time.Location) []Record {
	if loc == nil {
		loc = time.UTC
	}
	records := make([]Record, 0, len(obligations))
	for _, o := range obligations {
		if slices.Contains(ignore, o.Reviewer) {
			continue
		}
		records = append(records, Record{
			Reviewer: o.Reviewer,
			Status:   o.Status,
			TimeDue:  o.Due.In(loc).Format(time.RFC3339),
		})
	}
	return records
}

// WriteTransformed writes the records of obligations as an indented JSON
// array.
func WriteTransformed(w io.Writer, obligations []review.Obligation, ignore []string, loc *time.Location) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(Records(obligations, ignore, loc)), "encoding transformed records")
}
