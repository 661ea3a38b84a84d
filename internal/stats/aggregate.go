package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/reillywatson/reviewturnaround/internal/review"
)

// Options controls how obligations are grouped into reviewers.
type Options struct {
	// Names maps logins to display names; unmapped logins display as-is.
	Names map[string]string
	// Allow restricts the result to these display names when non-empty.
	Allow []string
	// Groups maps logins to a team label.
	Groups map[string]string
	// Since drops obligations requested before it. Zero keeps everything.
	Since time.Time
}

// Aggregate groups obligations by reviewer, sorted by descending
// RateWithTarget and then by name.
func Aggregate(obligations []review.Obligation, opts Options) []Reviewer {
	byLogin := make(map[string]*Reviewer)
	var order []string
	for _, o := range obligations {
		if !opts.Since.IsZero() && !o.Request.After(opts.Since) {
			continue
		}
		r, ok := byLogin[o.Reviewer]
		if !ok {
			r = &Reviewer{
				Login: o.Reviewer,
				Name:  displayName(opts.Names, o.Reviewer),
				Group: opts.Groups[o.Reviewer],
			}
			byLogin[o.Reviewer] = r
			order = append(order, o.Reviewer)
		}
		r.Obligations = append(r.Obligations, o)
	}

	reviewers := make([]Reviewer, 0, len(order))
	for _, login := range order {
		r := *byLogin[login]
		if len(opts.Allow) > 0 && !slices.Contains(opts.Allow, r.Name) {
			continue
		}
		reviewers = append(reviewers, r)
	}

	slices.SortStableFunc(reviewers, func(a, b Reviewer) int {
		if c := cmp.Compare(b.RateWithTarget(), a.RateWithTarget()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return reviewers
}

// AtLeast keeps reviewers with at least n obligations.
func AtLeast(reviewers []Reviewer, n int) []Reviewer {
	return slices.DeleteFunc(slices.Clone(reviewers), func(r Reviewer) bool {
		return r.Total() < n
	})
}

// NamedOnly returns the display names of names as an allow-list.
func NamedOnly(names map[string]string) []string {
	allow := make([]string, 0, len(names))
	for _, name := range names {
		allow = append(allow, name)
	}
	slices.Sort(allow)
	return allow
}

func displayName(names map[string]string, login string) string {
	if name, ok := names[login]; ok && name != "" {
		return name
	}
	return login
}
