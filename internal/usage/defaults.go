package usage

import "time"

const (
	defaultPlan = "Free"
	// DefaultLimit is the number of interviews a free-plan user can run
	// per period.
	DefaultLimit = 10
	// periodLength is the quota window. Expired windows reset used to
	// zero on next access.
	periodLength = 30 * 24 * time.Hour
)

func defaultUsage(limit int) Usage {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Usage{
		Plan:     defaultPlan,
		Limit:    limit,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(periodLength),
	}
}
