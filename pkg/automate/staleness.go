package automate

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultDaysOffline is the offline horizon when none is given.
	DefaultDaysOffline = 1

	// DefaultDaysStale is the staleness horizon when none is given.
	DefaultDaysStale = 30

	// DefaultResultLimit caps the computers returned by offline and stale
	// detection.
	DefaultResultLimit = 100

	offlineFetchLimit = 1000
	staleFetchLimit   = 2000

	lastContactAscending = "LastContact asc"
)

// Computer types accepted by StaleQuery.
const (
	TypeWorkstation = "Workstation"
	TypeServer      = "Server"
)

// OfflineQuery selects offline computers.
type OfflineQuery struct {
	// DaysOffline is how long a computer must have been silent.
	// Default: 1
	DaysOffline int

	// ClientID restricts the search to one client when non-zero.
	ClientID int

	// Limit caps the number of computers returned.
	// Default: 100
	Limit int
}

// StaleQuery selects computers whose agent looks dead rather than merely
// offline.
type StaleQuery struct {
	// DaysStale is the staleness horizon.
	// Default: 30
	DaysStale int

	ClientID int

	// ComputerType restricts the search to TypeWorkstation or TypeServer
	// when set.
	ComputerType string

	// Limit caps the number of computers returned.
	// Default: 100
	Limit int
}

// StalenessReport is the result of offline or stale detection.
type StalenessReport struct {
	Days   int       `json:"days"`
	Cutoff time.Time `json:"cutoff"`

	// Examined is the number of offline computers returned by the server.
	Examined int `json:"examined"`

	// Matched is the number of computers older than the cutoff, before
	// Limit was applied.
	Matched int `json:"matched"`

	Returned  int      `json:"returned"`
	Computers []Record `json:"computers"`
}

// OfflineComputers returns computers that are offline and have not
// contacted the server for at least q.DaysOffline days, oldest first.
func (c *Client) OfflineComputers(ctx context.Context, q OfflineQuery) (*StalenessReport, error) {
	days := q.DaysOffline
	if days <= 0 {
		days = DefaultDaysOffline
	}

	var client string
	if q.ClientID > 0 {
		client = Equals("ClientId", q.ClientID)
	}

	return c.notReporting(ctx, "OfflineComputers", silenceQuery{
		days:       days,
		condition:  And(c.cfg.OfflineCondition, client),
		fetchLimit: offlineFetchLimit,
		limit:      q.Limit,
	})
}

// StaleComputers returns computers that are offline and have not contacted
// the server for at least q.DaysStale days, oldest first.
func (c *Client) StaleComputers(ctx context.Context, q StaleQuery) (*StalenessReport, error) {
	days := q.DaysStale
	if days <= 0 {
		days = DefaultDaysStale
	}

	var client, computerType string
	if q.ClientID > 0 {
		client = Equals("ClientId", q.ClientID)
	}
	switch q.ComputerType {
	case "":
	case TypeWorkstation, TypeServer:
		computerType = Equals("Type", q.ComputerType)
	default:
		return nil, &Error{
			Op:  "StaleComputers",
			Err: ErrInvalidArgument,
			Msg: fmt.Sprintf("computer type must be %q or %q, got %q", TypeWorkstation, TypeServer, q.ComputerType),
		}
	}

	return c.notReporting(ctx, "StaleComputers", silenceQuery{
		days:       days,
		condition:  And(c.cfg.OfflineCondition, client, computerType),
		fetchLimit: staleFetchLimit,
		limit:      q.Limit,
	})
}

type silenceQuery struct {
	days       int
	condition  string
	fetchLimit int
	limit      int
}

// notReporting filters by status on the server and by last contact on the
// client, because the server rejects date comparisons in conditions.
// Records without a readable LastContact are left out.
func (c *Client) notReporting(ctx context.Context, op string, q silenceQuery) (*StalenessReport, error) {
	limit := q.limit
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	records, err := c.list(ctx, op, computersPath, ListQuery{
		Condition: q.condition,
		PageSize:  q.fetchLimit,
		Page:      1,
		OrderBy:   lastContactAscending,
	})
	if err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-time.Duration(q.days) * 24 * time.Hour)

	matched := make([]Record, 0, len(records))
	for _, r := range records {
		// A decode error elsewhere in the record still leaves LastContact
		// set when it parsed.
		v, _ := computerView(r)
		if !v.HasLastContact {
			continue
		}
		if v.LastContact.Before(cutoff) {
			matched = append(matched, r)
		}
	}

	report := &StalenessReport{
		Days:     q.days,
		Cutoff:   cutoff,
		Examined: len(records),
		Matched:  len(matched),
	}

	if len(matched) > limit {
		matched = matched[:limit]
	}
	report.Computers = CompactFields.CompactAll(matched)
	report.Returned = len(report.Computers)

	c.logger.Info("found computers not reporting",
		"operation", op,
		"days", q.days,
		"examined", report.Examined,
		"matched", report.Matched,
	)

	return report, nil
}
