package automate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxBatchNames is the largest number of names CheckComputersExist
	// accepts.
	MaxBatchNames = 50

	// batchGroupSize is both the group size and the number of lookups in
	// flight at once.
	batchGroupSize = 10

	lookupPageSize = 10
)

// ComputerLookup is the outcome for one name.
type ComputerLookup struct {
	Name            string     `json:"name"`
	Found           bool       `json:"found"`
	ID              int        `json:"id,omitempty"`
	ComputerName    string     `json:"computerName,omitempty"`
	Status          string     `json:"status,omitempty"`
	LastContact     *time.Time `json:"lastContact,omitempty"`
	ClientName      string     `json:"clientName,omitempty"`
	Type            string     `json:"type,omitempty"`
	OperatingSystem string     `json:"operatingSystem,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// BatchSummary totals a batch check.
type BatchSummary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"notFound"`
	Online   int `json:"online"`
	Offline  int `json:"offline"`
}

// BatchCheckResult is the result of CheckComputersExist.
type BatchCheckResult struct {
	Summary BatchSummary     `json:"summary"`
	Results []ComputerLookup `json:"results"`
}

// CheckComputersExist looks up each name by exact computer name. Names that
// differ only in case are checked once. Lookups run in groups of ten; a
// group starts only after the previous one has finished. A failed lookup is
// reported in that name's entry and does not fail the batch.
func (c *Client) CheckComputersExist(ctx context.Context, names []string) (*BatchCheckResult, error) {
	const op = "CheckComputersExist"

	names = dedupeNames(names)
	if len(names) == 0 {
		return nil, &Error{Op: op, Err: ErrInvalidArgument, Msg: "at least one computer name is required"}
	}
	if len(names) > MaxBatchNames {
		return nil, &Error{
			Op:  op,
			Err: ErrInvalidArgument,
			Msg: fmt.Sprintf("at most %d computer names are allowed, got %d", MaxBatchNames, len(names)),
		}
	}

	runID := uuid.NewString()
	logger := c.logger.With("batch_id", runID)
	logger.Debug("checking computers", "names", len(names))

	// Log in once up front so the first group does not race to
	// authenticate.
	if _, err := c.session.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	results := make([]ComputerLookup, len(names))

	for start := 0; start < len(names); start += batchGroupSize {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Op: op, Err: ErrRequest, Cause: err}
		}

		end := min(start+batchGroupSize, len(names))

		var g errgroup.Group
		g.SetLimit(batchGroupSize)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = c.lookupComputer(ctx, names[i])
				return nil
			})
		}
		_ = g.Wait() // lookups never return an error

		logger.Trace("group complete", "from", start, "to", end)
	}

	var failures *multierror.Error
	out := &BatchCheckResult{Results: results}
	out.Summary.Total = len(results)
	for _, r := range results {
		if r.Error != "" {
			failures = multierror.Append(failures, fmt.Errorf("%s: %s", r.Name, r.Error))
		}
		if !r.Found {
			out.Summary.NotFound++
			continue
		}
		out.Summary.Found++
		if c.isOnline(r.Status) {
			out.Summary.Online++
		} else {
			out.Summary.Offline++
		}
	}

	if failures != nil {
		logger.Warn("some computer lookups failed",
			"failed", len(failures.Errors),
			"error", failures.ErrorOrNil(),
		)
	}

	logger.Info("checked computers",
		"total", out.Summary.Total,
		"found", out.Summary.Found,
		"not_found", out.Summary.NotFound,
	)

	return out, nil
}

// lookupComputer resolves one name. Errors are recorded in the result.
func (c *Client) lookupComputer(ctx context.Context, name string) ComputerLookup {
	result := ComputerLookup{Name: name}

	records, err := c.list(ctx, "LookupComputer", computersPath, ListQuery{
		Condition: Equals("ComputerName", name),
		PageSize:  lookupPageSize,
		Page:      1,
		Fields:    lookupFields.Names(),
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	for _, r := range records {
		v, _ := computerView(r)
		if !strings.EqualFold(v.ComputerName, name) {
			continue
		}

		result.Found = true
		result.ID = v.ID
		result.ComputerName = v.ComputerName
		result.Status = v.Status
		result.ClientName = v.Client.Name
		result.Type = v.Type
		result.OperatingSystem = v.OperatingSystemName
		if v.HasLastContact {
			lc := v.LastContact
			result.LastContact = &lc
		}
		break
	}

	return result
}

// dedupeNames trims names and drops blanks and case-insensitive repeats,
// keeping the first spelling seen.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
