package automate

import (
	"context"
	"fmt"
)

// ListOptions are the caller-facing parameters of the list accessors.
type ListOptions struct {
	Condition string
	PageSize  int
	Page      int
	OrderBy   string

	// FullRecords disables compact mode for computer lists. Compact mode
	// requests CompactFields from the server and filters the reply to the
	// same set.
	FullRecords bool
}

func (o ListOptions) query() ListQuery {
	return ListQuery{
		Condition: o.Condition,
		PageSize:  o.PageSize,
		Page:      o.Page,
		OrderBy:   o.OrderBy,
	}
}

// ListComputers returns one page of computers, compacted unless
// opts.FullRecords is set.
func (c *Client) ListComputers(ctx context.Context, opts ListOptions) ([]Record, error) {
	q := opts.query()
	if !opts.FullRecords {
		q.Fields = CompactFields.Names()
	}

	records, err := c.list(ctx, "ListComputers", computersPath, q)
	if err != nil {
		return nil, err
	}

	if !opts.FullRecords {
		records = CompactFields.CompactAll(records)
	}
	return records, nil
}

// GetComputer returns the full record of one computer.
func (c *Client) GetComputer(ctx context.Context, id int) (Record, error) {
	return c.detail(ctx, "GetComputer", computersPath, id)
}

// ListComputerSoftware returns one page of the software installed on a
// computer.
func (c *Client) ListComputerSoftware(ctx context.Context, computerID int, opts ListOptions) ([]Record, error) {
	path := fmt.Sprintf("%s/%d/software", computersPath, computerID)
	return c.list(ctx, "ListComputerSoftware", path, opts.query())
}

// ListClients returns one page of clients.
func (c *Client) ListClients(ctx context.Context, opts ListOptions) ([]Record, error) {
	return c.list(ctx, "ListClients", clientsPath, opts.query())
}

// GetClient returns one client.
func (c *Client) GetClient(ctx context.Context, id int) (Record, error) {
	return c.detail(ctx, "GetClient", clientsPath, id)
}

// ListLocations returns one page of locations.
func (c *Client) ListLocations(ctx context.Context, opts ListOptions) ([]Record, error) {
	return c.list(ctx, "ListLocations", locationsPath, opts.query())
}

// GetLocation returns one location.
func (c *Client) GetLocation(ctx context.Context, id int) (Record, error) {
	return c.detail(ctx, "GetLocation", locationsPath, id)
}

// ListGroups returns one page of groups.
func (c *Client) ListGroups(ctx context.Context, opts ListOptions) ([]Record, error) {
	return c.list(ctx, "ListGroups", groupsPath, opts.query())
}

// GetGroup returns one group.
func (c *Client) GetGroup(ctx context.Context, id int) (Record, error) {
	return c.detail(ctx, "GetGroup", groupsPath, id)
}
