package automate

import (
	"context"
	"fmt"
	"strings"
)

// clientMatchLimit caps the clients returned for a name search.
const clientMatchLimit = 20

// Resolution outcomes of ClientComputers.
const (
	ClientResolved  = "resolved"
	ClientNotFound  = "not_found"
	ClientAmbiguous = "ambiguous"
)

// ClientComputers is the result of resolving a client by name. An ambiguous
// name is a normal result: Matches lists every candidate and Computers is
// empty.
type ClientComputers struct {
	Query     string      `json:"query"`
	Status    string      `json:"status"`
	Client    *ClientRef  `json:"client,omitempty"`
	Matches   []ClientRef `json:"matches,omitempty"`
	Message   string      `json:"message,omitempty"`
	Count     int         `json:"count"`
	Computers []Record    `json:"computers"`
}

// ClientComputers resolves name, a substring of a client name, to a single
// client and returns that client's computers in compact form. It never picks
// between several matching clients.
func (c *Client) ClientComputers(ctx context.Context, name string) (*ClientComputers, error) {
	const op = "ClientComputers"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &Error{Op: op, Err: ErrInvalidArgument, Msg: "client name is required"}
	}

	records, err := c.list(ctx, op, clientsPath, ListQuery{
		Condition: Like("Name", name),
		PageSize:  clientMatchLimit,
		Page:      1,
	})
	if err != nil {
		return nil, err
	}

	result := &ClientComputers{
		Query:     name,
		Computers: []Record{},
	}

	matches := make([]ClientRef, 0, len(records))
	for _, r := range records {
		var ref ClientRef
		if err := decodeView(r, &ref); err != nil {
			return nil, &Error{Op: op, Err: ErrRequest, Cause: err, Msg: "unreadable client record"}
		}
		matches = append(matches, ref)
	}

	switch len(matches) {
	case 0:
		result.Status = ClientNotFound
		result.Message = fmt.Sprintf("no client matches %q", name)
		return result, nil

	case 1:
		// handled below

	default:
		result.Status = ClientAmbiguous
		result.Matches = matches
		result.Message = fmt.Sprintf(
			"%d clients match %q; repeat the request with a more specific name or use a client ID",
			len(matches), name)
		return result, nil
	}

	client := matches[0]
	computers, err := c.fetchAllPages(ctx, op, computersPath, Equals("ClientId", client.ID), CompactFields.Names())
	if err != nil {
		return nil, err
	}

	result.Status = ClientResolved
	result.Client = &client
	result.Computers = CompactFields.CompactAll(computers)
	result.Count = len(result.Computers)

	c.logger.Debug("resolved client",
		"query", name,
		"client_id", client.ID,
		"computers", result.Count,
	)

	return result, nil
}
