package automate

import (
	"context"
	"time"
)

// unknownClient is the bucket for computers without a client name.
const unknownClient = "Unknown"

// InventorySummary aggregates the computer inventory.
type InventorySummary struct {
	ClientID          int            `json:"clientId,omitempty"`
	TotalComputers    int            `json:"totalComputers"`
	Online            int            `json:"online"`
	Offline           int            `json:"offline"`
	ByClient          map[string]int `json:"byClient"`
	ByOperatingSystem map[string]int `json:"byOperatingSystem"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

// InventorySummary counts every computer by client, normalized operating
// system and online state. A clientID of 0 summarizes all clients. The
// result is computed from scratch on every call.
func (c *Client) InventorySummary(ctx context.Context, clientID int) (*InventorySummary, error) {
	const op = "InventorySummary"

	var condition string
	if clientID > 0 {
		condition = Equals("ClientId", clientID)
	}

	records, err := c.fetchAllPages(ctx, op, computersPath, condition, SummaryFields.Names())
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		ClientID:          clientID,
		ByClient:          map[string]int{},
		ByOperatingSystem: map[string]int{},
		GeneratedAt:       c.now(),
	}

	for _, r := range records {
		v, err := computerView(SummaryFields.Compact(r))
		if err != nil {
			c.logger.Warn("unreadable computer record", "operation", op, "error", err)
		}

		client := v.Client.Name
		if client == "" {
			client = unknownClient
		}

		summary.TotalComputers++
		summary.ByClient[client]++
		summary.ByOperatingSystem[NormalizeOS(v.OperatingSystemName)]++
		if c.isOnline(v.Status) {
			summary.Online++
		} else {
			summary.Offline++
		}
	}

	c.logger.Info("computed inventory summary",
		"client_id", clientID,
		"computers", summary.TotalComputers,
		"online", summary.Online,
	)

	return summary, nil
}
