package automate

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventorySummary(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()
	records := []Record{
		computer(1, "A", "Acme", "Online", "Microsoft Windows 11 Pro", now),
		computer(2, "B", "Acme", "Offline", "Microsoft Windows 10 Pro x64", now),
		computer(3, "C", "Globex", "Online", "Microsoft Windows Server 2019 Standard", now),
		computer(4, "D", "Globex", "Online", "Ubuntu 22.04.1 LTS", now),
		computer(5, "E", "", "Offline", "", now),
	}
	delete(records[4], "Client")

	f := newFakeAutomate(t)
	f.handle(computersPath, pagedRecords(records))
	client := newTestClient(t, f, clock)

	summary, err := client.InventorySummary(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalComputers)
	assert.Equal(t, 3, summary.Online)
	assert.Equal(t, 2, summary.Offline)
	assert.Equal(t, map[string]int{"Acme": 2, "Globex": 2, "Unknown": 1}, summary.ByClient)
	assert.Equal(t, map[string]int{
		"Windows 11":          1,
		"Windows 10":          1,
		"Windows Server 2019": 1,
		"Linux":               1,
		"Unknown":             1,
	}, summary.ByOperatingSystem)
	assert.Equal(t, now, summary.GeneratedAt)

	reqs := f.dataRequests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Query.Get("condition"))
	assert.Equal(t, SummaryFields.Names(), reqs[0].Query["includedFields"])
}

func TestInventorySummary_ClientScope(t *testing.T) {
	f := newFakeAutomate(t)
	f.handle(computersPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ClientId=7", r.URL.Query().Get("condition"))
		writeJSON(w, []Record{})
	})
	client := newTestClient(t, f, newFakeClock())

	summary, err := client.InventorySummary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.ClientID)
	assert.Zero(t, summary.TotalComputers)
	assert.NotNil(t, summary.ByClient)
	assert.NotNil(t, summary.ByOperatingSystem)
}

func TestInventorySummary_NumericStatus(t *testing.T) {
	f := newFakeAutomate(t)
	f.handle(computersPath, pagedRecords([]Record{
		{"Client": map[string]any{"Name": "Acme"}, "Status": float64(1), "OperatingSystemName": "Windows 10"},
		{"Client": map[string]any{"Name": "Acme"}, "Status": float64(0), "OperatingSystemName": "Windows 10"},
		{"Client": map[string]any{"Name": "Acme"}, "Status": float64(1), "OperatingSystemName": "Windows 10"},
	}))
	client := newTestClient(t, f, newFakeClock(), func(c *Config) {
		c.OnlineStatuses = []string{"1"}
	})

	summary, err := client.InventorySummary(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Online)
	assert.Equal(t, 1, summary.Offline)
}

func TestInventorySummary_PropagatesErrors(t *testing.T) {
	f := newFakeAutomate(t)
	f.handle(computersPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	client := newTestClient(t, f, newFakeClock())

	_, err := client.InventorySummary(context.Background(), 0)
	assert.ErrorIs(t, err, ErrRequest)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}
