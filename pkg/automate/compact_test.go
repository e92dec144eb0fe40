package automate

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSet_Compact(t *testing.T) {
	assert.Len(t, CompactFields.Names(), 22)

	full := computer(1, "FIN-WS-001", "Acme", "Online", "Microsoft Windows 11 Pro", newFakeClock().Now())
	compact := CompactFields.Compact(full)

	for k := range compact {
		assert.True(t, CompactFields.Contains(k), "unexpected field %q", k)
	}
	assert.NotContains(t, compact, "BiosManufacturer")
	assert.NotContains(t, compact, "VirusScanner")
	assert.Equal(t, full["ComputerName"], compact["ComputerName"])
	assert.Equal(t, full["Client"], compact["Client"])

	assert.Equal(t, compact, CompactFields.Compact(compact), "compaction is idempotent")
	assert.Contains(t, full, "BiosManufacturer", "the input is not modified")
	assert.Nil(t, CompactFields.Compact(nil))
}

func TestFieldSet_NamesIsACopy(t *testing.T) {
	names := SummaryFields.Names()
	names[0] = "Mutated"
	assert.Equal(t, "Client", SummaryFields.Names()[0])
}

func TestListComputers_Compact(t *testing.T) {
	clock := newFakeClock()
	records := []Record{
		computer(1, "FIN-WS-001", "Acme", "Online", "Microsoft Windows 11 Pro", clock.Now()),
		computer(2, "FIN-WS-002", "Acme", "Offline", "Microsoft Windows 10 Pro", clock.Now()),
	}

	f := newFakeAutomate(t)
	// The server ignores the projection and returns full records.
	f.handle(computersPath, pagedRecords(records))
	client := newTestClient(t, f, clock)
	ctx := context.Background()

	t.Run("compact by default", func(t *testing.T) {
		got, err := client.ListComputers(ctx, ListOptions{Condition: "Status='Online'", OrderBy: "ComputerName"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, r := range got {
			assert.NotContains(t, r, "BiosManufacturer")
			assert.Contains(t, r, "ComputerName")
		}

		reqs := f.dataRequests()
		last := reqs[len(reqs)-1]
		assert.Equal(t, CompactFields.Names(), last.Query["includedFields"])
		assert.Equal(t, "Status='Online'", last.Query.Get("condition"))
		assert.Equal(t, "ComputerName", last.Query.Get("orderBy"))
	})

	t.Run("full records", func(t *testing.T) {
		got, err := client.ListComputers(ctx, ListOptions{FullRecords: true})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Dell Inc.", got[0]["BiosManufacturer"])

		reqs := f.dataRequests()
		assert.Empty(t, reqs[len(reqs)-1].Query["includedFields"])
	})
}

func TestListComputers_WrappedResponse(t *testing.T) {
	f := newFakeAutomate(t)
	f.handle(computersPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"items":      []Record{{"Id": float64(1), "ComputerName": "A", "AssetTag": "x"}},
			"totalCount": 1,
		})
	})
	client := newTestClient(t, f, newFakeClock())

	got, err := client.ListComputers(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Record{"Id": float64(1), "ComputerName": "A"}, got[0])
}
