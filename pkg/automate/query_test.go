package automate

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuery_Values(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := ListQuery{}.Values()
		assert.Equal(t, "25", v.Get("pageSize"))
		assert.Equal(t, "1", v.Get("page"))
		assert.NotContains(t, v, "condition")
		assert.NotContains(t, v, "orderBy")
		assert.NotContains(t, v, "includedFields")
	})

	t.Run("all parameters", func(t *testing.T) {
		v := ListQuery{
			Condition: "Status='Offline'",
			PageSize:  500,
			Page:      3,
			OrderBy:   "LastContact asc",
			Fields:    []string{"Id", "ComputerName", "Status"},
		}.Values()

		assert.Equal(t, "500", v.Get("pageSize"))
		assert.Equal(t, "3", v.Get("page"))
		assert.Equal(t, "Status='Offline'", v.Get("condition"))
		assert.Equal(t, "LastContact asc", v.Get("orderBy"))
		assert.Equal(t, []string{"Id", "ComputerName", "Status"}, v["includedFields"],
			"one parameter per projected field")
	})
}

func TestConditionHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"string equality", Equals("Status", "Offline"), "Status='Offline'"},
		{"numeric equality", Equals("ClientId", 5), "ClientId=5"},
		{"quote escaping", Equals("ComputerName", "O'BRIEN-PC"), "ComputerName='O''BRIEN-PC'"},
		{"like", Like("Name", "acme"), "Name like '%acme%'"},
		{"and single", And("Status='Offline'", ""), "Status='Offline'"},
		{"and none", And("", " "), ""},
		{"and many", And("Status='Offline'", "ClientId=5", "Type='Server'"),
			"(Status='Offline') and (ClientId=5) and (Type='Server')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFetchAllPages(t *testing.T) {
	for _, n := range []int{0, 999, 1000, 2500} {
		t.Run(fmt.Sprintf("%d records", n), func(t *testing.T) {
			records := make([]Record, n)
			for i := range records {
				records[i] = Record{"Id": float64(i + 1)}
			}

			f := newFakeAutomate(t)
			f.handle(computersPath, pagedRecords(records))
			client := newTestClient(t, f, newFakeClock())

			got, err := client.fetchAllPages(context.Background(), "test", computersPath, "ClientId=5", []string{"Id"})
			require.NoError(t, err)
			require.Len(t, got, n)
			for i, r := range got {
				require.Equal(t, float64(i+1), r["Id"], "records stay in order")
			}

			// Walking stops at the first short page, so an exact multiple of
			// the page size costs one extra, empty request.
			reqs := f.dataRequests()
			assert.Len(t, reqs, n/fetchAllPageSize+1)
			for i, req := range reqs {
				assert.Equal(t, strconv.Itoa(i+1), req.Query.Get("page"))
				assert.Equal(t, "1000", req.Query.Get("pageSize"))
				assert.Equal(t, "ClientId=5", req.Query.Get("condition"))
				assert.Equal(t, []string{"Id"}, req.Query["includedFields"])
			}
		})
	}
}

func TestFetchAllPages_StopsOnError(t *testing.T) {
	f := newFakeAutomate(t)
	calls := 0
	f.handle(computersPath, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		records := make([]Record, fetchAllPageSize)
		for i := range records {
			records[i] = Record{"Id": float64(i)}
		}
		writeJSON(w, records)
	})
	client := newTestClient(t, f, newFakeClock())

	_, err := client.fetchAllPages(context.Background(), "test", computersPath, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequest)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, 2, calls)
}
