package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/cwa-tools/cwa-inventory/pkg/automate"
)

// ErrUnknownTool is returned by Call for a name that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Inventory is the part of *automate.Client the tools call.
type Inventory interface {
	ListComputers(ctx context.Context, opts automate.ListOptions) ([]automate.Record, error)
	GetComputer(ctx context.Context, id int) (automate.Record, error)
	ListComputerSoftware(ctx context.Context, computerID int, opts automate.ListOptions) ([]automate.Record, error)
	ListClients(ctx context.Context, opts automate.ListOptions) ([]automate.Record, error)
	GetClient(ctx context.Context, id int) (automate.Record, error)
	ListLocations(ctx context.Context, opts automate.ListOptions) ([]automate.Record, error)
	GetLocation(ctx context.Context, id int) (automate.Record, error)
	ListGroups(ctx context.Context, opts automate.ListOptions) ([]automate.Record, error)
	GetGroup(ctx context.Context, id int) (automate.Record, error)
	InventorySummary(ctx context.Context, clientID int) (*automate.InventorySummary, error)
	OfflineComputers(ctx context.Context, q automate.OfflineQuery) (*automate.StalenessReport, error)
	StaleComputers(ctx context.Context, q automate.StaleQuery) (*automate.StalenessReport, error)
	ClientComputers(ctx context.Context, name string) (*automate.ClientComputers, error)
	CheckComputersExist(ctx context.Context, names []string) (*automate.BatchCheckResult, error)
}

var _ Inventory = (*automate.Client)(nil)

// Tool is a named inventory operation.
type Tool struct {
	Name        string
	Description string

	// Params lists the accepted parameter names.
	Params []string

	call func(ctx context.Context, inv Inventory, raw map[string]any) (any, error)
}

// params is implemented by every parameter struct.
type params interface {
	validation.Validatable
}

// define builds a tool whose parameters decode into P.
func define[P params](name, description string, paramNames []string, run func(context.Context, Inventory, P) (any, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Params:      paramNames,
		call: func(ctx context.Context, inv Inventory, raw map[string]any) (any, error) {
			var p P
			if err := decodeParams(raw, &p); err != nil {
				return nil, &automate.Error{Op: name, Err: automate.ErrInvalidArgument, Cause: err}
			}
			if err := p.Validate(); err != nil {
				return nil, &automate.Error{Op: name, Err: automate.ErrInvalidArgument, Cause: err}
			}
			return run(ctx, inv, p)
		},
	}
}

var (
	pageParamNames = []string{"condition", "orderBy", "pageSize", "page"}
	listParamNames = []string{"condition", "orderBy", "pageSize", "page", "fullRecords"}
)

var definitions = []Tool{
	define("list_computers",
		"List computers, one page at a time. Records are compact unless fullRecords is set.",
		listParamNames,
		func(ctx context.Context, inv Inventory, p listParams) (any, error) {
			return inv.ListComputers(ctx, p.options())
		}),
	define("get_computer",
		"Get the full record of one computer.",
		[]string{"id"},
		func(ctx context.Context, inv Inventory, p idParams) (any, error) {
			return inv.GetComputer(ctx, p.ID)
		}),
	define("get_computer_software",
		"List the software installed on a computer.",
		append([]string{"computerId"}, pageParamNames...),
		func(ctx context.Context, inv Inventory, p softwareParams) (any, error) {
			return inv.ListComputerSoftware(ctx, p.ComputerID, p.options())
		}),
	define("list_clients",
		"List clients.",
		pageParamNames,
		func(ctx context.Context, inv Inventory, p pageParams) (any, error) {
			return inv.ListClients(ctx, p.options())
		}),
	define("get_client",
		"Get one client.",
		[]string{"id"},
		func(ctx context.Context, inv Inventory, p idParams) (any, error) {
			return inv.GetClient(ctx, p.ID)
		}),
	define("list_locations",
		"List locations.",
		pageParamNames,
		func(ctx context.Context, inv Inventory, p pageParams) (any, error) {
			return inv.ListLocations(ctx, p.options())
		}),
	define("get_location",
		"Get one location.",
		[]string{"id"},
		func(ctx context.Context, inv Inventory, p idParams) (any, error) {
			return inv.GetLocation(ctx, p.ID)
		}),
	define("list_groups",
		"List groups.",
		pageParamNames,
		func(ctx context.Context, inv Inventory, p pageParams) (any, error) {
			return inv.ListGroups(ctx, p.options())
		}),
	define("get_group",
		"Get one group.",
		[]string{"id"},
		func(ctx context.Context, inv Inventory, p idParams) (any, error) {
			return inv.GetGroup(ctx, p.ID)
		}),
	define("get_inventory_summary",
		"Count computers by client, operating system and online state.",
		[]string{"clientId"},
		func(ctx context.Context, inv Inventory, p summaryParams) (any, error) {
			return inv.InventorySummary(ctx, p.ClientID)
		}),
	define("find_offline_computers",
		"Find offline computers that have not checked in for daysOffline days.",
		[]string{"daysOffline", "clientId", "limit"},
		func(ctx context.Context, inv Inventory, p offlineParams) (any, error) {
			return inv.OfflineComputers(ctx, automate.OfflineQuery{
				DaysOffline: p.DaysOffline,
				ClientID:    p.ClientID,
				Limit:       p.Limit,
			})
		}),
	define("find_stale_computers",
		"Find computers whose agent has not checked in for daysStale days.",
		[]string{"daysStale", "clientId", "computerType", "limit"},
		func(ctx context.Context, inv Inventory, p staleParams) (any, error) {
			return inv.StaleComputers(ctx, automate.StaleQuery{
				DaysStale:    p.DaysStale,
				ClientID:     p.ClientID,
				ComputerType: p.ComputerType,
				Limit:        p.Limit,
			})
		}),
	define("get_client_computers",
		"Resolve a client by name and list its computers.",
		[]string{"clientName"},
		func(ctx context.Context, inv Inventory, p clientNameParams) (any, error) {
			return inv.ClientComputers(ctx, p.ClientName)
		}),
	define("check_computers_exist",
		"Check which of up to 50 computer names exist.",
		[]string{"computerNames"},
		func(ctx context.Context, inv Inventory, p batchParams) (any, error) {
			return inv.CheckComputersExist(ctx, p.ComputerNames)
		}),
}

// Definitions returns every tool sorted by name.
func Definitions() []Tool {
	out := make([]Tool, len(definitions))
	copy(out, definitions)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Registry dispatches tool calls to an Inventory.
type Registry struct {
	inv    Inventory
	logger hclog.Logger
	tools  map[string]Tool
}

// NewRegistry creates a registry backed by inv.
func NewRegistry(inv Inventory, logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	tools := make(map[string]Tool, len(definitions))
	for _, t := range definitions {
		tools[t.Name] = t
	}

	return &Registry{
		inv:    inv,
		logger: logger.Named("tools"),
		tools:  tools,
	}
}

// Call runs the named tool with raw parameters.
func (r *Registry) Call(ctx context.Context, name string, raw map[string]any) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	start := time.Now()
	result, err := t.call(ctx, r.inv, raw)
	if err != nil {
		r.logger.Error("tool call failed",
			"tool", name,
			"error", err,
		)
		return nil, err
	}

	r.logger.Debug("tool call completed",
		"tool", name,
		"duration", time.Since(start),
	)
	return result, nil
}
