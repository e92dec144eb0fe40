package automate

// FieldSet is a fixed allow-list of record fields. The same set drives the
// server-side projection and the client-side filter so the two never drift.
type FieldSet struct {
	names []string
	index map[string]struct{}
}

func newFieldSet(names ...string) FieldSet {
	index := make(map[string]struct{}, len(names))
	for _, n := range names {
		index[n] = struct{}{}
	}
	return FieldSet{names: names, index: index}
}

var (
	// CompactFields are the computer fields kept in compact mode: identity,
	// client and location, status and contact times, hardware summary and
	// user session details.
	CompactFields = newFieldSet(
		"Id",
		"ComputerName",
		"Client",
		"Location",
		"Status",
		"Type",
		"OperatingSystemName",
		"OperatingSystemVersion",
		"LastContact",
		"RemoteAgentLastContact",
		"LastHeartbeat",
		"LastUserName",
		"LoggedInUsers",
		"LocalIPAddress",
		"GlobalIPAddress",
		"MACAddress",
		"SerialNumber",
		"DomainName",
		"IsVirtualMachine",
		"TotalMemory",
		"FreeMemory",
		"SystemUptime",
	)

	// SummaryFields are the only fields the inventory summary reads.
	SummaryFields = newFieldSet(
		"Client",
		"Status",
		"OperatingSystemName",
	)

	// lookupFields are the fields read by CheckComputersExist.
	lookupFields = newFieldSet(
		"Id",
		"ComputerName",
		"Client",
		"Status",
		"Type",
		"OperatingSystemName",
		"LastContact",
	)
)

// Names returns the field names in declaration order.
func (s FieldSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Contains reports whether name is in the set.
func (s FieldSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Compact returns a copy of r holding only the fields in s. Compacting an
// already compacted record returns an equal record.
func (s FieldSet) Compact(r Record) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(s.names))
	for k, v := range r {
		if s.Contains(k) {
			out[k] = v
		}
	}
	return out
}

// CompactAll compacts every record in records.
func (s FieldSet) CompactAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = s.Compact(r)
	}
	return out
}
