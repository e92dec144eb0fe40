package automate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mitchellh/mapstructure"
)

// Record is a single remote record as returned by the API.
type Record map[string]any

// itemKeys are the wrapper keys under which list endpoints may nest their
// items, checked in order.
var itemKeys = []string{"items", "Items", "data", "Data", "results", "Results", "value"}

// recordList is the decoded body of a list endpoint. Servers answer either
// with a bare JSON array or with an object that wraps the array under one of
// itemKeys; both decode to the same slice.
type recordList []Record

func (l *recordList) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = recordList{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}
		*l = records
		return nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		for _, key := range itemKeys {
			raw, ok := wrapper[key]
			if !ok {
				continue
			}
			var records []Record
			if err := json.Unmarshal(raw, &records); err != nil {
				return fmt.Errorf("decoding %q: %w", key, err)
			}
			*l = records
			return nil
		}
		return fmt.Errorf("unrecognized list response: no item key in object")
	}

	return fmt.Errorf("unrecognized list response starting with %q", trimmed[0])
}

// decodeRecords resolves a list response body into records.
func decodeRecords(body []byte) ([]Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []Record{}, nil
	}

	var l recordList
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, err
	}
	if l == nil {
		return []Record{}, nil
	}
	return l, nil
}

// decodeRecord decodes a detail response body.
func decodeRecord(body []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// ClientRef identifies a client, either embedded in a computer record or as
// a client list entry.
type ClientRef struct {
	ID   int    `mapstructure:"Id" json:"id"`
	Name string `mapstructure:"Name" json:"name"`
}

// ComputerView is the typed subset of a computer record used by the
// analytics operations.
type ComputerView struct {
	ID                  int       `mapstructure:"Id"`
	ComputerName        string    `mapstructure:"ComputerName"`
	Client              ClientRef `mapstructure:"Client"`
	Status              string    `mapstructure:"Status"`
	Type                string    `mapstructure:"Type"`
	OperatingSystemName string    `mapstructure:"OperatingSystemName"`
	LastContact         time.Time `mapstructure:"LastContact"`

	// HasLastContact is set when the record carried a parseable
	// LastContact. The zero time is a valid value on servers that write
	// unset dates as 0001-01-01T00:00:00.
	HasLastContact bool `mapstructure:"-"`
}

var timeType = reflect.TypeOf(time.Time{})

// timestampHook parses remote timestamps. The server omits the zone on most
// versions; those are read as UTC.
func timestampHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return parseTimestamp(s)
}

func parseTimestamp(s string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
}

// hasTimestamp reports whether data is a non-empty timestamp string that
// parses.
func hasTimestamp(data any) bool {
	s, ok := data.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	_, err := parseTimestamp(s)
	return err == nil
}

// decodeView decodes r into out, which must be a pointer to a struct with
// mapstructure tags. Numeric fields are accepted as strings and vice versa.
func decodeView(r Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timestampHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(r))
}

// computerView decodes the analytics subset of a computer record.
func computerView(r Record) (ComputerView, error) {
	var v ComputerView
	err := decodeView(r, &v)
	v.HasLastContact = hasTimestamp(r["LastContact"])
	return v, err
}
