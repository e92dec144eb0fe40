package tools

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"

	"github.com/cwa-tools/cwa-inventory/pkg/automate"
)

// pageParams are the paging parameters of the list tools. Integer
// parameters left at zero take the client default here and below.
type pageParams struct {
	Condition string `mapstructure:"condition" json:"condition"`
	OrderBy   string `mapstructure:"orderBy" json:"orderBy"`
	PageSize  int    `mapstructure:"pageSize" json:"pageSize"`
	Page      int    `mapstructure:"page" json:"page"`
}

func (p pageParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PageSize, validation.Min(1), validation.Max(automate.MaxPageSize)),
		validation.Field(&p.Page, validation.Min(1)),
	)
}

func (p pageParams) options() automate.ListOptions {
	return automate.ListOptions{
		Condition: p.Condition,
		PageSize:  p.PageSize,
		Page:      p.Page,
		OrderBy:   p.OrderBy,
	}
}

// listParams adds the projection switch of list_computers.
type listParams struct {
	pageParams  `mapstructure:",squash"`
	FullRecords bool `mapstructure:"fullRecords" json:"fullRecords"`
}

func (p listParams) Validate() error {
	return p.pageParams.Validate()
}

func (p listParams) options() automate.ListOptions {
	opts := p.pageParams.options()
	opts.FullRecords = p.FullRecords
	return opts
}

type idParams struct {
	ID int `mapstructure:"id" json:"id"`
}

func (p idParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, validation.Min(1)),
	)
}

type softwareParams struct {
	ComputerID int `mapstructure:"computerId" json:"computerId"`
	pageParams `mapstructure:",squash"`
}

func (p softwareParams) Validate() error {
	if err := p.pageParams.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.ComputerID, validation.Required, validation.Min(1)),
	)
}

type summaryParams struct {
	ClientID int `mapstructure:"clientId" json:"clientId"`
}

func (p summaryParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ClientID, validation.Min(1)),
	)
}

type offlineParams struct {
	DaysOffline int `mapstructure:"daysOffline" json:"daysOffline"`
	ClientID    int `mapstructure:"clientId" json:"clientId"`
	Limit       int `mapstructure:"limit" json:"limit"`
}

func (p offlineParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DaysOffline, validation.Min(1)),
		validation.Field(&p.ClientID, validation.Min(1)),
		validation.Field(&p.Limit, validation.Min(1), validation.Max(maxLimit)),
	)
}

type staleParams struct {
	DaysStale    int    `mapstructure:"daysStale" json:"daysStale"`
	ClientID     int    `mapstructure:"clientId" json:"clientId"`
	ComputerType string `mapstructure:"computerType" json:"computerType"`
	Limit        int    `mapstructure:"limit" json:"limit"`
}

func (p staleParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DaysStale, validation.Min(1)),
		validation.Field(&p.ClientID, validation.Min(1)),
		validation.Field(&p.ComputerType, validation.In(automate.TypeWorkstation, automate.TypeServer)),
		validation.Field(&p.Limit, validation.Min(1), validation.Max(maxLimit)),
	)
}

type clientNameParams struct {
	ClientName string `mapstructure:"clientName" json:"clientName"`
}

func (p clientNameParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ClientName, validation.Required),
	)
}

type batchParams struct {
	ComputerNames []string `mapstructure:"computerNames" json:"computerNames"`
}

func (p batchParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ComputerNames,
			validation.Required,
			validation.Length(1, automate.MaxBatchNames),
			validation.Each(validation.Required),
		),
	)
}

// maxLimit caps the limit parameter of offline and stale detection.
const maxLimit = 1000

// decodeParams decodes raw into out. Keys are accepted in any common case
// style (page_size, page-size, PageSize); unknown keys are an error.
// Strings are converted to the field type, and a comma separated string
// fills a list.
func decodeParams(raw map[string]any, out any) error {
	normalized := make(map[string]any, len(raw))
	for k, v := range raw {
		normalized[strcase.ToLowerCamel(k)] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(normalized)
}
