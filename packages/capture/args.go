package capture

import (
	"github.com/abdul-hamid-achik/resptag/packages/transform"
)

// ArgType is the kind of input a host renders for an argument.
type ArgType string

const (
	ArgEnum   ArgType = "enum"
	ArgModel  ArgType = "model"
	ArgString ArgType = "string"
)

// Choice is one value of an enum argument.
type Choice struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Value       string `json:"value" yaml:"value"`
}

// Argument describes one input of an extraction for host UIs. Label and
// Hidden depend on the values chosen so far; they are presentation hints
// only and Extract validates its inputs independently.
type Argument struct {
	Name    string
	Type    ArgType
	Model   string
	Choices []Choice
	Label   func(p Params) string
	Hidden  func(p Params) bool
}

// ArgumentView is an Argument resolved against concrete values.
type ArgumentView struct {
	Name    string   `json:"name" yaml:"name"`
	Type    ArgType  `json:"type" yaml:"type"`
	Label   string   `json:"label" yaml:"label"`
	Model   string   `json:"model,omitempty" yaml:"model,omitempty"`
	Hidden  bool     `json:"hidden" yaml:"hidden"`
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

func fixed(label string) func(Params) string {
	return func(Params) string { return label }
}

func never(Params) bool { return false }

var fieldChoices = []Choice{
	{Label: "Body Attribute", Description: "value of response body", Value: string(FieldBody)},
	{Label: "Raw Body", Description: "entire response body", Value: string(FieldRaw)},
	{Label: "Header", Description: "value of response header", Value: string(FieldHeader)},
}

var functionChoices = []Choice{
	{Label: "none", Description: "none of anything", Value: string(transform.None)},
	{Label: "substring", Description: "substring with body", Value: string(transform.SubString)},
}

// Arguments returns the extraction inputs in invocation order.
func Arguments() []Argument {
	return []Argument{
		{
			Name:    "field",
			Type:    ArgEnum,
			Choices: fieldChoices,
			Label:   fixed("Attribute"),
			Hidden:  never,
		},
		{
			Name:   "request",
			Type:   ArgModel,
			Model:  "Request",
			Label:  fixed("Request"),
			Hidden: never,
		},
		{
			Name:   "filter",
			Type:   ArgString,
			Label:  filterLabel,
			Hidden: func(p Params) bool { return p.Field == FieldRaw },
		},
		{
			Name:    "function",
			Type:    ArgEnum,
			Choices: functionChoices,
			Label:   fixed("functionName"),
			Hidden:  never,
		},
		{
			Name:   "params",
			Type:   ArgString,
			Label:  paramsLabel,
			Hidden: func(p Params) bool { return functionOf(p) == transform.None },
		},
	}
}

func filterLabel(p Params) string {
	switch p.Field {
	case FieldBody:
		return "Filter (JSONPath or XPath)"
	case FieldHeader:
		return "Header Name"
	default:
		return "Filter"
	}
}

func paramsLabel(p Params) string {
	switch functionOf(p) {
	case transform.None:
		return "none"
	case transform.SubString:
		return "function params input like:startIndex,endIndex"
	default:
		return "INVALID DATA"
	}
}

func functionOf(p Params) transform.Name {
	if p.Function == "" {
		return transform.None
	}
	return p.Function
}

// Describe resolves every argument against p.
func Describe(p Params) []ArgumentView {
	args := Arguments()
	views := make([]ArgumentView, 0, len(args))
	for _, a := range args {
		views = append(views, ArgumentView{
			Name:    a.Name,
			Type:    a.Type,
			Label:   a.Label(p),
			Model:   a.Model,
			Hidden:  a.Hidden(p),
			Choices: a.Choices,
		})
	}
	return views
}
