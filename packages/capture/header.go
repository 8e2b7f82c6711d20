package capture

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/resptag/packages/core/errcode"
	"github.com/abdul-hamid-achik/resptag/packages/http"
)

// MatchHeader returns the value of the first header whose name equals name,
// ignoring case.
func MatchHeader(headers []http.Header, name string) (string, error) {
	if len(headers) == 0 {
		return "", errcode.New(errcode.NoHeaders, "no headers available")
	}

	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, nil
		}
	}

	choices := make([]string, len(headers))
	for i, h := range headers {
		choices[i] = fmt.Sprintf("%q", h.Name)
	}
	return "", errcode.New(errcode.HeaderNotFound,
		"no header with name %q.\nChoices are [\n\t%s\n]", name, strings.Join(choices, ",\n\t"))
}
