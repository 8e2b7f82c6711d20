// Package insomnia converts Insomnia exports into stored requests.
package insomnia

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	rhttp "github.com/abdul-hamid-achik/resptag/packages/http"
	"gopkg.in/yaml.v3"
)

// Export represents an Insomnia export file.
type Export struct {
	Type         string     `json:"_type" yaml:"_type"`
	ExportFormat int        `json:"__export_format" yaml:"__export_format"`
	Resources    []Resource `json:"resources" yaml:"resources"`
}

// Resource represents an Insomnia resource (request, folder, environment, etc).
type Resource struct {
	ID             string         `json:"_id" yaml:"_id"`
	Type           string         `json:"_type" yaml:"_type"`
	ParentID       string         `json:"parentId" yaml:"parentId"`
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty"`
	Method         string         `json:"method,omitempty" yaml:"method,omitempty"`
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	Headers        []Header       `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body           *Body          `json:"body,omitempty" yaml:"body,omitempty"`
	Parameters     []Parameter    `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Authentication *Auth          `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	Data           map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Header represents an Insomnia header.
type Header struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Body represents an Insomnia request body.
type Body struct {
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Parameter represents an Insomnia query parameter.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Auth represents Insomnia authentication.
type Auth struct {
	Type     string `json:"type" yaml:"type"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

var variablePattern = regexp.MustCompile(`\{\{\s*(?:_\.)?([\w.-]+)\s*\}\}`)

// ConvertFile converts an Insomnia export file.
func ConvertFile(path string) ([]*rhttp.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Convert(data)
}

// Convert converts an Insomnia export, in JSON or YAML, into requests. Request
// ids are kept so they can be referenced afterwards; folder names prefix the
// request name. Variables found in the environments are substituted, anything
// else stays as written.
func Convert(data []byte) ([]*rhttp.Request, error) {
	export, err := decode(data)
	if err != nil {
		return nil, err
	}

	folders := make(map[string]Resource)
	var resources []Resource
	vars := make(map[string]string)

	for _, res := range export.Resources {
		switch res.Type {
		case "request":
			resources = append(resources, res)
		case "request_group":
			folders[res.ID] = res
		case "environment":
			// base environments come first in exports, sub environments override them
			flattenVars("", res.Data, vars)
		}
	}

	requests := make([]*rhttp.Request, 0, len(resources))
	for _, res := range resources {
		req, err := toRequest(res, folders, vars)
		if err != nil {
			return nil, fmt.Errorf("request %q: %w", res.Name, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func decode(data []byte) (*Export, error) {
	var export Export
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &export); err != nil {
			return nil, fmt.Errorf("failed to parse Insomnia export: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &export); err != nil {
		return nil, fmt.Errorf("failed to parse Insomnia export: %w", err)
	}

	if export.Type != "" && export.Type != "export" {
		return nil, fmt.Errorf("not an Insomnia export (type %q)", export.Type)
	}
	return &export, nil
}

func toRequest(res Resource, folders map[string]Resource, vars map[string]string) (*rhttp.Request, error) {
	expand := func(s string) string { return expandVars(s, vars) }

	method := res.Method
	if method == "" {
		method = "GET"
	}

	rawURL, err := withParameters(expand(res.URL), res.Parameters, expand)
	if err != nil {
		return nil, err
	}

	req := rhttp.NewRequest(method, rawURL)
	req.ID = res.ID
	req.Name = res.Name
	if folder := folderPath(res.ParentID, folders); folder != "" {
		req.Name = folder + "/" + res.Name
	}

	for _, h := range res.Headers {
		if h.Disabled || h.Name == "" {
			continue
		}
		req.SetHeader(h.Name, expand(h.Value))
	}

	if auth := authorization(res.Authentication, expand); auth != "" && req.Header("Authorization") == "" {
		req.SetHeader("Authorization", auth)
	}

	if res.Body != nil {
		req.SetBody(expand(res.Body.Text))
		if res.Body.MimeType != "" && req.Header("Content-Type") == "" {
			req.SetHeader("Content-Type", res.Body.MimeType)
		}
	}

	return req, nil
}

func withParameters(rawURL string, params []Parameter, expand func(string) string) (string, error) {
	var enabled []Parameter
	for _, p := range params {
		if !p.Disabled && p.Name != "" {
			enabled = append(enabled, p)
		}
	}
	if len(enabled) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	q := u.Query()
	for _, p := range enabled {
		q.Add(expand(p.Name), expand(p.Value))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func authorization(auth *Auth, expand func(string) string) string {
	if auth == nil || auth.Disabled {
		return ""
	}

	switch auth.Type {
	case "basic":
		if auth.Username == "" {
			return ""
		}
		creds := expand(auth.Username) + ":" + expand(auth.Password)
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	case "bearer":
		if auth.Token == "" {
			return ""
		}
		prefix := auth.Prefix
		if prefix == "" {
			prefix = "Bearer"
		}
		return prefix + " " + expand(auth.Token)
	}
	return ""
}

func folderPath(parentID string, folders map[string]Resource) string {
	var path []string
	seen := make(map[string]bool)

	for id := parentID; !seen[id]; {
		folder, ok := folders[id]
		if !ok {
			break
		}
		seen[id] = true
		path = append([]string{folder.Name}, path...)
		id = folder.ParentID
	}

	return strings.Join(path, "/")
}

// flattenVars turns nested environment data into dotted names.
func flattenVars(prefix string, data map[string]any, out map[string]string) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch v := data[k].(type) {
		case map[string]any:
			flattenVars(name, v, out)
		case nil:
		default:
			out[name] = fmt.Sprint(v)
		}
	}
}

func expandVars(s string, vars map[string]string) string {
	if len(vars) == 0 {
		return s
	}
	return variablePattern.ReplaceAllStringFunc(s, func(m string) string {
		name := variablePattern.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}
