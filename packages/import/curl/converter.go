// Package curl converts curl command lines into stored requests.
package curl

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	rhttp "github.com/abdul-hamid-achik/resptag/packages/http"
)

// ParsedCurl represents a parsed curl command.
type ParsedCurl struct {
	Method          string
	URL             string
	Headers         []rhttp.Header
	Body            string
	BasicAuth       string
	Insecure        bool
	FollowRedirects bool
	Name            string
}

var (
	urlPathPattern = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)
	nonWordPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// ParseFile reads a file of curl commands, one per line with backslash
// continuations, and converts each into a request.
func ParseFile(path string) ([]*rhttp.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader converts every curl command read from r. Blank lines and
// lines starting with # are skipped.
func ParseReader(r io.Reader) ([]*rhttp.Request, error) {
	var commands []string
	var current strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			current.WriteString(strings.TrimSuffix(line, "\\"))
			current.WriteString(" ")
			continue
		}

		current.WriteString(line)
		commands = append(commands, current.String())
		current.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	if current.Len() > 0 {
		commands = append(commands, current.String())
	}

	requests := make([]*rhttp.Request, 0, len(commands))
	for i, cmd := range commands {
		parsed, err := Parse(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		requests = append(requests, parsed.ToRequest())
	}
	return requests, nil
}

// Parse parses a single curl command.
func Parse(curlCmd string) (*ParsedCurl, error) {
	parsed := &ParsedCurl{Method: "GET"}

	curlCmd = strings.TrimSpace(curlCmd)
	if curlCmd == "curl" {
		return nil, fmt.Errorf("no URL specified")
	}
	curlCmd = strings.TrimPrefix(curlCmd, "curl ")

	tokens := tokenize(curlCmd)
	explicitMethod := false

	value := func(i int) (string, error) {
		if i+1 < len(tokens) {
			return tokens[i+1], nil
		}
		return "", fmt.Errorf("missing value for %s", tokens[i])
	}

	for i := 0; i < len(tokens); {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Method = strings.ToUpper(v)
			explicitMethod = true
			i += 2

		case "-H", "--header":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			if h, err := rhttp.ParseHeader(v); err == nil {
				parsed.setHeader(h.Name, h.Value)
			}
			i += 2

		case "-d", "--data", "--data-raw", "--data-binary":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Body = v
			if !explicitMethod {
				parsed.Method = "POST"
			}
			i += 2

		case "-u", "--user":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.BasicAuth = v
			i += 2

		case "-k", "--insecure":
			parsed.Insecure = true
			i++

		case "-L", "--location":
			parsed.FollowRedirects = true
			i++

		case "-A", "--user-agent", "-e", "--referer", "-b", "--cookie":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.setHeader(shortcutHeaders[token], v)
			i += 2

		default:
			switch {
			case strings.HasPrefix(token, "-"):
				// unknown flag, skip its value if it has one
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i += 2
				} else {
					i++
				}
			default:
				if parsed.URL == "" && isURL(token) {
					parsed.URL = token
				}
				i++
			}
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	parsed.Name = generateName(parsed.URL, parsed.Method)
	return parsed, nil
}

var shortcutHeaders = map[string]string{
	"-A":           "User-Agent",
	"--user-agent": "User-Agent",
	"-e":           "Referer",
	"--referer":    "Referer",
	"-b":           "Cookie",
	"--cookie":     "Cookie",
}

func (p *ParsedCurl) setHeader(name, value string) {
	for i, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			p.Headers[i].Value = value
			return
		}
	}
	p.Headers = append(p.Headers, rhttp.Header{Name: name, Value: value})
}

// ToRequest builds a request from the parsed command. Basic credentials
// become an Authorization header unless one was given explicitly.
func (p *ParsedCurl) ToRequest() *rhttp.Request {
	req := rhttp.NewRequest(p.Method, p.URL)
	req.Name = p.Name
	for _, h := range p.Headers {
		req.SetHeader(h.Name, h.Value)
	}
	if p.BasicAuth != "" && req.Header("Authorization") == "" {
		req.SetHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(p.BasicAuth)))
	}
	req.SetBody(p.Body)
	return req
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// generateName builds "METHOD_path" style names, e.g. get_users_list.
func generateName(url, method string) string {
	path := "/"
	if matches := urlPathPattern.FindStringSubmatch(url); len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}

	return strings.ToLower(method) + "_" + sanitizeName(path)
}

func sanitizeName(name string) string {
	return strings.Trim(nonWordPattern.ReplaceAllString(name, "_"), "_")
}
