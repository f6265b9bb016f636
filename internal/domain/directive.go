package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FunctionCreateCalendarEvent is the only tool the model may invoke.
const FunctionCreateCalendarEvent = "createCalendarEvent"

// Directive is the model's structured booking intent. It is untrusted
// input: the orchestrator re-validates every field before acting on it.
// A well-formed directive with missing fields is a partial capture, not an
// error; its present fields merge into the draft.
type Directive struct {
	Function     string `json:"-"`
	AttendeeName string `json:"attendee_name,omitempty"`
	Date         string `json:"date,omitempty"`
	Time         string `json:"time,omitempty"`
	Title        string `json:"title,omitempty"`
}

// directiveArgsSchema constrains the shape of tool-call arguments. It does
// not mark fields required: presence is the orchestrator's concern, shape
// is the schema's.
const directiveArgsSchema = `{
	"type": "object",
	"properties": {
		"attendee_name": {"type": "string", "maxLength": 200},
		"date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"time": {"type": "string", "pattern": "^([01]\\d|2[0-3]):[0-5]\\d$"},
		"title": {"type": "string", "maxLength": 300}
	}
}`

var directiveSchemaLoader = gojsonschema.NewStringLoader(directiveArgsSchema)

// ParseDirective validates and decodes tool-call arguments. A nil error
// means the directive is structurally sound; it says nothing about field
// presence or temporal sanity.
func ParseDirective(function, args string) (*Directive, error) {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}

	result, err := gojsonschema.Validate(directiveSchemaLoader, gojsonschema.NewStringLoader(args))
	if err != nil {
		return nil, fmt.Errorf("directive arguments are not valid JSON: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("directive arguments failed schema validation: %s", strings.Join(details, "; "))
	}

	var dir Directive
	if err := json.Unmarshal([]byte(args), &dir); err != nil {
		return nil, fmt.Errorf("failed to decode directive arguments: %w", err)
	}
	dir.Function = function
	dir.AttendeeName = strings.TrimSpace(dir.AttendeeName)
	dir.Title = strings.TrimSpace(dir.Title)
	return &dir, nil
}
