// Package policy gates booking directives through an OPA policy before
// the orchestrator's own temporal checks. The model's output is never
// authoritative; this is the first half of the validation gate.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine evaluates the booking policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the policy for evaluation.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.booking_policy.result"),
		rego.Module("booking_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// Evaluate checks a directive against the policy. Input keys: function,
// args (object), state. Returns decision ("allow" or "block") and a
// reason for blocks.
func (e *Engine) Evaluate(ctx context.Context, input map[string]interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", "", nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "allow", "", nil
	}
	decision, _ := obj["decision"].(string)
	reason, _ := obj["reason"].(string)
	if decision == "" {
		decision = "allow"
	}
	return decision, reason, nil
}

// DefaultPolicy is the shipped booking policy: only the calendar tool is
// callable, and present fields must not be blank or absurd. Field
// presence and date sanity stay in the orchestrator.
const DefaultPolicy = `
package booking_policy

import rego.v1

deny contains "unknown function" if {
	input.function != "createCalendarEvent"
}

deny contains "attendee name is blank" if {
	is_string(input.args.attendee_name)
	input.args.attendee_name != ""
	trim_space(input.args.attendee_name) == ""
}

deny contains "title too long" if {
	is_string(input.args.title)
	count(input.args.title) > 300
}

default result := {"decision": "allow", "reason": ""}

result := {"decision": "block", "reason": concat("; ", sort(deny))} if {
	count(deny) > 0
}
`
