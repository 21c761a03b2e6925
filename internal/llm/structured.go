package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Schema names a structured-output contract and carries the instruction
// block appended to the system prompt. The decoded target's Validate
// method (when implemented) is the enforcement side of the contract.
type Schema struct {
	Name         string
	Instructions string
}

const structuredPreamble = "Respond with ONLY a single valid JSON object. No markdown fences, no commentary, no keys beyond the schema."

// GenerateStructured runs the cascade like Generate, then strips any code
// fences the provider added, decodes into out and validates. Decode or
// validation failures return a SchemaError and are NOT retried here;
// the retry loop only covers provider-level failures.
func (g *Gateway) GenerateStructured(ctx context.Context, p Prompt, schema Schema, out any) (Result, error) {
	if p.Temperature == 0 {
		p.Temperature = g.policy.StructuredTemperature
	}
	sys := p.System
	if sys != "" {
		sys += "\n\n"
	}
	sys += structuredPreamble
	if strings.TrimSpace(schema.Instructions) != "" {
		sys += "\n\nSchema:\n" + schema.Instructions
	}
	p.System = sys

	res, err := g.Generate(ctx, p)
	if err != nil {
		return res, err
	}

	cleaned := StripFences(res.Text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return res, &SchemaError{Schema: schema.Name, Raw: res.Text, Err: fmt.Errorf("decode: %w", err)}
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return res, &SchemaError{Schema: schema.Name, Raw: res.Text, Err: err}
		}
	}
	return res, nil
}

// StripFences removes Markdown code fences and surrounding chatter,
// keeping the outermost JSON object or array. Providers under structured
// instructions still wrap output in ```json fences often enough that
// every structured response passes through here.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var closer byte = '}'
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}
