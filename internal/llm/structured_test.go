package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type scriptedClient struct {
	replies []string
	calls   int
}

func (s *scriptedClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	if s.calls >= len(s.replies) {
		return "", errors.New("no more scripted replies")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

type profilePayload struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

func (p *profilePayload) Validate() error {
	if len(p.Skills) == 0 {
		return errors.New("skills must not be empty")
	}
	return nil
}

func TestGenerateStructuredDecodesFencedJSON(t *testing.T) {
	stub := &scriptedClient{replies: []string{
		"```json\n{\"name\": \"Ada\", \"skills\": [\"Go\"]}\n```",
	}}
	g := newTestGateway(t, []Client{stub}, testPolicy("m"))

	var out profilePayload
	res, err := g.GenerateStructured(context.Background(), Prompt{User: "extract"}, Schema{Name: "profile"}, &out)
	if err != nil {
		t.Fatalf("GenerateStructured: %v", err)
	}
	if out.Name != "Ada" || len(out.Skills) != 1 || out.Skills[0] != "Go" {
		t.Fatalf("unexpected decode: %+v", out)
	}
	if res.Model != "m" {
		t.Fatalf("expected model m, got %q", res.Model)
	}
}

func TestGenerateStructuredSchemaErrorNotRetried(t *testing.T) {
	stub := &scriptedClient{replies: []string{
		"this is not json at all",
		`{"name": "never reached", "skills": ["x"]}`,
	}}
	g := newTestGateway(t, []Client{stub}, testPolicy("m"))

	var out profilePayload
	_, err := g.GenerateStructured(context.Background(), Prompt{User: "extract"}, Schema{Name: "profile"}, &out)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Schema != "profile" {
		t.Fatalf("expected schema name profile, got %q", se.Schema)
	}
	if stub.calls != 1 {
		t.Fatalf("schema failure must not retry the provider call, got %d calls", stub.calls)
	}
}

func TestGenerateStructuredValidationFailure(t *testing.T) {
	stub := &scriptedClient{replies: []string{`{"name": "Ada", "skills": []}`}}
	g := newTestGateway(t, []Client{stub}, testPolicy("m"))

	var out profilePayload
	_, err := g.GenerateStructured(context.Background(), Prompt{User: "extract"}, Schema{Name: "profile"}, &out)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError for failed validation, got %v", err)
	}
}

func TestGenerateStructuredAppendsSchemaInstructions(t *testing.T) {
	var seenSystem string
	stub := clientFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		seenSystem = req.System
		return `{"name": "Ada", "skills": ["Go"]}`, nil
	})
	g := newTestGateway(t, []Client{stub}, testPolicy("m"))

	var out profilePayload
	if _, err := g.GenerateStructured(context.Background(), Prompt{System: "base", User: "x"},
		Schema{Name: "profile", Instructions: `{"name": "string", "skills": ["string"]}`}, &out); err != nil {
		t.Fatalf("GenerateStructured: %v", err)
	}
	if seenSystem == "base" || seenSystem == "" {
		t.Fatalf("expected schema instructions appended to system prompt, got %q", seenSystem)
	}
}

type clientFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f clientFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare json", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "chatter around object", in: "Here you go:\n{\"a\":1}\nHope that helps!", want: `{"a":1}`},
		{name: "array", in: "```json\n[1,2]\n```", want: `[1,2]`},
		{name: "nested braces", in: `{"a":{"b":2}}`, want: `{"a":{"b":2}}`},
		{name: "no json", in: "nothing here", want: "nothing here"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Fatalf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPromptBuildersFillPlaceholders(t *testing.T) {
	p := ScoreAnswerPrompt("Tell me about Go", "technical", "concurrency depth", "I used goroutines")
	for _, want := range []string{"Tell me about Go", "technical", "concurrency depth", "I used goroutines"} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("score prompt missing %q", want)
		}
	}

	f := FollowUpPrompt("q", "a", "")
	if !strings.Contains(f.User, GenericFollowUpHint) {
		t.Fatalf("expected generic hint in follow-up prompt")
	}

	gpt := GreetingPrompt("", "Backend Engineer", "Introduce yourself")
	if !strings.Contains(gpt.User, "the candidate") {
		t.Fatalf("expected anonymous candidate fallback")
	}
}
