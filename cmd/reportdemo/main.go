package main

// Renders a sample hiring report in every supported format:
//   go run ./cmd/reportdemo -out ./out

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"interview-backend/report/model"
	"interview-backend/report/render"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for rendered report artifacts")
	flag.Parse()

	doc := sampleDocument()
	if err := doc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "sample document invalid: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	outputs := map[string]string{
		render.FormatMarkdown: "sample_report.md",
		render.FormatText:     "sample_report.txt",
	}
	for format, name := range outputs {
		rendered, err := render.Render(doc, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", format, err)
			os.Exit(1)
		}
		if err := validateRendered(rendered); err != nil {
			fmt.Fprintf(os.Stderr, "render %s validation failed: %v\n", format, err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, rendered, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s\n", path)
	}

	modelPath := filepath.Join(*outDir, "sample_report_model.json")
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode model: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(modelPath, payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", modelPath, err)
		os.Exit(1)
	}
	fmt.Printf("OK: wrote %s\n", modelPath)
}

func sampleDocument() model.Document {
	return model.Document{
		Header: model.Header{
			CandidateName:     "Jordan Lee",
			RoleTitle:         "Senior Backend Engineer",
			Company:           "Acme Logistics",
			GeneratedAt:       "2026-03-14",
			Verdict:           model.VerdictRecommend,
			Confidence:        82,
			OverallScore:      4.12,
			AnsweredQuestions: 7,
			TotalQuestions:    7,
			Duration:          "24m",
		},
		Summary: "Strong technical depth with concrete production evidence. Communication was clear and structured throughout; system design answers showed ownership beyond the immediate task.",
		Strengths: []string{
			"Designed and operated a routing service handling 40k requests per minute.",
			"Explained tradeoffs unprompted, including a failed migration and what it taught the team.",
		},
		DevelopmentAreas: []string{
			"Limited exposure to event-driven architectures beyond a single ingestion pipeline.",
		},
		Scorecard: []model.DimensionScore{
			{Dimension: "relevance", Label: "Relevance", Score: 4.3},
			{Dimension: "depth", Label: "Depth", Score: 4.1},
			{Dimension: "competency", Label: "Competency", Score: 4.2},
			{Dimension: "communication", Label: "Communication", Score: 3.9},
		},
		Questions: []model.QuestionResult{
			{
				Number:   1,
				Category: "background",
				Question: "Walk me through the backend systems you owned at Acme Logistics.",
				Answer:   "I owned the shipment routing service end to end, from the API surface down to the PostgreSQL schema and the SQS-driven recalculation workers.",
				Score:    4.5,
			},
			{
				Number:   2,
				Category: "technical",
				Question: "How did you keep routing latency predictable under load spikes?",
				Answer:   "We precomputed route segments into a Redis cache keyed by region, and shed load by degrading to the previous plan when recomputation queues backed up.",
				Score:    4.25,
				FollowUp: true,
			},
			{
				Number:   3,
				Category: "behavioral",
				Question: "Tell me about a production incident you handled badly and what changed afterwards.",
				Answer:   "Early on I restarted a worker fleet mid-incident and destroyed the evidence. We introduced snapshot-before-restart tooling after the retro.",
				Score:    3.75,
			},
		},
		Findings: []model.Finding{
			{
				Severity: "info",
				Kind:     "signal",
				Title:    "Evidence-backed answers",
				Detail:   "Six of seven answers cited concrete metrics or named systems rather than generalities.",
			},
			{
				Severity: "minor",
				Kind:     "gap",
				Title:    "Kafka exposure is secondhand",
				Detail:   "Event streaming experience comes from adjacent teams; the role's ingestion work would be a ramp-up area.",
			},
		},
		Gap: &model.GapSummary{
			MatchScore:    78,
			MissingSkills: []string{"Kafka", "Terraform modules at scale"},
			Strengths:     []string{"Go services", "PostgreSQL", "AWS"},
			Concerns:      []string{"No prior team-lead experience for a role that mentors two engineers"},
		},
		Transcript: []model.TranscriptLine{
			{Speaker: model.SpeakerInterviewer, Text: "Walk me through the backend systems you owned at Acme Logistics."},
			{Speaker: model.SpeakerCandidate, Text: "I owned the shipment routing service end to end."},
		},
	}
}

func validateRendered(rendered []byte) error {
	text := string(rendered)
	if idx := strings.Index(text, "{{"); idx != -1 {
		return fmt.Errorf("unresolved template tokens near: %s", snippetAround(text, idx, 120))
	}
	if idx := strings.Index(text, "}}"); idx != -1 {
		return fmt.Errorf("unresolved template tokens near: %s", snippetAround(text, idx, 120))
	}
	return nil
}

func snippetAround(text string, pos, maxLen int) string {
	start := pos - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
