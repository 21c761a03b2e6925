package main

// Offline harness for the interview setup prompts. Runs the real
// pipeline (profile extraction, gap analysis, question script) against
// the configured provider without starting the API:
//   go run ./cmd/prompttest -resume resume.pdf -jd jd.txt

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"interview-backend/internal/extract"
	"interview-backend/internal/interviews"
	"interview-backend/internal/llm"
	"interview-backend/internal/llm/gemini"
	"interview-backend/internal/llm/groq"
	"interview-backend/internal/shared/config"
)

type scriptOutput struct {
	Candidate  *interviews.CandidateProfile `json:"candidate"`
	Role       *interviews.RoleRequirement  `json:"role"`
	Gap        *interviews.GapAnalysis      `json:"gap"`
	Questions  []interviews.Question        `json:"questions"`
	ModelsUsed []string                     `json:"models_used"`
}

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (pdf, docx, or txt)")
	jdPath := flag.String("jd", "", "Path to job description file (pdf, docx, or txt)")
	outPath := flag.String("out", "", "Path to write the script JSON (optional)")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	if strings.TrimSpace(*jdPath) == "" {
		exitErr("job description path is required")
	}

	ctx := context.Background()

	resumeText, err := readInput(ctx, *resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	jdText, err := readInput(ctx, *jdPath)
	if err != nil {
		exitErr(fmt.Sprintf("read job description: %v", err))
	}

	gateway, err := buildGateway(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}

	repo := interviews.NewMemoryRepo()
	svc := &interviews.Service{Repo: repo, Gateway: gateway}

	now := time.Now().UTC()
	session := interviews.Session{
		ID:        uuid.NewString(),
		UserID:    "prompttest",
		Status:    interviews.StatusSetup,
		CVText:    resumeText,
		JDText:    jdText,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, session); err != nil {
		exitErr(fmt.Sprintf("create session: %v", err))
	}

	if err := svc.ProcessInterview(ctx, session.ID); err != nil {
		if failed, gerr := repo.GetByID(ctx, session.ID); gerr == nil && failed.FailedStage != "" {
			exitErr(fmt.Sprintf("pipeline failed at %s (%s): %s", failed.FailedStage, failed.ErrorCode, failed.ErrorMessage))
		}
		exitErr(fmt.Sprintf("pipeline: %v", err))
	}

	final, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		exitErr(fmt.Sprintf("load session: %v", err))
	}

	pretty, err := json.MarshalIndent(scriptOutput{
		Candidate:  final.Candidate,
		Role:       final.Role,
		Gap:        final.Gap,
		Questions:  final.Questions,
		ModelsUsed: final.ModelsUsed,
	}, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	_, _ = os.Stdout.Write(pretty)
	_, _ = os.Stdout.Write([]byte("\n"))
}

func buildGateway(ctx context.Context, cfg config.Config) (*llm.Gateway, error) {
	policy := llm.DefaultPolicy()
	policy.Models = cfg.Models()

	var clients []llm.Client
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for provider gemini")
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	default:
		if len(cfg.GroqAPIKeys) == 0 {
			return nil, fmt.Errorf("GROQ_API_KEYS is required for provider %s", cfg.LLMProvider)
		}
		for _, key := range cfg.GroqAPIKeys {
			client, err := groq.NewClient(key, cfg.GroqBaseURL)
			if err != nil {
				return nil, err
			}
			clients = append(clients, client)
		}
	}
	return llm.New(clients, policy)
}

func readInput(ctx context.Context, path string) (string, error) {
	mimeType, err := mimeFromExt(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.ExtractTextFromBytes(ctx, data, mimeType, filepath.Base(path))
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	case ".txt", ".md":
		return "text/plain", nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
