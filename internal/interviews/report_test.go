package interviews

import (
	"context"
	"errors"
	"testing"
	"time"
)

func scoredAnswer(questionID int, rubric RubricScores) AnswerScore {
	return AnswerScore{
		QuestionID:   questionID,
		QuestionText: "Question?",
		AnswerText:   "Answer.",
		Rubric:       rubric,
		AverageScore: rubric.Average(),
	}
}

func completedSession() Session {
	started := time.Now().UTC().Add(-20 * time.Minute)
	completed := time.Now().UTC()
	return Session{
		Status:    StatusCompleted,
		Questions: stubQuestions(6),
		Candidate: &CandidateProfile{Name: "Dana Okafor"},
		Role:      &RoleRequirement{Title: "Senior Backend Engineer"},
		Gap:       &GapAnalysis{MatchScore: 72, MissingSkills: []string{"AWS"}},
		Scores: []AnswerScore{
			scoredAnswer(1, evenRubric(4)),
			scoredAnswer(2, RubricScores{
				Relevance:     ScoreDetail{Score: 5},
				Depth:         ScoreDetail{Score: 3},
				Competency:    ScoreDetail{Score: 4},
				Communication: ScoreDetail{Score: 2},
			}),
		},
		StartedAt:   &started,
		CompletedAt: &completed,
	}
}

func TestAggregateScores(t *testing.T) {
	scores := completedSession().Scores
	agg := AggregateScores(scores)
	want := map[string]float64{
		"relevance":     4.5,
		"depth":         3.5,
		"competency":    4,
		"communication": 3,
	}
	for dim, mean := range want {
		if agg[dim] != mean {
			t.Errorf("%s = %v, want %v", dim, agg[dim], mean)
		}
	}
}

func TestAggregateScoresEmpty(t *testing.T) {
	agg := AggregateScores(nil)
	if len(agg) != 4 {
		t.Fatalf("aggregate keys = %d, want all four dimensions", len(agg))
	}
	for dim, mean := range agg {
		if mean != 0 {
			t.Errorf("%s = %v, want 0", dim, mean)
		}
	}
}

func TestOverallScore(t *testing.T) {
	scores := completedSession().Scores
	if got := OverallScore(scores); got != 3.75 {
		t.Fatalf("overall = %v, want 3.75", got)
	}
	if got := OverallScore(nil); got != 0 {
		t.Fatalf("empty overall = %v, want 0", got)
	}
}

func TestAnsweredQuestionsCountsDistinct(t *testing.T) {
	scores := []AnswerScore{
		scoredAnswer(1, evenRubric(4)),
		scoredAnswer(1, evenRubric(2)),
		scoredAnswer(2, evenRubric(3)),
	}
	if got := answeredQuestions(scores); got != 2 {
		t.Fatalf("answered = %d, want 2 distinct questions", got)
	}
}

func TestGenerateReport(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)
	session := seedSession(t, svc.Repo, completedSession())

	report, err := svc.GenerateReport(context.Background(), session.UserID, session.ID)
	if err != nil {
		t.Fatalf("generate report: %v", err)
	}

	if report.SessionID != session.ID {
		t.Fatalf("session id = %q, want %q", report.SessionID, session.ID)
	}
	if report.TotalQuestions != 6 || report.AnsweredQuestions != 2 {
		t.Fatalf("coverage = %d/%d, want 2/6", report.AnsweredQuestions, report.TotalQuestions)
	}
	if report.OverallScore != 3.75 {
		t.Fatalf("overall = %v, want 3.75", report.OverallScore)
	}
	if report.AggregateScores["relevance"] != 4.5 {
		t.Fatalf("relevance mean = %v, want 4.5", report.AggregateScores["relevance"])
	}
	if report.Recommendation.Verdict != VerdictConsider {
		t.Fatalf("verdict = %q, want %s", report.Recommendation.Verdict, VerdictConsider)
	}
	if report.DurationSeconds == nil || *report.DurationSeconds <= 0 {
		t.Fatal("duration should be derived from start and completion times")
	}
	if len(report.Insights) == 0 {
		t.Fatal("expected derived insights")
	}
	for i, insight := range report.Insights {
		if insight.Order != i+1 {
			t.Fatalf("insight order = %d at index %d", insight.Order, i)
		}
	}

	calls := gw.schemaCalls()
	if len(calls) != 1 || calls[0] != "hiring_recommendation" {
		t.Fatalf("structured calls = %v, want one recommendation", calls)
	}
}

func TestGenerateReportIsRecomputedDeterministically(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)
	session := seedSession(t, svc.Repo, completedSession())

	first, err := svc.GenerateReport(context.Background(), session.UserID, session.ID)
	if err != nil {
		t.Fatalf("first report: %v", err)
	}
	second, err := svc.GenerateReport(context.Background(), session.UserID, session.ID)
	if err != nil {
		t.Fatalf("second report: %v", err)
	}

	if first.OverallScore != second.OverallScore {
		t.Fatal("overall score must be stable across report calls")
	}
	if len(first.Insights) != len(second.Insights) {
		t.Fatal("insights must be stable across report calls")
	}
	for i := range first.Insights {
		if first.Insights[i].ID != second.Insights[i].ID {
			t.Fatalf("insight %d differs: %q vs %q", i, first.Insights[i].ID, second.Insights[i].ID)
		}
	}
}

func TestGenerateReportRequiresFinished(t *testing.T) {
	svc := newTestService(&stubGateway{})

	for _, status := range []string{StatusSetup, StatusReady} {
		session := seedSession(t, svc.Repo, Session{Status: status})
		if _, err := svc.GenerateReport(context.Background(), session.UserID, session.ID); !errors.Is(err, ErrNotFinished) {
			t.Errorf("%s: got %v, want ErrNotFinished", status, err)
		}
	}

	live := interviewingSession(2)
	session := seedSession(t, svc.Repo, live)
	if _, err := svc.GenerateReport(context.Background(), session.UserID, session.ID); !errors.Is(err, ErrNotFinished) {
		t.Errorf("interviewing: got %v, want ErrNotFinished", err)
	}
}

func TestGenerateReportAfterTimeout(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)
	svc.Timeout = time.Minute

	expired := interviewingSession(6)
	started := time.Now().UTC().Add(-2 * time.Hour)
	expired.StartedAt = &started
	expired.Scores = []AnswerScore{scoredAnswer(1, evenRubric(3))}
	session := seedSession(t, svc.Repo, expired)

	report, err := svc.GenerateReport(context.Background(), session.UserID, session.ID)
	if err != nil {
		t.Fatalf("timed-out session should still report: %v", err)
	}
	if report.AnsweredQuestions != 1 {
		t.Fatalf("answered = %d, want the partial history", report.AnsweredQuestions)
	}

	got, _ := svc.Repo.GetByID(context.Background(), session.ID)
	if got.Status != StatusError || got.ErrorCode != ErrorCodeTimeout {
		t.Fatalf("session = (%q, %q), want the timeout recorded", got.Status, got.ErrorCode)
	}
}

func TestGenerateReportRejectsOtherFailures(t *testing.T) {
	svc := newTestService(&stubGateway{})
	failed := Session{Status: StatusError, ErrorCode: ErrorCodeProviderExhausted}
	session := seedSession(t, svc.Repo, failed)

	if _, err := svc.GenerateReport(context.Background(), session.UserID, session.ID); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("got %v, want ErrNotFinished", err)
	}
}

func TestGenerateReportScopedToOwner(t *testing.T) {
	svc := newTestService(&stubGateway{})
	session := seedSession(t, svc.Repo, completedSession())

	if _, err := svc.GenerateReport(context.Background(), "guest:other", session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
