package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"interview-backend/internal/documents"
	"interview-backend/internal/interviews"
	"interview-backend/internal/reports"
	"interview-backend/internal/usage"
)

type Service struct {
	DocRepo       documents.DocumentsRepo
	InterviewRepo interviews.Repo
	ReportRepo    reports.Repo
	Usage         *usage.Service
}

type ClaimResult struct {
	MigratedDocuments  int `json:"migratedDocuments"`
	MigratedInterviews int `json:"migratedInterviews"`
	MigratedArtifacts  int `json:"migratedArtifacts"`
}

type PurgeResult struct {
	DeletedDocuments  int `json:"deletedDocuments"`
	DeletedInterviews int `json:"deletedInterviews"`
	DeletedArtifacts  int `json:"deletedArtifacts"`
}

func NewService(docRepo documents.DocumentsRepo, interviewRepo interviews.Repo, reportRepo reports.Repo, usageSvc *usage.Service) *Service {
	return &Service{DocRepo: docRepo, InterviewRepo: interviewRepo, ReportRepo: reportRepo, Usage: usageSvc}
}

// ClaimGuest moves everything a guest identity owns to an authenticated
// user. When all repos share a Postgres database the claim runs in one
// transaction.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if db := s.sharedPG(); db != nil {
		return claimWithTx(ctx, db, guestUserID, authedUserID)
	}

	docCount, err := claimVia(ctx, s.DocRepo, "documents", guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	interviewCount, err := claimVia(ctx, s.InterviewRepo, "interviews", guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	artifactCount, err := claimVia(ctx, s.ReportRepo, "report artifacts", guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedDocuments:  docCount,
		MigratedInterviews: interviewCount,
		MigratedArtifacts:  artifactCount,
	}, nil
}

// Purge deletes everything a user owns and resets their usage counter.
func (s *Service) Purge(ctx context.Context, userID string) (PurgeResult, error) {
	if strings.TrimSpace(userID) == "" {
		return PurgeResult{}, errors.New("userID is required")
	}

	if db := s.sharedPG(); db != nil {
		return purgeWithTx(ctx, db, userID)
	}

	result := PurgeResult{}
	var err error
	if result.DeletedDocuments, err = s.DocRepo.DeleteByUser(ctx, userID); err != nil {
		return result, err
	}
	if result.DeletedInterviews, err = s.InterviewRepo.DeleteByUser(ctx, userID); err != nil {
		return result, err
	}
	if result.DeletedArtifacts, err = s.ReportRepo.DeleteByUser(ctx, userID); err != nil {
		return result, err
	}
	if s.Usage != nil {
		if _, err := s.Usage.Reset(ctx, userID); err != nil {
			return result, err
		}
	}
	return result, nil
}

// sharedPG returns the database when every repo is Postgres-backed,
// which is the only case where cross-repo transactions are possible.
func (s *Service) sharedPG() *sql.DB {
	docPG, ok := s.DocRepo.(*documents.PGRepo)
	if !ok || docPG == nil || docPG.DB == nil {
		return nil
	}
	interviewPG, ok := s.InterviewRepo.(*interviews.PGRepo)
	if !ok || interviewPG == nil || interviewPG.DB == nil {
		return nil
	}
	reportPG, ok := s.ReportRepo.(*reports.PGRepo)
	if !ok || reportPG == nil || reportPG.DB == nil {
		return nil
	}
	return docPG.DB
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	interviewRes, err := tx.ExecContext(ctx, `
UPDATE interviews
SET user_id = $1, state = jsonb_set(state, '{user_id}', to_jsonb($1::text))
WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	interviewCount, _ := interviewRes.RowsAffected()

	artifactRes, err := tx.ExecContext(ctx, `UPDATE report_artifacts SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	artifactCount, _ := artifactRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedDocuments:  int(docCount),
		MigratedInterviews: int(interviewCount),
		MigratedArtifacts:  int(artifactCount),
	}, nil
}

func purgeWithTx(ctx context.Context, db *sql.DB, userID string) (PurgeResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return PurgeResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1`, userID)
	if err != nil {
		return PurgeResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	interviewRes, err := tx.ExecContext(ctx, `DELETE FROM interviews WHERE user_id = $1`, userID)
	if err != nil {
		return PurgeResult{}, err
	}
	interviewCount, _ := interviewRes.RowsAffected()

	artifactRes, err := tx.ExecContext(ctx, `DELETE FROM report_artifacts WHERE user_id = $1`, userID)
	if err != nil {
		return PurgeResult{}, err
	}
	artifactCount, _ := artifactRes.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM usage WHERE user_id = $1`, userID); err != nil {
		return PurgeResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return PurgeResult{}, err
	}
	return PurgeResult{
		DeletedDocuments:  int(docCount),
		DeletedInterviews: int(interviewCount),
		DeletedArtifacts:  int(artifactCount),
	}, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimVia(ctx context.Context, repo any, name, guestUserID, authedUserID string) (int, error) {
	claimer, ok := repo.(guestClaimer)
	if !ok {
		return 0, errors.New(name + " repo does not support claim")
	}
	return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
}
