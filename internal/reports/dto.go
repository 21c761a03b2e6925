package reports

import "time"

// ArtifactResponse is the outward-facing representation of a report
// artifact.
type ArtifactResponse struct {
	ArtifactID  string    `json:"artifactId"`
	InterviewID string    `json:"interviewId"`
	Format      string    `json:"format"`
	FileName    string    `json:"fileName"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toArtifactResponse(artifact Artifact) ArtifactResponse {
	return ArtifactResponse{
		ArtifactID:  artifact.ID,
		InterviewID: artifact.SessionID,
		Format:      artifact.Format,
		FileName:    artifact.FileName,
		SizeBytes:   artifact.SizeBytes,
		CreatedAt:   artifact.CreatedAt,
	}
}
