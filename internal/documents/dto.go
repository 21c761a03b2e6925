package documents

import "time"

// DocumentResponse is what the API returns for a stored document.
// Extracted flips once text extraction has written the derived key.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	Kind       string    `json:"kind"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Extracted  bool      `json:"extracted"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (d Document) response() DocumentResponse {
	return DocumentResponse{
		DocumentID: d.ID,
		Kind:       d.Kind,
		FileName:   d.FileName,
		MimeType:   d.MimeType,
		SizeBytes:  d.SizeBytes,
		Extracted:  d.ExtractedTextKey != "",
		UploadedAt: d.CreatedAt,
	}
}
