// Package extract turns uploaded documents into plain text for the
// interview pipeline. PDFs go through github.com/ledongthuc/pdf, DOCX is
// unpacked with archive/zip, and plain text passes through trimmed.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"interview-backend/internal/shared/storage/object"
)

const (
	mimePDF      = "application/pdf"
	mimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeText     = "text/plain"
	mimeMarkdown = "text/markdown"
)

// DerivedTextKey names the stored plain-text companion of an uploaded
// document. Everything that reads or writes extracted text derives the key
// the same way.
func DerivedTextKey(fileKey string) string {
	return fileKey + ".extracted.txt"
}

// ExtractText loads a stored document, extracts its text and persists the
// result under DerivedTextKey so later pipeline stages read the cached copy
// instead of re-parsing.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	text, err := extractStored(ctx, store, fileKey, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	return text, nil
}

func extractStored(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", err
	}
	if err := saveDerived(ctx, store, DerivedTextKey(fileKey), text); err != nil {
		return "", err
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload. The mime
// type is normalized first: octet-stream falls back to the file extension
// and zips are sniffed for OOXML content.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mime := resolveMime(mimeType, fileName, data)
	switch mime {
	case mimePDF:
		return pdfText(data)
	case mimeDOCX:
		return docxText(data)
	case mimeText, mimeMarkdown:
		return strings.TrimSpace(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported mime type: %s", mime)
	}
}

type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

func saveDerived(ctx context.Context, store object.ObjectStore, key, text string) error {
	saver, ok := store.(keySaver)
	if !ok {
		return errors.New("object store does not support SaveWithKey")
	}
	_, err := saver.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text))
	return err
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if zipEntryName(f) != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return flattenDocXML(string(raw)), nil
	}
	return "", errors.New("document.xml file not found")
}

// flattenDocXML walks the WordprocessingML tokens, keeping character data
// and inserting line breaks at paragraph and br boundaries. Malformed XML
// falls back to the raw string rather than a truncated walk.
func flattenDocXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var out strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			out.Write(t)
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "br":
				if out.Len() > 0 {
					out.WriteByte('\n')
				}
			case "tab":
				out.WriteByte('\t')
			}
		}
	}
	return strings.TrimSpace(out.String())
}

// resolveMime settles the effective mime type. Browsers send octet-stream
// for unknown files and zip for OOXML, so both get a second look.
func resolveMime(mimeType, fileName string, data []byte) string {
	clean, _, _ := strings.Cut(mimeType, ";")
	clean = strings.ToLower(strings.TrimSpace(clean))

	switch clean {
	case "", "application/octet-stream":
		if byExt := extMime(fileName); byExt != "" {
			return byExt
		}
		return clean
	case "application/zip":
		if sniffed := sniffOOXML(data); sniffed != "" {
			return sniffed
		}
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".docx":
			return mimeDOCX
		case ".xlsx":
			return mimeXLSX
		case ".pptx":
			return mimePPTX
		}
		return clean
	default:
		return clean
	}
}

func extMime(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".txt":
		return mimeText
	case ".md":
		return mimeMarkdown
	}
	return ""
}

// sniffOOXML inspects zip contents for the marker files that identify
// Office formats.
func sniffOOXML(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch zipEntryName(f) {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return mimeXLSX
		case "ppt/presentation.xml":
			return mimePPTX
		}
	}
	return ""
}

func zipEntryName(f *zip.File) string {
	return strings.ReplaceAll(f.Name, "\\", "/")
}
