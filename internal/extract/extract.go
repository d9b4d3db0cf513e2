package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Placeholder strings stored as document content when extraction cannot
// produce real text. Uploads still succeed with a metadata-only record.
const (
	PlaceholderUnsupported = "Content extraction not supported for this file type."
	PlaceholderFailed      = "Error extracting content from file."
)

// Text extracts plain text from an uploaded file. It never fails: unsupported
// types and decode errors degrade to a placeholder string so the caller can
// always persist a document record.
func Text(data []byte, fileType string) string {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "pdf":
		text, err := extractPDF(data)
		if err != nil {
			return PlaceholderFailed
		}
		return text
	case "doc", "docx":
		text, err := extractWordDocument(data)
		if err != nil {
			return PlaceholderFailed
		}
		return text
	case "txt":
		return string(data)
	default:
		return PlaceholderUnsupported
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractWordDocument reads word/document.xml out of the OOXML zip container
// and strips the markup. Legacy binary .doc files are not zip archives and
// fail here, degrading to the failure placeholder.
func extractWordDocument(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocumentXML(string(raw)), nil
}

// stripDocumentXML walks the OOXML markup and keeps only the character data
// inside w:t text runs, so indentation between elements never leaks into the
// extracted content. Paragraph and line-break ends become newlines.
func stripDocumentXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	textDepth := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				textDepth++
			}
		case xml.CharData:
			if textDepth > 0 {
				buf.WriteString(string(t))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if textDepth > 0 {
					textDepth--
				}
			case "p", "br":
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
