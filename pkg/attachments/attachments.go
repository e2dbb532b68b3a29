// Package attachments loads file attachments into the context assembler's
// attachments block. Text and source files are read and inlined directly;
// PDF, DOCX, and XLSX are parsed to plain text; images are left as base64
// for vision-capable models to consume directly rather than being OCR'd.
package attachments

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

// Kind classifies how an attachment was loaded.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindError Kind = "error"
)

// Attachment is one loaded file, ready to fold into a prompt.
type Attachment struct {
	Path string
	Kind Kind
	// Text holds extracted/inlined content for KindText.
	Text string
	// Base64 holds the raw file bytes for KindImage.
	Base64 string
	// MimeType is set for KindImage.
	MimeType string
}

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// maxExcelCells bounds how many non-empty cells are read out of a workbook,
// mirroring a spreadsheet-sized document rather than a full data dump.
const maxExcelCells = 1000

// Load reads path and returns it as an Attachment. Any extension other than
// PDF, DOCX, XLSX, or a known image extension is read and inlined as text;
// there is no check for other binary formats. Load returns an error only
// when a file cannot be read or parsed, which LoadAll records as KindError.
func Load(path string) (Attachment, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if mime, ok := imageExtensions[ext]; ok {
		return loadImage(path, mime)
	}

	switch ext {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDocx(path)
	case ".xlsx":
		return loadXlsx(path)
	default:
		return loadText(path)
	}
}

// LoadAll loads every path, collecting per-file errors into the returned
// Attachment's Kind=KindError entries instead of aborting the batch.
func LoadAll(paths []string) []Attachment {
	out := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := Load(p)
		if err != nil {
			out = append(out, Attachment{Path: p, Kind: KindError, Text: err.Error()})
			continue
		}
		out = append(out, a)
	}
	return out
}

func loadText(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Attachment{Path: path, Kind: KindText, Text: string(data)}, nil
}

func loadImage(path, mime string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Attachment{
		Path:     path,
		Kind:     KindImage,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mime,
	}, nil
}

func loadPDF(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to parse PDF %s: %w", path, err)
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			parts = append(parts, fmt.Sprintf("--- page %d (extraction failed: %v) ---", pageNum, err))
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, fmt.Sprintf("--- page %d ---\n%s", pageNum, text))
		}
	}

	return Attachment{Path: path, Kind: KindText, Text: strings.Join(parts, "\n\n")}, nil
}

func loadDocx(path string) (Attachment, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to parse DOCX %s: %w", path, err)
	}
	defer doc.Close()

	return Attachment{Path: path, Kind: KindText, Text: doc.Editable().GetContent()}, nil
}

func loadXlsx(path string) (Attachment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to parse XLSX %s: %w", path, err)
	}
	defer f.Close()

	var parts []string
	cellCount := 0
	for _, sheetName := range f.GetSheetList() {
		var sheet strings.Builder
		fmt.Fprintf(&sheet, "--- sheet: %s ---\n", sheetName)

		rows, err := f.GetRows(sheetName)
		if err != nil {
			fmt.Fprintf(&sheet, "error reading sheet: %v\n", err)
			parts = append(parts, sheet.String())
			continue
		}

	cellLoop:
		for rowIndex, row := range rows {
			for colIndex, cell := range row {
				if cellCount >= maxExcelCells {
					sheet.WriteString("... (truncated)\n")
					break cellLoop
				}
				text := strings.TrimSpace(cell)
				if text == "" {
					continue
				}
				fmt.Fprintf(&sheet, "%s%d: %s\n", columnLabel(colIndex), rowIndex+1, text)
				cellCount++
			}
		}
		parts = append(parts, sheet.String())
	}

	return Attachment{Path: path, Kind: KindText, Text: strings.Join(parts, "\n\n")}, nil
}

// Render folds a batch of loaded attachments into the text block appended
// to a prompt. Images are not inlined as text — callers that talk to a
// vision-capable model attach Base64/MimeType as separate message parts and
// skip KindImage entries here.
func Render(attachments []Attachment) string {
	var out strings.Builder
	for _, a := range attachments {
		switch a.Kind {
		case KindText:
			fmt.Fprintf(&out, "### %s\n%s\n\n", a.Path, a.Text)
		case KindError:
			fmt.Fprintf(&out, "### %s\n(failed to load: %s)\n\n", a.Path, a.Text)
		case KindImage:
			fmt.Fprintf(&out, "### %s\n(image attachment, %s, passed separately to vision-capable models)\n\n", a.Path, a.MimeType)
		}
	}
	return out.String()
}

// columnLabel converts a zero-based column index into a spreadsheet-style
// letter label (0 -> A, 25 -> Z, 26 -> AA).
func columnLabel(index int) string {
	label := ""
	for index >= 0 {
		label = string(rune('A'+index%26)) + label
		index = index/26 - 1
	}
	return label
}
