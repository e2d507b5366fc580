package feed

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
)

const (
	fieldCompany     = "company_name"
	fieldPhone       = "phone"
	fieldEmail       = "email"
	fieldWebsite     = "website"
	fieldLocation    = "location"
	fieldIndustry    = "industry"
	fieldDescription = "description"
	fieldExternalKey = "external_key"
)

// headerAliases maps lower-cased spreadsheet headers, Swedish and English,
// to record fields.
var headerAliases = map[string]string{
	"company":      fieldCompany,
	"company name": fieldCompany,
	"företag":      fieldCompany,
	"företagsnamn": fieldCompany,
	"name":         fieldCompany,
	"namn":         fieldCompany,

	"phone":         fieldPhone,
	"telefon":       fieldPhone,
	"phone number":  fieldPhone,
	"telefonnummer": fieldPhone,
	"tel":           fieldPhone,

	"email":  fieldEmail,
	"e-post": fieldEmail,
	"e-mail": fieldEmail,
	"mail":   fieldEmail,

	"website": fieldWebsite,
	"web":     fieldWebsite,
	"url":     fieldWebsite,
	"hemsida": fieldWebsite,

	"location": fieldLocation,
	"city":     fieldLocation,
	"stad":     fieldLocation,
	"ort":      fieldLocation,
	"address":  fieldLocation,
	"adress":   fieldLocation,

	"industry": fieldIndustry,
	"bransch":  fieldIndustry,
	"category": fieldIndustry,
	"kategori": fieldIndustry,

	"description":  fieldDescription,
	"beskrivning":  fieldDescription,
	"notes":        fieldDescription,
	"anteckningar": fieldDescription,

	"org nr":              fieldExternalKey,
	"orgnr":               fieldExternalKey,
	"org.nr":              fieldExternalKey,
	"organisationsnummer": fieldExternalKey,
	"organization number": fieldExternalKey,
}

var companyHints = []string{"company", "företag", "name", "namn", "firma"}

var phoneLike = regexp.MustCompile(`\d{8,}`)

// ExcelSource reads every .xlsx workbook in a directory.
type ExcelSource struct {
	Dir    string
	Logger *zap.Logger
}

func NewExcelSource(dir string, logger *zap.Logger) *ExcelSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelSource{Dir: dir, Logger: logger}
}

func (s *ExcelSource) Name() string { return "excel" }

// Load returns the records of all workbooks in Dir, in file name order. A
// workbook that cannot be parsed is logged and skipped.
func (s *ExcelSource) Load(ctx context.Context) ([]entity.SourceRecord, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	var records []entity.SourceRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		recs, err := ReadFile(path)
		if err != nil {
			s.Logger.Warn("skipping unreadable workbook", zap.String("file", path), zap.Error(err))
			continue
		}
		s.Logger.Debug("workbook read", zap.String("file", path), zap.Int("records", len(recs)))
		records = append(records, recs...)
	}
	return records, nil
}

// Files lists the workbooks Load would read. Lock files left behind by
// spreadsheet editors (~$name.xlsx) are ignored. Binary .xls workbooks
// cannot be parsed and are reported with a warning.
func (s *ExcelSource) Files() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read leads directory %s: %w", s.Dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		ext := filepath.Ext(name)
		if strings.EqualFold(ext, ".xls") {
			s.Logger.Warn("skipping legacy .xls workbook, save it as .xlsx to import it", zap.String("file", name))
			continue
		}
		if !strings.EqualFold(ext, ".xlsx") {
			continue
		}
		files = append(files, filepath.Join(s.Dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func ReadFile(path string) ([]entity.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWorkbook(f, filepath.Base(path))
}

// ReadWorkbook parses the first sheet of a workbook. The first row is the
// header. Rows are returned as found; validation happens at ingest.
func ReadWorkbook(r io.Reader, name string) ([]entity.SourceRecord, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], name, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	h := parseHeader(rows[0])
	source := "Excel: " + name

	var records []entity.SourceRecord
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		records = append(records, h.record(row, source))
	}
	return records, nil
}

type header struct {
	names  []string
	fields map[string]int
}

func parseHeader(row []string) header {
	h := header{names: make([]string, len(row)), fields: make(map[string]int)}
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		h.names[i] = name
		if field, ok := headerAliases[name]; ok {
			if _, seen := h.fields[field]; !seen {
				h.fields[field] = i
			}
		}
	}
	return h
}

func (h header) value(row []string, field string) string {
	i, ok := h.fields[field]
	if !ok || i >= len(row) {
		return ""
	}
	return cleanCell(row[i])
}

func (h header) record(row []string, source string) entity.SourceRecord {
	return entity.SourceRecord{
		ExternalKey: h.value(row, fieldExternalKey),
		CompanyName: h.company(row),
		Industry:    h.value(row, fieldIndustry),
		Location:    h.value(row, fieldLocation),
		Website:     h.value(row, fieldWebsite),
		Email:       h.value(row, fieldEmail),
		Phone:       h.phone(row),
		Description: h.value(row, fieldDescription),
		Source:      source,
	}
}

// phone prefers the phone column and otherwise takes the first cell that
// holds a run of at least eight digits.
func (h header) phone(row []string) string {
	if p := entity.CleanPhone(h.value(row, fieldPhone)); len(p) >= entity.MinPhoneLength {
		return p
	}
	for _, cell := range row {
		cell = cleanCell(cell)
		if !phoneLike.MatchString(cell) {
			continue
		}
		if p := entity.CleanPhone(cell); len(p) >= entity.MinPhoneLength {
			return p
		}
	}
	return ""
}

func (h header) company(row []string) string {
	if c := h.value(row, fieldCompany); c != "" {
		return c
	}
	for i, name := range h.names {
		if i >= len(row) || !containsAny(name, companyHints) {
			continue
		}
		if c := cleanCell(row[i]); c != "" {
			return c
		}
	}
	phoneCol, hasPhone := h.fields[fieldPhone]
	for i, cell := range row {
		if hasPhone && i == phoneCol {
			continue
		}
		if c := cleanCell(cell); len([]rune(c)) > 2 && !phoneLike.MatchString(c) {
			return c
		}
	}
	return ""
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}

func blank(row []string) bool {
	for _, cell := range row {
		if cleanCell(cell) != "" {
			return false
		}
	}
	return true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
