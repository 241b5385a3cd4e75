package grc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var uploadDateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

var uploadValidator = validator.New()

// uploadRecord mirrors the CSV columns before conversion.
type uploadRecord struct {
	SpareCode        string `validate:"required,max=30"`
	Division         string `validate:"required,max=20"`
	SpareDescription string `validate:"required,max=40"`
	GRCNumber        *int64 `validate:"required"`
	GRCDate          string `validate:"required"`
	IssueQty         *int   `validate:"required,gte=0"`
	GRCPendingQty    *int   `validate:"required,gte=0"`
}

// ParseUpload reads a GRC CSV. A UTF-8 byte order mark is tolerated, headers
// are matched case-insensitively and text values are upper-cased. The first
// row that fails to convert aborts the parse with an *UploadError.
func ParseUpload(r io.Reader) ([]UploadRow, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyUpload
	}
	if err != nil {
		return nil, fmt.Errorf("grc: read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows []UploadRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("grc: read csv line %d: %w", line, err)
		}
		row, err := convertRecord(columns, record)
		if err != nil {
			return nil, &UploadError{Line: line, SpareCode: field(columns, record, "spare_code"), Reason: err.Error()}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func convertRecord(columns map[string]int, record []string) (UploadRow, error) {
	rec := uploadRecord{
		SpareCode:        strings.ToUpper(field(columns, record, "spare_code")),
		Division:         strings.ToUpper(field(columns, record, "division")),
		SpareDescription: strings.ToUpper(field(columns, record, "spare_description")),
		GRCDate:          field(columns, record, "grc_date"),
	}
	if v := field(columns, record, "grc_number"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return UploadRow{}, fmt.Errorf("grc_number %q is not a number", v)
		}
		rec.GRCNumber = &n
	}
	var err error
	if rec.IssueQty, err = optionalInt(columns, record, "issue_qty"); err != nil {
		return UploadRow{}, err
	}
	if rec.GRCPendingQty, err = optionalInt(columns, record, "grc_pending_qty"); err != nil {
		return UploadRow{}, err
	}
	if err := uploadValidator.Struct(rec); err != nil {
		return UploadRow{}, err
	}
	date, err := parseUploadDate(rec.GRCDate)
	if err != nil {
		return UploadRow{}, err
	}
	return UploadRow{
		SpareCode:        rec.SpareCode,
		Division:         rec.Division,
		SpareDescription: rec.SpareDescription,
		GRCNumber:        *rec.GRCNumber,
		GRCDate:          date,
		IssueQty:         *rec.IssueQty,
		GRCPendingQty:    *rec.GRCPendingQty,
	}, nil
}

func field(columns map[string]int, record []string, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func optionalInt(columns map[string]int, record []string, name string) (*int, error) {
	v := field(columns, record, name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number", name, v)
	}
	return &n, nil
}

func parseUploadDate(value string) (time.Time, error) {
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("grc_date %q is not a date", value)
}
