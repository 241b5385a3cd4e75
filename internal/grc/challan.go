package grc

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// ChallanPrefix starts every return challan number.
const ChallanPrefix = "G"

const challanDigits = 5

// NextChallanCode returns the challan number following last. An empty last
// starts the sequence at G00001.
func NextChallanCode(last string) (string, error) {
	seq := 0
	if last = strings.TrimSpace(last); last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, ChallanPrefix))
		if err != nil {
			return "", fmt.Errorf("grc: malformed challan number %q", last)
		}
		seq = n
	}
	return formatChallan(seq + 1), nil
}

// NormalizeChallanNumber expands a short challan reference typed by an
// operator ("42", "G42") into its stored form (G00042). Six character input is
// taken as already complete.
func NormalizeChallanNumber(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || len(raw) == challanDigits+len(ChallanPrefix) {
		return raw
	}
	digits := strings.TrimPrefix(raw, ChallanPrefix)
	if len(digits) < challanDigits {
		digits = strings.Repeat("0", challanDigits-len(digits)) + digits
	}
	return ChallanPrefix + digits
}

func formatChallan(seq int) string {
	return fmt.Sprintf("%s%0*d", ChallanPrefix, challanDigits, seq)
}

// PDFRenderer converts HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

type challanView struct {
	ChallanDocument
	Title     string
	Date      string
	Good      bool
	Defective bool
	All       bool
}

var challanTemplate = template.Must(template.New("challan").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;font-size:11px;margin:24px}
table{width:100%;border-collapse:collapse;margin-top:12px}
th,td{border:1px solid #333;padding:4px;text-align:center}
td.desc{text-align:left}
.head td{border:none;text-align:left;font-weight:bold}
</style></head>
<body>
<h2>{{.Title}}</h2>
<table class="head">
<tr><td>Challan No: {{.ChallanNumber}}</td><td>Date: {{.Date}}</td><td>Division: {{.Division}}</td></tr>
<tr><td>Sent Through: {{.SentThrough}}</td><td></td><td>Docket No: {{.DocketNumber}}</td></tr>
</table>
<table>
<tr><th>GRC No</th><th>GRC Date</th><th>Spare Code</th><th>Description</th>
{{- if .All}}<th>Pending</th><th>Good</th><th>Defective</th>{{else if .Good}}<th>Good Qty</th>{{else}}<th>Defective Qty</th>{{end}}</tr>
{{- range .Rows}}
<tr><td>{{.GRCNumber}}</td><td>{{.GRCDate}}</td><td>{{.SpareCode}}</td><td class="desc">{{.SpareDescription}}</td>
{{- if $.All}}<td>{{.ActualPendingQty}}</td><td>{{.GoodQty}}</td><td>{{.DefectiveQty}}</td>{{else if $.Good}}<td>{{.GoodQty}}</td>{{else}}<td>{{.DefectiveQty}}</td>{{end}}</tr>
{{- end}}
</table>
<p>Prepared by: {{.PreparedBy}}</p>
</body></html>`))

// RenderChallanHTML lays out a challan for the given report type.
func RenderChallanHTML(doc ChallanDocument, reportType string) (string, error) {
	view := challanView{ChallanDocument: doc, Date: doc.Date.Format("02-01-2006")}
	switch reportType {
	case ReportGood:
		view.Good = true
		view.Title = "Return Challan (Good)"
	case ReportDefective:
		view.Defective = true
		view.Title = "Return Challan (Defective)"
	case ReportAll:
		view.All = true
		view.Title = "Return Challan"
	default:
		return "", ErrInvalidReportType
	}
	var buf bytes.Buffer
	if err := challanTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("grc: render challan: %w", err)
	}
	return buf.String(), nil
}
