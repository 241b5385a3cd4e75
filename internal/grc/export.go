package grc

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "GRC Enquiry"
	exportMaxRows  = 10000
	exportPageSize = 500
)

var exportHeaders = []string{
	"Spare Code", "Description", "GRC No", "GRC Date", "Issue Qty", "GRC Pending Qty",
	"Returning Qty", "Dispute Remark", "Challan No", "Challan Date", "Docket No",
}

// WriteEnquiryXLSX writes enquiry records as a single-sheet workbook.
func WriteEnquiryXLSX(records []EnquiryRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, bold); err != nil {
		return nil, err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			rec.SpareCode, rec.SpareDescription, rec.GRCNumber, rec.GRCDate, rec.IssueQty, rec.GRCPendingQty,
			rec.ReturningQty, rec.DisputeRemark, rec.ChallanNumber, rec.ChallanDate, rec.DocketNumber,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("grc: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportEnquiry pages through every match of filter and returns a workbook.
func (s *Service) ExportEnquiry(ctx context.Context, filter EnquiryFilter) ([]byte, error) {
	filter.Limit = exportPageSize
	filter.Offset = 0
	var all []EnquiryRecord
	for len(all) < exportMaxRows {
		page, err := s.Enquiry(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < filter.Limit || len(all) >= page.TotalRecords {
			break
		}
		filter.Offset += filter.Limit
	}
	return WriteEnquiryXLSX(all)
}
