package models

import "github.com/shopspring/decimal"

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// LeadStats are the aggregates shown on the analytics dashboard.
type LeadStats struct {
	TotalLeads     int64                `json:"total_leads"`
	ByStatus       map[LeadStatus]int64 `json:"by_status"`
	BySource       map[LeadSource]int64 `json:"by_source"`
	AverageScore   float64              `json:"average_score"`
	ConversionRate float64              `json:"conversion_rate"`
	PipelineValue  decimal.Decimal      `json:"pipeline_value"`
	WonValue       decimal.Decimal      `json:"won_value"`
}
