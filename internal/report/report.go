package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/clock"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
)

// TypeMonthlyCostToDate is the only report type the collector writes
const TypeMonthlyCostToDate = "MonthlyCostToDate"

// Layouts for the time-derived fields. DateLayout keeps all nine fractional
// digits so report dates sort lexically in time order.
const (
	DateLayout   = "2006-01-02T15:04:05.000000000Z07:00"
	PeriodLayout = "2006-01"
)

// CostReport is one month-to-date cost record. It is written once and never
// updated; report_date is its only distinguishing key.
type CostReport struct {
	ReportDate    string `dynamodbav:"report_date" json:"report_date"`
	CloudProvider string `dynamodbav:"cloud_provider" json:"cloud_provider"`
	ReportType    string `dynamodbav:"report_type" json:"report_type"`
	ReportPeriod  string `dynamodbav:"report_period" json:"report_period"`
	RawData       string `dynamodbav:"raw_data" json:"raw_data"`
	Summary       string `dynamodbav:"summary" json:"summary"`
}

// Sink persists reports
type Sink interface {
	Put(ctx context.Context, r *CostReport) error
}

// New builds a report from a cost summary. Date and period come from the
// same UTC instant so they always agree.
func New(clk clock.Clock, summary *provider.CostSummary) (*CostReport, error) {
	if summary == nil {
		return nil, errors.New("cost summary is required")
	}

	raw := summary.RawData
	if raw == nil {
		raw = map[string]any{}
	}
	rawJSON, err := sonic.ConfigStd.MarshalToString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode raw data: %w", err)
	}

	now := clk.Now().UTC()
	r := &CostReport{
		ReportDate:    now.Format(DateLayout),
		CloudProvider: summary.Provider.ReportName(),
		ReportType:    TypeMonthlyCostToDate,
		ReportPeriod:  now.Format(PeriodLayout),
		RawData:       rawJSON,
		Summary:       summary.Summary,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the fields every stored report must carry
func (r *CostReport) Validate() error {
	if r.ReportDate == "" {
		return errors.New("report_date must not be empty")
	}
	if r.ReportPeriod == "" {
		return errors.New("report_period must not be empty")
	}
	return nil
}
