package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cryptotracker/src/models"
	"cryptotracker/src/utils"
	"cryptotracker/src/utils/render"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

var transactionExportHeader = []interface{}{
	"ID", "Date", "Symbol", "Asset", "Type", "Quantity", "Price Per Unit", "Total Value", "Notes",
}

type ReportServiceI interface {
	ExportTransactions(ctx context.Context, userID int, w io.Writer) error
	RenderAllocationChart(ctx context.Context, userID int, w io.Writer) error
	RenderPortfolioPDF(ctx context.Context, userID int, w io.Writer) error
}

type ReportService struct {
	ledger    LedgerServiceI
	valuation ValuationServiceI
	pdf       render.PDFConverterI
	now       func() time.Time
}

type ReportOption func(*ReportService)

func WithPDFConverter(converter render.PDFConverterI) ReportOption {
	return func(s *ReportService) { s.pdf = converter }
}

func NewReportService(ledger LedgerServiceI, valuation ValuationServiceI, opts ...ReportOption) *ReportService {
	s := &ReportService{
		ledger:    ledger,
		valuation: valuation,
		pdf:       render.NewWkhtmltopdfConverter(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportTransactions writes the user's ledger as an XLSX workbook, newest first.
func (s *ReportService) ExportTransactions(ctx context.Context, userID int, w io.Writer) error {
	transactions, err := s.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return err
	}

	f, err := WriteTransactionsWorkbook(transactions)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteTransactionsWorkbook builds a workbook with one row per ledger entry
// on its first sheet.
func WriteTransactionsWorkbook(transactions []models.TransactionWithAsset) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := transactionExportHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, t := range transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		notes := ""
		if t.Notes != nil {
			notes = *t.Notes
		}
		row := []interface{}{
			t.ID,
			t.Date.UTC().Format(utils.ShortDashDateLayout),
			t.AssetSymbol,
			t.AssetName,
			string(t.TransactionType),
			t.Quantity,
			t.PricePerUnit,
			t.TotalValue,
			notes,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "B", "I", 16); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// RenderAllocationChart writes an HTML pie chart of the portfolio's current
// value per asset.
func (s *ReportService) RenderAllocationChart(ctx context.Context, userID int, w io.Writer) error {
	view, err := s.valuation.ValuePortfolio(ctx, userID)
	if err != nil {
		return err
	}
	return renderAllocation(w, HoldingsFrame(view))
}

func renderAllocation(w io.Writer, df dataframe.DataFrame) error {
	return render.RenderPieGraph(w, "Portfolio allocation (USD)", render.SortedSlices(AllocationBySymbol(df)))
}

var holdingsReportHeader = []string{
	"Symbol", "Name", "Quantity", "Avg Cost", "Price", "Value", "Gain/Loss", "Change", "Price Source",
}

// RenderPortfolioPDF prints the portfolio statement followed by the
// allocation chart as a PDF document.
func (s *ReportService) RenderPortfolioPDF(ctx context.Context, userID int, w io.Writer) error {
	view, err := s.valuation.ValuePortfolio(ctx, userID)
	if err != nil {
		return err
	}
	df := HoldingsFrame(view)

	var statement, chart bytes.Buffer
	if err := render.RenderHoldingsReport(&statement, BuildHoldingsReport(view, df, s.now())); err != nil {
		return fmt.Errorf("failed to render statement: %w", err)
	}
	if err := renderAllocation(&chart, df); err != nil {
		return fmt.Errorf("failed to render allocation chart: %w", err)
	}

	pdf, err := s.pdf.Convert(statement.Bytes(), chart.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(pdf)
	return err
}

// BuildHoldingsReport formats the frame rows and the portfolio totals for
// printing.
func BuildHoldingsReport(view *PortfolioView, df dataframe.DataFrame, generatedAt time.Time) render.HoldingsReport {
	report := render.HoldingsReport{
		Title:       "Portfolio statement",
		GeneratedAt: generatedAt,
		Summary: []render.SummaryLine{
			{Label: "Current value", Value: render.FormatMoney(view.Summary.TotalCurrentValue)},
			{Label: "Cost basis", Value: render.FormatMoney(view.Summary.TotalCostBasis)},
			{Label: "Gain/Loss", Value: render.FormatMoney(view.Summary.TotalGainLoss)},
			{Label: "Change", Value: render.FormatPercent(view.Summary.TotalPercentChange)},
			{Label: "Holdings", Value: fmt.Sprint(view.Summary.NumHoldings)},
		},
		Holdings:   render.Table{Headers: holdingsReportHeader},
		Allocation: render.SortedSlices(AllocationBySymbol(df)),
	}
	if view.PricesDegraded {
		report.Notice = "Live prices were unavailable; values use the last cached prices."
	}

	for i := 0; i < df.Nrow(); i++ {
		report.Holdings.Rows = append(report.Holdings.Rows, []string{
			df.Col(FrameSymbol).Elem(i).String(),
			df.Col(FrameName).Elem(i).String(),
			render.FormatQuantity(df.Col(FrameQuantity).Elem(i).Float()),
			render.FormatMoney(df.Col(FrameAverageCost).Elem(i).Float()),
			render.FormatMoney(df.Col(FrameCurrentPrice).Elem(i).Float()),
			render.FormatMoney(df.Col(FrameCurrentValue).Elem(i).Float()),
			render.FormatMoney(df.Col(FrameGainLoss).Elem(i).Float()),
			render.FormatPercent(df.Col(FramePercentChange).Elem(i).Float()),
			df.Col(FramePriceSource).Elem(i).String(),
		})
	}
	return report
}
