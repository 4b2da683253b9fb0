package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reikningar/internal/core"
	"reikningar/internal/extract"
	"reikningar/internal/log"
	"reikningar/internal/tabular"
	"reikningar/internal/tabular/xlsx"
)

// IngestResult counts what one document contributed.
type IngestResult struct {
	Document   string `json:"document"`
	Kind       string `json:"kind"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Discarded  int    `json:"discarded"`
	Rejected   int    `json:"rejected"`
	BillID     string `json:"bill_id,omitempty"`
	DateRule   string `json:"date_rule,omitempty"`
	AmountRule string `json:"amount_rule,omitempty"`
}

// Document kinds.
const (
	KindBill      = "bill"
	KindStatement = "statement"
)

// IngestOptions configures an IngestService. Zero values select defaults.
type IngestOptions struct {
	Extractor *extract.Extractor
	PDF       extract.TextExtractor
	HeaderRow int
	Columns   tabular.Columns
	Logger    *log.Logger
}

// IngestService turns documents and manual input into stored records and
// keeps the shared State current after every mutation.
type IngestService struct {
	state     *State
	extractor *extract.Extractor
	pdf       extract.TextExtractor
	headerRow int
	columns   tabular.Columns
	logger    *log.Logger
	events    *log.StructuredLogger
}

func NewIngestService(state *State, opts IngestOptions) *IngestService {
	if opts.Extractor == nil {
		opts.Extractor = extract.NewExtractor()
	}
	if opts.PDF == nil {
		opts.PDF = extract.PDFTextExtractor{}
	}
	if opts.HeaderRow == 0 {
		opts.HeaderRow = tabular.DefaultHeaderRow
	}
	if opts.Columns == (tabular.Columns{}) {
		opts.Columns = tabular.DefaultColumns()
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	logger := opts.Logger.WithComponent(log.ComponentExtract)
	return &IngestService{
		state:     state,
		extractor: opts.Extractor,
		pdf:       opts.PDF,
		headerRow: opts.HeaderRow,
		columns:   opts.Columns,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// State returns the state this service refreshes.
func (s *IngestService) State() *State {
	return s.state
}

// IngestFile reads path and dispatches on its extension.
func (s *IngestService) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return s.IngestDocument(ctx, filepath.Base(path), data)
}

// IngestDocument ingests an uploaded document named name. PDF files are
// bills; xlsx workbooks are bank statements.
func (s *IngestService) IngestDocument(ctx context.Context, name string, data []byte) (IngestResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return s.IngestPDF(ctx, name, data)
	case ".xlsx":
		src := xlsx.New(name, data)
		src.HeaderRow = s.headerRow
		return s.IngestStatement(ctx, name, src)
	default:
		return IngestResult{Document: name}, fmt.Errorf("%w: unsupported document type %q", core.ErrMalformedInput, filepath.Ext(name))
	}
}

// IngestPDF extracts one bill from a PDF. A document where no rule matched
// at all is discarded rather than stored as an all-unknown bill.
func (s *IngestService) IngestPDF(ctx context.Context, name string, data []byte) (IngestResult, error) {
	res := IngestResult{Document: name, Kind: KindBill}

	text, err := s.pdf.ExtractText(ctx, data)
	if err != nil {
		return res, fmt.Errorf("extract text from %s: %w", name, err)
	}

	draft := s.extractor.ExtractBillDraft(text)
	res.DateRule, res.AmountRule = draft.DateRule, draft.AmountRule
	if draft.Empty() {
		res.Discarded = 1
		s.logger.WarnContext(ctx, "Discarding document with no recognisable fields",
			log.FieldDocument, name,
			log.FieldOperation, log.OpIngest,
		)
		return res, nil
	}
	if draft.DateRule == "" || draft.AmountRule == "" || draft.Creditor == core.UnknownCreditor {
		s.logger.InfoContext(ctx, "Partial extraction",
			log.FieldDocument, name,
			log.FieldRule, draft.DateRule,
			"amount_rule", draft.AmountRule,
			log.FieldCreditor, draft.Creditor,
		)
	}

	bill := draft.Bill()
	inserted, err := s.state.Gateway().UpsertBill(ctx, bill)
	if err != nil {
		return res, fmt.Errorf("store bill from %s: %w", name, err)
	}
	res.BillID = bill.ID
	s.count(&res, inserted)
	s.events.LogBillStored(ctx, name, bill.ID, bill.Creditor, bill.Date, billAmount(bill), inserted)

	return res, s.state.Refresh(ctx)
}

// IngestStatement imports every row of a statement sheet. Rows that cannot
// be mapped to a transaction are counted as rejected and skipped; a sheet
// missing a required column fails as a whole.
func (s *IngestService) IngestStatement(ctx context.Context, name string, src tabular.Source) (IngestResult, error) {
	res := IngestResult{Document: name, Kind: KindStatement}

	sheet, err := src.Read(ctx)
	if err != nil {
		return res, fmt.Errorf("read statement %s: %w", name, err)
	}
	rows, err := tabular.StatementRows(sheet, s.columns)
	if err != nil {
		return res, fmt.Errorf("statement %s: %w", name, err)
	}

	gw := s.state.Gateway()
	tlog := s.logger.WithComponent(log.ComponentTabular)
	for i, row := range rows {
		tx, err := extract.TransactionFromRow(row)
		if err != nil {
			res.Rejected++
			tlog.WarnContext(ctx, "Skipping statement row",
				log.FieldDocument, name,
				log.FieldOperation, log.OpImport,
				"row", i,
				log.FieldError, err.Error(),
			)
			continue
		}
		inserted, err := gw.UpsertTransaction(ctx, tx)
		if err != nil {
			return res, fmt.Errorf("store transaction from %s row %d: %w", name, i, err)
		}
		if !inserted {
			tlog.DebugContext(ctx, "Transaction already known", log.FieldTxHash, tx.Hash)
		}
		s.count(&res, inserted)
	}

	tlog.InfoContext(ctx, "Statement imported",
		log.FieldDocument, name,
		log.FieldOperation, log.OpImport,
		log.FieldRows, len(rows),
		log.FieldInserted, res.Inserted,
		"duplicates", res.Duplicates,
		"rejected", res.Rejected,
	)
	return res, s.state.Refresh(ctx)
}

func (s *IngestService) count(res *IngestResult, inserted bool) {
	if inserted {
		res.Inserted++
	} else {
		res.Duplicates++
	}
}

func billAmount(b core.Bill) string {
	if !b.Amount.Valid {
		return ""
	}
	return b.Amount.Decimal.String()
}
