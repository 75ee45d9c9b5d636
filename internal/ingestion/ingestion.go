// Package ingestion turns the HR department's Excel workbooks — a vacation
// ledger and a three-category employee register — into typed records the
// rest of the system operates on (§4.2). It is the only writer of register
// rows and the only non-workflow writer of usage events.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
)

// RegisterWriter is the subset of internal/registry.Directory Ingestion
// needs. Declared here, rather than importing internal/registry directly,
// to keep the two packages decoupled; *registry.Directory satisfies it
// structurally.
type RegisterWriter interface {
	Upsert(ctx context.Context, category models.EmployeeCategory, entry models.EmployeeDirectoryEntry) error
}

// LedgerImporter is the subset of internal/ledger.Engine Ingestion needs to
// commit a fiscal year's worth of usage events and its granted total.
type LedgerImporter interface {
	ImportYear(ctx context.Context, entry models.EmployeeDirectoryEntry, year int, granted decimal.Decimal, events []models.UsageEvent) error
}

// Ingestor wires the two workbook parsers to their destinations. It is
// stateless and safe to reuse. Neither Ingestor nor the ApiPlane sync
// handlers serialize ingestions: two uploads of the same workbook run
// concurrently, and no Conflict is returned for the overlap.
type Ingestor struct {
	registers RegisterWriter
	ledger    LedgerImporter
	policy    fiscalpolicy.FiscalPolicy
}

func NewIngestor(registers RegisterWriter, ledger LedgerImporter, policy fiscalpolicy.FiscalPolicy) *Ingestor {
	return &Ingestor{registers: registers, ledger: ledger, policy: policy}
}

// IngestRegisterWorkbook parses and, unless preview is true, persists every
// register row across the three category sheets. A preview run produces
// the same Report with no writes, for operators to inspect before
// committing (supplementing §4.2's dry-run need, not covered by the
// reingestion idempotence contract alone).
func (ing *Ingestor) IngestRegisterWorkbook(ctx context.Context, r io.Reader, preview bool) (*Report, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, fmt.Errorf("ingest register workbook: %w", err)
	}
	defer f.Close()

	rows, report, err := ParseRegisterWorkbook(f)
	if err != nil {
		return nil, err
	}
	report.Preview = preview

	if preview {
		return report, nil
	}

	for _, row := range rows {
		if err := ing.registers.Upsert(ctx, row.category, row.entry); err != nil {
			return nil, fmt.Errorf("upsert register row %s: %w", row.entry.EmployeeNum, err)
		}
	}
	return report, nil
}

// IngestVacationWorkbook parses and, unless preview is true, commits every
// employee/fiscal-year bucket of usage events via LedgerImporter.
func (ing *Ingestor) IngestVacationWorkbook(ctx context.Context, r io.Reader, now time.Time, preview bool) (*Report, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, fmt.Errorf("ingest vacation workbook: %w", err)
	}
	defer f.Close()

	currentYear := ing.policy.YearFor(now)
	buckets, report, err := ParseVacationWorkbook(f, ing.policy, currentYear)
	if err != nil {
		return nil, err
	}
	report.Preview = preview

	if preview {
		return report, nil
	}

	for _, bucket := range buckets {
		entry := models.EmployeeDirectoryEntry{EmployeeNum: bucket.EmployeeNum}
		if err := ing.ledger.ImportYear(ctx, entry, bucket.Year, bucket.Granted, bucket.Events); err != nil {
			return nil, fmt.Errorf("import year %s/%d: %w", bucket.EmployeeNum, bucket.Year, err)
		}
	}
	return report, nil
}

// openWorkbook opens an xlsx stream — the bit-exact contract with the
// upstream HR process (§4.2). Cell-level Shift-JIS tolerance is handled by
// decodeCell, not here: OOXML strings are UTF-8 by format, but a cell
// produced by older Japanese spreadsheet tooling occasionally carries raw
// Shift-JIS bytes inside an otherwise well-formed workbook.
func openWorkbook(r io.Reader) (*excelize.File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unreadable workbook: %w", err)
	}
	return f, nil
}
