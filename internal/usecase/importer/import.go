package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/reservation"
)

const (
	ImportedNote    = "Imported from CSV"
	ImportedService = "Imported"

	ReasonMissingName   = "missing name"
	ReasonInvalidDate   = "invalid date"
	ReasonInvalidTime   = "invalid time"
	ReasonUnreadableRow = "unreadable row"
	ReasonClientWrite   = "client write failed"

	// maxLineBytes bounds a single CSV line.
	maxLineBytes = 1 << 20
)

var (
	nameHeaders = []string{"emri", "name"}
	dateHeaders = []string{"dita", "date"}
	timeHeaders = []string{"ora", "time"}
)

// ======================================================
// RESULT
// ======================================================

// RowError itemizes a row that failed validation. Rows skipped because
// their slot was taken are counted in Skipped but not listed.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Success bool       `json:"success"`
	Created int        `json:"created"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

// ======================================================
// USE CASE
// ======================================================

type Store interface {
	booking.ReservationStore
	booking.ClientStore
}

type ImportCSV struct {
	repo       Store
	reconciler *reservation.ClientReconciler
	normalizer *booking.Normalizer
	cache      cache.Cache
	audit      audit.Sink
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewImportCSV(
	repo Store,
	reconciler *reservation.ClientReconciler,
	normalizer *booking.Normalizer,
	c cache.Cache,
	sink audit.Sink,
	m *metrics.Metrics,
	log *zap.Logger,
) *ImportCSV {
	if c == nil {
		c = cache.Nop{}
	}
	if sink == nil {
		sink = audit.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = booking.NewNormalizer(booking.DayFirst, log)
	}
	return &ImportCSV{
		repo:       repo,
		reconciler: reconciler,
		normalizer: normalizer,
		cache:      c,
		audit:      sink,
		metrics:    m,
		log:        log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute books every row of src in file order. A bad row is recorded and
// skipped; it never stops the batch. Only a missing header or an unreadable
// stream fails the whole import.
//
// Rows are physical lines: a quote never spans a line break, and blank
// lines are ignored. Line numbers in errors count every physical line.
func (uc *ImportCSV) Execute(ctx context.Context, src io.Reader, actor string) (*Result, error) {
	lines := newLineScanner(src)

	// --------------------------------------------------
	// Header
	// --------------------------------------------------
	_, text, ok := lines.next()
	if !ok {
		if err := lines.err(); err != nil {
			return nil, readError(err)
		}
		return nil, httperr.ErrBusiness("csv_empty")
	}
	header, err := splitFields(text)
	if err != nil {
		return nil, httperr.ErrBusinessf("csv_unreadable", "%v", err)
	}

	idxName, idxDate, idxTime := findColumn(header, nameHeaders), findColumn(header, dateHeaders), findColumn(header, timeHeaders)
	if idxName < 0 || idxDate < 0 || idxTime < 0 {
		return nil, httperr.ErrBusinessf("csv_missing_headers", "CSV must include headers for Emri/Name, Dita/Date, Ora/Time")
	}

	// --------------------------------------------------
	// Snapshots
	// --------------------------------------------------
	booked, err := uc.repo.ListReservations(ctx, booking.ReservationFilter{})
	if err != nil {
		return nil, err
	}

	ix, err := uc.reconciler.NewIndex(ctx)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Rows
	// --------------------------------------------------
	res := &Result{Success: true, Errors: []RowError{}}

	for {
		line, text, ok := lines.next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var reason string
		created := false
		row, err := splitFields(text)
		if err != nil {
			reason = ReasonUnreadableRow
		} else {
			reason, created = uc.importRow(ctx, ix, &booked, row, idxName, idxDate, idxTime)
		}

		switch {
		case created:
			res.Created++
			uc.metrics.ImportRow("created")
		case reason == "":
			res.Skipped++
			uc.metrics.ImportRow("conflict")
		default:
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Line: line, Reason: reason})
			uc.metrics.ImportRow("invalid")
		}
	}
	if err := lines.err(); err != nil {
		return nil, readError(err)
	}

	if err := uc.cache.Invalidate(ctx, cache.NamespaceReservations); err != nil {
		uc.log.Warn("cache invalidate failed", zap.String("namespace", cache.NamespaceReservations), zap.Error(err))
	}

	uc.log.Info("csv import finished",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("invalid", len(res.Errors)),
	)
	uc.audit.Dispatch(audit.Event{
		Actor:  actor,
		Action: "csv_imported",
		Entity: "reservation",
		Metadata: map[string]any{
			"created": res.Created,
			"skipped": res.Skipped,
			"invalid": len(res.Errors),
		},
	})

	return res, nil
}

// importRow books one row. It returns ok when a reservation was created, a
// validation reason when the row is invalid, and neither when the slot was
// already taken.
func (uc *ImportCSV) importRow(
	ctx context.Context,
	ix *booking.ClientIndex,
	booked *[]models.Reservation,
	row []string,
	idxName, idxDate, idxTime int,
) (string, bool) {

	name := strings.TrimSpace(column(row, idxName))
	if name == "" {
		return ReasonMissingName, false
	}
	date, ok := uc.normalizer.ParseDate(column(row, idxDate))
	if !ok {
		return ReasonInvalidDate, false
	}
	clock, ok := uc.normalizer.ParseTime(column(row, idxTime))
	if !ok {
		return ReasonInvalidTime, false
	}

	if taken := booking.FindConflict(*booked, date, clock, ""); taken != nil {
		uc.metrics.BookingRejected(string(booking.ReasonSlotTaken), "import")
		return "", false
	}

	// keep a copy so a lost storage race leaves the index as it was
	var before *models.Client
	if cur := ix.Lookup(name); cur != nil {
		cp := *cur
		before = &cp
	}

	clientIn := booking.ClientInput{Name: name, NotesIfNew: ImportedNote}
	client, created := uc.reconciler.Apply(ix, clientIn, date)

	rsv := &models.Reservation{
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientPhone: client.Phone,
		Service:     ImportedService,
		Date:        date,
		Time:        clock,
		Notes:       ImportedNote,
	}

	rollback := func() {
		if before != nil {
			*client = *before
		} else {
			ix.Forget(name)
		}
	}

	if err := uc.repo.CreateReservation(ctx, rsv); err != nil {
		rollback()
		if errors.Is(err, booking.ErrDuplicate) {
			uc.metrics.BookingRejected(string(booking.ReasonSlotTaken), "import")
			return "", false
		}
		uc.log.Error("import row failed", zap.String("date", date), zap.String("time", clock), zap.Error(err))
		return fmt.Sprintf("storage error: %v", err), false
	}

	stored, err := uc.reconciler.Persist(ctx, ix, client, created, clientIn, date)
	if err != nil {
		rollback()
		uc.log.Error("import client write failed", zap.String("name", name), zap.Error(err))
		if derr := uc.repo.DeleteReservation(ctx, rsv.ID); derr != nil {
			uc.log.Error("import reservation rollback failed", zap.String("id", rsv.ID), zap.Error(derr))
		}
		return ReasonClientWrite, false
	}
	if stored.ID != rsv.ClientID {
		rsv.ClientID = stored.ID
		if err := uc.repo.UpdateReservation(ctx, rsv); err != nil {
			uc.log.Error("import reservation relink failed", zap.String("id", rsv.ID), zap.Error(err))
		}
	}

	*booked = append(*booked, *rsv)
	return "", true
}

func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

func column(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// lineScanner yields the non-blank physical lines of a CSV stream with
// their 1-based line numbers.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
}

func newLineScanner(src io.Reader) *lineScanner {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineScanner{sc: sc}
}

func (l *lineScanner) next() (int, string, bool) {
	for l.sc.Scan() {
		// a line cut short by a failed read is not a row
		if l.sc.Err() != nil {
			return 0, "", false
		}
		l.line++
		text := l.sc.Text()
		if strings.TrimSpace(text) != "" {
			return l.line, text, true
		}
	}
	return 0, "", false
}

func (l *lineScanner) err() error {
	return l.sc.Err()
}

// readError keeps business failures from the source, such as csv_too_large,
// and reports anything else as csv_unreadable.
func readError(err error) error {
	if _, ok := httperr.AsBusiness(err); ok {
		return err
	}
	return httperr.ErrBusinessf("csv_unreadable", "%v", err)
}

// splitFields parses one line. An unterminated quote runs to the end of
// the line and no further.
func splitFields(text string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	return r.Read()
}
