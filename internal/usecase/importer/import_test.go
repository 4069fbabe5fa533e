package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/infra/repository"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/reservation"
)

func newImporter(t *testing.T) (*ImportCSV, *repository.BookingMemoryRepository) {
	t.Helper()

	repo := repository.NewBookingMemoryRepository()
	c := cache.NewMemory()
	rec := reservation.NewClientReconciler(repo, c, zap.NewNop())

	uc := NewImportCSV(repo, rec, booking.NewNormalizer(booking.DayFirst, nil), c, nil, metrics.New("test"), zap.NewNop())
	return uc, repo
}

func TestImport_CreatesReservationsAndClients(t *testing.T) {
	ctx := context.Background()
	uc, repo := newImporter(t)

	csv := "Emri,Dita,Ora\n" +
		"John Smith,15/03/2024,10:00\n" +
		"john smith,16/03/2024,14:30\n" +
		"Ana,15/03/2024,11:00\n"

	res, err := uc.Execute(ctx, strings.NewReader(csv), "admin")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 0, res.Skipped)
	assert.Empty(t, res.Errors)

	all, err := repo.ListReservations(ctx, booking.ReservationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	clients, err := repo.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)

	john := clients[0]
	assert.Equal(t, "John Smith", john.Name)
	assert.Equal(t, 2, john.TotalAppointments)
	assert.Equal(t, "2024-03-16", john.LastVisit)
	assert.Equal(t, ImportedNote, john.Notes)

	for _, r := range all {
		assert.Equal(t, ImportedService, r.Service)
		assert.Equal(t, ImportedNote, r.Notes)
		if r.Date == "2024-03-15" && r.Time == "10:00 AM" {
			assert.Equal(t, john.ID, r.ClientID)
			assert.Equal(t, "John Smith", r.ClientName)
		}
	}
}

func TestImport_RowErrorsAndConflicts(t *testing.T) {
	ctx := context.Background()
	uc, repo := newImporter(t)

	require.NoError(t, repo.CreateReservation(ctx, &models.Reservation{
		ClientName: "Existing", Date: "2024-03-15", Time: "10:00 AM",
	}))

	csv := "name,date,time\n" +
		",15/03/2024,10:00\n" +
		"Bob,not a date,10:00\n" +
		"Bob,15/03/2024,25:00\n" +
		"Bob,15/03/2024,10:00\n" +
		"Bob,15/03/2024,11:00\n" +
		"Eve,15/03/2024,11:00\n"

	res, err := uc.Execute(ctx, strings.NewReader(csv), "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 5, res.Skipped)
	assert.Equal(t, []RowError{
		{Line: 2, Reason: ReasonMissingName},
		{Line: 3, Reason: ReasonInvalidDate},
		{Line: 4, Reason: ReasonInvalidTime},
	}, res.Errors)

	clients, err := repo.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Bob", clients[0].Name)
	assert.Equal(t, 1, clients[0].TotalAppointments)
}

func TestImport_HeaderHandling(t *testing.T) {
	ctx := context.Background()

	t.Run("bom and spacing", func(t *testing.T) {
		uc, _ := newImporter(t)
		res, err := uc.Execute(ctx, strings.NewReader("\ufeffEMRI, Dita , ORA\nAna,2024-03-15,9\n"), "admin")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)
	})

	t.Run("missing column", func(t *testing.T) {
		uc, _ := newImporter(t)
		_, err := uc.Execute(ctx, strings.NewReader("name,date\nAna,2024-03-15\n"), "admin")
		assert.True(t, httperr.IsBusiness(err, "csv_missing_headers"))
	})

	t.Run("empty", func(t *testing.T) {
		uc, _ := newImporter(t)
		_, err := uc.Execute(ctx, strings.NewReader(""), "admin")
		assert.True(t, httperr.IsBusiness(err, "csv_empty"))
	})

	t.Run("short rows", func(t *testing.T) {
		uc, _ := newImporter(t)
		res, err := uc.Execute(ctx, strings.NewReader("name,date,time\nAna,2024-03-15\n"), "admin")
		require.NoError(t, err)
		assert.Equal(t, []RowError{{Line: 2, Reason: ReasonInvalidTime}}, res.Errors)
	})
}

func TestImport_QuotesAndBlankLinesStayOnTheirLine(t *testing.T) {
	ctx := context.Background()

	t.Run("unterminated quote", func(t *testing.T) {
		uc, repo := newImporter(t)
		csv := "name,date,time\n" +
			"\"Ana,04/03/2024,10:00\n" +
			"Ben,04/03/2024,11:00\n" +
			"Cat,04/03/2024,12:00\n"

		res, err := uc.Execute(ctx, strings.NewReader(csv), "admin")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.Equal(t, []RowError{{Line: 2, Reason: ReasonInvalidDate}}, res.Errors)

		all, err := repo.ListReservations(ctx, booking.ReservationFilter{Date: "2024-03-04"})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("quoted comma", func(t *testing.T) {
		uc, repo := newImporter(t)
		res, err := uc.Execute(ctx, strings.NewReader("name,date,time\n\"Smith, John\",04/03/2024,10:00\n"), "admin")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)

		clients, err := repo.ListClients(ctx)
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, "Smith, John", clients[0].Name)
	})

	t.Run("blank lines", func(t *testing.T) {
		uc, _ := newImporter(t)
		csv := "\n  \nname,date,time\r\n" +
			"Ana,04/03/2024,10:00\r\n" +
			"   \r\n" +
			"\t\n" +
			"Ben,04/03/2024,11:00\r\n" +
			",04/03/2024,12:00\n"

		res, err := uc.Execute(ctx, strings.NewReader(csv), "admin")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, []RowError{{Line: 8, Reason: ReasonMissingName}}, res.Errors)
	})

	t.Run("only blank lines", func(t *testing.T) {
		uc, _ := newImporter(t)
		_, err := uc.Execute(ctx, strings.NewReader("\n   \n"), "admin")
		assert.True(t, httperr.IsBusiness(err, "csv_empty"))
	})
}

type failingClients struct {
	*repository.BookingMemoryRepository
}

func (failingClients) CreateClient(context.Context, *models.Client) error {
	return errors.New("clients unavailable")
}

func TestImport_ClientWriteFailureUndoesRow(t *testing.T) {
	ctx := context.Background()

	repo := repository.NewBookingMemoryRepository()
	rec := reservation.NewClientReconciler(failingClients{repo}, nil, nil)
	uc := NewImportCSV(repo, rec, nil, nil, nil, nil, nil)

	res, err := uc.Execute(ctx, strings.NewReader("name,date,time\nAna,04/03/2024,10:00\nAna,05/03/2024,10:00\n"), "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, []RowError{
		{Line: 2, Reason: ReasonClientWrite},
		{Line: 3, Reason: ReasonClientWrite},
	}, res.Errors)

	all, err := repo.ListReservations(ctx, booking.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLimitReader(t *testing.T) {
	data, err := io.ReadAll(LimitReader(strings.NewReader("abcdef"), 6))
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))

	_, err = io.ReadAll(LimitReader(strings.NewReader("abcdefg"), 6))
	assert.True(t, httperr.IsBusiness(err, "csv_too_large"))

	uc, repo := newImporter(t)
	_, err = uc.Execute(context.Background(), LimitReader(strings.NewReader("name,date,time\n"), 4), "admin")
	assert.True(t, httperr.IsBusiness(err, "csv_too_large"))
	all, _ := repo.ListReservations(context.Background(), booking.ReservationFilter{})
	assert.Empty(t, all)
}

// ======================================================
// SOURCES
// ======================================================

type fakeS3 struct {
	body  string
	err   error
	calls int
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	var buf bytes.Buffer
	_, err := io.Copy(&buf, rc)
	require.NoError(t, err)
	return buf.String()
}

func TestOpenFirst_PrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Oraret.csv")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))

	s3c := &fakeS3{body: "from s3"}
	rc, name, err := OpenFirst(context.Background(), nil,
		FileSource{Path: path},
		S3Source{Client: s3c, Bucket: "b", Key: "k"},
	)
	require.NoError(t, err)
	assert.Equal(t, "file:"+path, name)
	assert.Equal(t, "from file", readAll(t, rc))
	assert.Zero(t, s3c.calls)
}

func TestOpenFirst_FallsBackToS3(t *testing.T) {
	s3c := &fakeS3{body: "from s3"}
	rc, name, err := OpenFirst(context.Background(), nil,
		FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")},
		S3Source{Client: s3c, Bucket: "b", Key: "Oraret.csv"},
	)
	require.NoError(t, err)
	assert.Equal(t, "s3://b/Oraret.csv", name)
	assert.Equal(t, "from s3", readAll(t, rc))
}

func TestOpenFirst_NothingAvailable(t *testing.T) {
	_, _, err := OpenFirst(context.Background(), nil,
		FileSource{},
		S3Source{},
	)
	assert.True(t, httperr.IsBusiness(err, "csv_source_unavailable"))
}

func TestOpenFirst_S3ErrorStops(t *testing.T) {
	boom := errors.New("access denied")
	_, name, err := OpenFirst(context.Background(), nil,
		S3Source{Client: &fakeS3{err: boom}, Bucket: "b", Key: "k"},
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "s3://b/k", name)
}
