package importer

import (
	"io"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
)

// LimitReader reads at most n bytes from r. Unlike io.LimitReader it fails
// with csv_too_large when r holds more, so a cut-off file is never imported
// as if it were complete.
func LimitReader(r io.Reader, n int64) io.Reader {
	return &limitedReader{r: r, n: n, max: n}
}

type limitedReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.n <= 0 {
		var probe [1]byte
		got, err := l.r.Read(probe[:])
		if got > 0 {
			return 0, httperr.ErrBusinessf("csv_too_large", "CSV is larger than %d bytes", l.max)
		}
		return 0, err
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	got, err := l.r.Read(p)
	l.n -= int64(got)
	return got, err
}
