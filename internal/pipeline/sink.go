package pipeline

import (
	"context"
	"errors"

	"github.com/couchcryptid/community-census-etl/internal/domain"
)

// RowSink receives compiled rows. Implementations must be safe for concurrent use.
type RowSink interface {
	WriteRow(ctx context.Context, row domain.Row) error
}

type teeSink []RowSink

// Tee returns a RowSink that writes every row to each of sinks in order. All
// sinks are attempted; their errors are joined.
func Tee(sinks ...RowSink) RowSink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return teeSink(sinks)
}

func (t teeSink) WriteRow(ctx context.Context, row domain.Row) error {
	var errs []error
	for _, s := range t {
		if err := s.WriteRow(ctx, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
