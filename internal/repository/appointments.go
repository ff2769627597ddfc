package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/scheduled/pkg/db"
)

// NewAppointment is a validated appointment ready to be stored.
// StartsAt is the offset from midnight of StartsOn.
type NewAppointment struct {
	StartsOn    time.Time
	Duration    *int
	Price       *float64
	ClientName  string
	ClientEmail string
	ClientPhone string
	ServiceName string
	Notes       string
	Status      string
	StartsAt    time.Duration
}

var appointmentColumns = []string{
	"business_id", "import_id", "client_name", "client_email", "client_phone",
	"service_name", "starts_on", "starts_at", "duration_minutes", "price",
	"notes", "status",
}

type Appointments struct {
	pool *pgxpool.Pool
}

func NewAppointments(pool *pgxpool.Pool) *Appointments {
	return &Appointments{pool: pool}
}

// InsertBatch copies appts in one transaction and returns the row count.
func (s *Appointments) InsertBatch(ctx context.Context, businessID string, importID uuid.UUID, appts []NewAppointment) (int64, error) {
	if len(appts) == 0 {
		return 0, nil
	}

	var n int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		n, err = tx.CopyFrom(ctx,
			pgx.Identifier{"appointments"},
			appointmentColumns,
			pgx.CopyFromSlice(len(appts), func(i int) ([]any, error) {
				return copyRow(businessID, importID, appts[i]), nil
			}),
		)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert appointments: %w", err)
	}
	return n, nil
}

func copyRow(businessID string, importID uuid.UUID, a NewAppointment) []any {
	var duration pgtype.Int4
	if a.Duration != nil {
		duration = pgtype.Int4{Int32: int32(*a.Duration), Valid: true} //nolint:gosec // minutes fit
	}
	var price pgtype.Float8
	if a.Price != nil {
		price = pgtype.Float8{Float64: *a.Price, Valid: true}
	}

	return []any{
		businessID,
		importID,
		a.ClientName,
		a.ClientEmail,
		a.ClientPhone,
		a.ServiceName,
		pgtype.Date{Time: a.StartsOn, Valid: true},
		pgtype.Time{Microseconds: a.StartsAt.Microseconds(), Valid: true},
		duration,
		price,
		a.Notes,
		a.Status,
	}
}
