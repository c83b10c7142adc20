package snapshotrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/reporting"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("riftrewind/snapshotrepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbSnapshotEntry struct {
	SessionID string    `db:"session_id"`
	RiotID    string    `db:"riot_id"`
	Region    string    `db:"region"`
	Data      []byte    `db:"data"`
	StoredAt  time.Time `db:"stored_at"`
}

func (p *Postgres) StoreSnapshot(ctx context.Context, snapshot domain.RecapSnapshot) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreSnapshot")
	defer span.End()

	if snapshot.SessionID == "" {
		err := fmt.Errorf("%w: session id", domain.ErrMissingParameter)
		reporting.Report(ctx, err)
		return err
	}

	if !json.Valid(snapshot.Data) {
		err := fmt.Errorf("snapshot data is not valid json")
		reporting.Report(ctx, err, map[string]string{
			"riotId": snapshot.RiotID,
		})
		return err
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"schema": p.schema,
		})
		return err
	}

	// Only the last recap per session is kept
	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO recap_snapshots
		(session_id, riot_id, region, data, stored_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id)
		DO UPDATE SET
			riot_id = EXCLUDED.riot_id,
			region = EXCLUDED.region,
			data = EXCLUDED.data,
			stored_at = EXCLUDED.stored_at`,
		snapshot.SessionID,
		snapshot.RiotID,
		snapshot.Region,
		[]byte(snapshot.Data),
		snapshot.StoredAt,
	)
	if err != nil {
		err := fmt.Errorf("failed to upsert recap snapshot: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"riotId":   snapshot.RiotID,
			"region":   snapshot.Region,
			"storedAt": snapshot.StoredAt.Format(time.RFC3339),
		})
		return err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

func (p *Postgres) GetSnapshot(ctx context.Context, sessionID string) (domain.RecapSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetSnapshot")
	defer span.End()

	txx, err := p.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return domain.RecapSnapshot{}, err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"schema": p.schema,
		})
		return domain.RecapSnapshot{}, err
	}

	var entry dbSnapshotEntry
	err = txx.GetContext(
		ctx,
		&entry,
		"SELECT session_id, riot_id, region, data, stored_at FROM recap_snapshots WHERE session_id = $1",
		sessionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RecapSnapshot{}, domain.ErrSnapshotNotFound
	} else if err != nil {
		err := fmt.Errorf("failed to select recap snapshot: %w", err)
		reporting.Report(ctx, err)
		return domain.RecapSnapshot{}, err
	}

	return domain.RecapSnapshot{
		SessionID: entry.SessionID,
		RiotID:    entry.RiotID,
		Region:    entry.Region,
		Data:      json.RawMessage(entry.Data),
		StoredAt:  entry.StoredAt,
	}, nil
}
