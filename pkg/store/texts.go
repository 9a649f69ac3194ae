package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// TextRepo persists models.ContestText.
type TextRepo struct {
	pool *pgxpool.Pool
}

const textColumns = `id, contest_id, owner_id, title, content, author, submission_date, ranking, total_points`

func scanText(row pgx.Row) (*models.ContestText, error) {
	t := &models.ContestText{}
	err := row.Scan(&t.ID, &t.ContestID, &t.OwnerID, &t.Title, &t.Content, &t.Author, &t.SubmissionDate, &t.Ranking, &t.TotalPoints)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "text not found")
		}
		return nil, fmt.Errorf("scan text: %w", err)
	}
	return t, nil
}

func (r *TextRepo) Get(ctx context.Context, id string) (*models.ContestText, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+textColumns+` FROM contest_texts WHERE id = $1`, id)
	return scanText(row)
}

func (r *TextRepo) Create(ctx context.Context, t *models.ContestText) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contest_texts (`+textColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.ContestID, t.OwnerID, t.Title, t.Content, t.Author, t.SubmissionDate, t.Ranking, t.TotalPoints)
	return err
}

// ListByContest returns every submission for a contest ordered by submission
// date ascending, the tiebreak order the Results Calculator needs (spec §4.10).
func (r *TextRepo) ListByContest(ctx context.Context, contestID string) ([]*models.ContestText, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+textColumns+` FROM contest_texts WHERE contest_id = $1 ORDER BY submission_date ASC`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	defer rows.Close()

	var out []*models.ContestText
	for rows.Next() {
		t := &models.ContestText{}
		if err := rows.Scan(&t.ID, &t.ContestID, &t.OwnerID, &t.Title, &t.Content, &t.Author, &t.SubmissionDate, &t.Ranking, &t.TotalPoints); err != nil {
			return nil, fmt.Errorf("scan text: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListByContestTx is ListByContest using an existing transaction, used by the
// Judge Session Manager to validate `text_id ∈ contest` (spec §4.9 step c).
func (r *TextRepo) ListByContestTx(ctx context.Context, tx pgx.Tx, contestID string) ([]*models.ContestText, error) {
	rows, err := tx.Query(ctx, `SELECT `+textColumns+` FROM contest_texts WHERE contest_id = $1`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	defer rows.Close()

	var out []*models.ContestText
	for rows.Next() {
		t := &models.ContestText{}
		if err := rows.Scan(&t.ID, &t.ContestID, &t.OwnerID, &t.Title, &t.Content, &t.Author, &t.SubmissionDate, &t.Ranking, &t.TotalPoints); err != nil {
			return nil, fmt.Errorf("scan text: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateRanking persists a Results Calculator outcome for one text.
func (r *TextRepo) UpdateRanking(ctx context.Context, tx pgx.Tx, textID string, ranking, totalPoints *int) error {
	_, err := tx.Exec(ctx, `UPDATE contest_texts SET ranking = $2, total_points = $3 WHERE id = $1`, textID, ranking, totalPoints)
	return err
}
