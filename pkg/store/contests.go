package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// ContestRepo persists models.Contest.
type ContestRepo struct {
	pool *pgxpool.Pool
}

func scanContest(row pgx.Row) (*models.Contest, error) {
	c := &models.Contest{}
	err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.Status,
		&c.PasswordProtected, &c.Password, &c.PubliclyListed, &c.JudgeRestrictions,
		&c.AuthorRestrictions, &c.MinVotesRequired, &c.EndDate, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "contest not found")
		}
		return nil, fmt.Errorf("scan contest: %w", err)
	}
	return c, nil
}

const contestColumns = `id, creator_id, title, description, status, password_protected, password,
	publicly_listed, judge_restrictions, author_restrictions, min_votes_required, end_date, created_at`

func (r *ContestRepo) Get(ctx context.Context, id string) (*models.Contest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1`, id)
	return scanContest(row)
}

// GetForUpdate locks the contest row, used by the Judge Session Manager to
// serialize the transition into `closed` (spec §5).
func (r *ContestRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.Contest, error) {
	row := tx.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1 FOR UPDATE`, id)
	return scanContest(row)
}

func (r *ContestRepo) Create(ctx context.Context, c *models.Contest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contests (`+contestColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID, c.CreatorID, c.Title, c.Description, c.Status, c.PasswordProtected, c.Password,
		c.PubliclyListed, c.JudgeRestrictions, c.AuthorRestrictions, c.MinVotesRequired, c.EndDate, c.CreatedAt)
	return err
}

func (r *ContestRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status models.ContestStatus) error {
	_, err := tx.Exec(ctx, `UPDATE contests SET status = $2 WHERE id = $1`, id, status)
	return err
}

// CountSubmissions returns the number of texts entered into a contest (the
// submission_count of spec §4.9).
func (r *ContestRepo) CountSubmissions(ctx context.Context, tx pgx.Tx, contestID string) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT count(*) FROM contest_texts WHERE contest_id = $1`, contestID).Scan(&n)
	return n, err
}
