package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kanjibattle/domain"
	"kanjibattle/domain/packet"
	"kanjibattle/game"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgur *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgur.pool.QueryRow(ctx, "SELECT id, password_hash FROM users WHERE username = $1", username)

	err := row.Scan(&user.Id, &user.PasswordHash)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return user, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgur *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgur.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)

	err := row.Scan(&user.Username, &user.PasswordHash)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgur *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	row := pgur.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id", username, passwordHash)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return "", domain.ErrDuplicateUsername
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		return "", fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return id, nil
}

// Questions implements the game.QuestionProvider interface. It deals a
// random deck of kanji for the requested tiers. Write mode only considers
// kanji with stored reference strokes. An empty tiers slice means any tier.
func (pgur *PostgresRepo) Questions(tiers []string, mode game.GameMode, count int) ([]game.Question, error) {
	ctx := context.Background()

	query := `SELECT id, character, meaning, tier, stroke_count, point_value, accepted_answers, hints, strokes
	          FROM kanji
	          WHERE (cardinality($1::text[]) = 0 OR tier = ANY($1))`
	if mode == game.MODE_WRITE {
		query += ` AND strokes IS NOT NULL`
	}
	query += ` ORDER BY RANDOM() LIMIT $2`

	if tiers == nil {
		tiers = []string{}
	}

	rows, err := pgur.pool.Query(ctx, query, tiers, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	defer rows.Close()

	questions := make([]game.Question, 0, count)
	for rows.Next() {
		var (
			q          game.Question
			answers    []string
			hints      []string
			strokesRaw []byte
		)
		if err := rows.Scan(&q.Id, &q.Prompt, &q.Meaning, &q.Tier, &q.StrokeCount, &q.PointValue, &answers, &hints, &strokesRaw); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}

		q.AcceptedAnswers = make([]string, 0, len(answers)+1)
		q.AcceptedAnswers = append(q.AcceptedAnswers, game.NormalizeAnswer(q.Meaning))
		for _, a := range answers {
			q.AcceptedAnswers = append(q.AcceptedAnswers, game.NormalizeAnswer(a))
		}
		q.Hints = hints

		if len(strokesRaw) > 0 {
			var strokes []packet.Stroke
			if err := json.Unmarshal(strokesRaw, &strokes); err != nil {
				return nil, fmt.Errorf("%w: malformed strokes for kanji %s: %w", domain.UnexpectedDatabaseError, q.Id, err)
			}
			q.ReferenceStrokes = strokes
		}

		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	if len(questions) < count {
		return nil, domain.ErrNotEnoughQuestions
	}

	return questions, nil
}
