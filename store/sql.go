// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
)

// SQLStore persists sessions in PostgreSQL or SQLite. Control transitions
// lock the poll row for update; votes take a shared lock, so a vote and a
// reveal on the same poll are serialized while votes run in parallel.
type SQLStore struct {
	db      *sql.DB
	dialect string
	sb      sq.StatementBuilderType
}

// Open connects, verifies the connection, and creates the schema.
func Open(ctx context.Context, dialect, url string) (*SQLStore, error) {
	driver := dialect
	if dialect != db.Postgres && dialect != db.SQLite {
		return nil, errors.Errorf("unsupported database type %q", dialect)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, errors.Wrap(err, "database connection failed")
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "database ping failed")
	}
	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}
	return NewSQLStore(conn, dialect), nil
}

// NewSQLStore wraps an open connection whose schema already exists.
func NewSQLStore(conn *sql.DB, dialect string) *SQLStore {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == db.Postgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	} else {
		// SQLite has a single writer; one connection keeps transactions serialized.
		conn.SetMaxOpenConns(1)
	}
	return &SQLStore{db: conn, dialect: dialect, sb: sb}
}

// DB exposes the underlying connection for tests.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) Aggregate(ctx context.Context, pollID string) (*models.PollAggregate, error) {
	agg := &models.PollAggregate{}

	query, args, err := s.sb.
		Select("id", "group_id", "slug", "title", "description", "type", "status",
			"active_question_id", "state_version", "created_at", "updated_at").
		From("poll").
		Where(sq.Eq{"id": pollID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build poll query")
	}

	var active sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&agg.ID, &agg.GroupID, &agg.Slug, &agg.Title, &agg.Description, &agg.Type, &agg.Status,
		&active, &agg.StateVersion, &agg.CreatedAt, &agg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(livepoll.ErrNotFound, "poll %s", pollID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query poll")
	}
	if active.Valid {
		agg.ActiveQuestionID = &active.String
	}

	agg.Questions, err = s.questions(ctx, pollID)
	if err != nil {
		return nil, err
	}
	agg.Votes, err = s.votes(ctx, pollID)
	if err != nil {
		return nil, err
	}

	normalize(agg)
	return agg, nil
}

func (s *SQLStore) questions(ctx context.Context, pollID string) ([]models.Question, error) {
	query, args, err := s.sb.
		Select("id", "order_index", "question_text", "media_url", "is_revealed", "activated_at").
		From("poll_question").
		Where(sq.Eq{"poll_id": pollID}).
		OrderBy("order_index").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build question query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query questions")
	}
	defer rows.Close()

	questions := []models.Question{}
	index := map[string]int{}
	for rows.Next() {
		var q models.Question
		var media sql.NullString
		var activated sql.NullTime
		if err := rows.Scan(&q.ID, &q.OrderIndex, &q.QuestionText, &media, &q.IsRevealed, &activated); err != nil {
			return nil, errors.Wrap(err, "failed to scan question")
		}
		q.PollID = pollID
		if media.Valid {
			q.MediaURL = &media.String
		}
		if activated.Valid {
			at := activated.Time.UTC()
			q.ActivatedAt = &at
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read questions")
	}

	query, args, err = s.sb.
		Select("o.id", "o.question_id", "o.option_text", "o.media_url", "o.order_index", "o.is_correct").
		From("poll_option o").
		Join("poll_question q ON q.id = o.question_id").
		Where(sq.Eq{"q.poll_id": pollID}).
		OrderBy("o.order_index", "o.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build option query")
	}

	optRows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query options")
	}
	defer optRows.Close()

	for optRows.Next() {
		var o models.Option
		var media sql.NullString
		var correct sql.NullBool
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &media, &o.OrderIndex, &correct); err != nil {
			return nil, errors.Wrap(err, "failed to scan option")
		}
		if media.Valid {
			o.MediaURL = &media.String
		}
		if correct.Valid {
			c := correct.Bool
			o.IsCorrect = &c
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, errors.Wrap(optRows.Err(), "failed to read options")
}

func (s *SQLStore) votes(ctx context.Context, pollID string) ([]models.Vote, error) {
	query, args, err := s.sb.
		Select("id", "poll_id", "question_id", "user_id", "option_id", "created_at").
		From("poll_vote").
		Where(sq.Eq{"poll_id": pollID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build vote query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query votes")
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.QuestionID, &v.UserID, &v.OptionID, &v.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan vote")
		}
		v.CreatedAt = v.CreatedAt.UTC()
		votes = append(votes, v)
	}
	return votes, errors.Wrap(rows.Err(), "failed to read votes")
}

func (s *SQLStore) ResolveSlug(ctx context.Context, groupID, slug string) (string, error) {
	query, args, err := s.sb.Select("id").From("poll").
		Where(sq.Eq{"group_id": groupID, "slug": slug}).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "build slug query")
	}

	var id string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(livepoll.ErrNotFound, "poll %s/%s", groupID, slug)
	}
	return id, errors.Wrap(err, "failed to resolve slug")
}

// loadState reads the transition state. lock is appended to the poll
// query on PostgreSQL ("FOR UPDATE" / "FOR SHARE").
func (s *SQLStore) loadState(ctx context.Context, q queryer, pollID, lock string) (models.LiveState, error) {
	state := models.LiveState{PollID: pollID}

	builder := s.sb.Select("type", "status", "active_question_id", "state_version").
		From("poll").
		Where(sq.Eq{"id": pollID})
	if s.dialect == db.Postgres && lock != "" {
		builder = builder.Suffix(lock)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return state, errors.Wrap(err, "build state query")
	}

	var active sql.NullString
	err = q.QueryRowContext(ctx, query, args...).Scan(&state.Type, &state.Status, &active, &state.Version)
	if err == sql.ErrNoRows {
		return state, errors.Wrapf(livepoll.ErrNotFound, "poll %s", pollID)
	}
	if err != nil {
		return state, errors.Wrap(err, "failed to query poll state")
	}
	if active.Valid {
		state.ActiveQuestionID = &active.String
	}

	query, args, err = s.sb.Select("id", "order_index", "is_revealed", "activated_at").
		From("poll_question").
		Where(sq.Eq{"poll_id": pollID}).
		OrderBy("order_index").
		ToSql()
	if err != nil {
		return state, errors.Wrap(err, "build question state query")
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return state, errors.Wrap(err, "failed to query question state")
	}
	defer rows.Close()

	for rows.Next() {
		var qs models.QuestionState
		var activated sql.NullTime
		if err := rows.Scan(&qs.ID, &qs.OrderIndex, &qs.Revealed, &activated); err != nil {
			return state, errors.Wrap(err, "failed to scan question state")
		}
		if activated.Valid {
			at := activated.Time.UTC()
			qs.ActivatedAt = &at
		}
		state.Questions = append(state.Questions, qs)
	}
	return state, errors.Wrap(rows.Err(), "failed to read question state")
}

func (s *SQLStore) Transition(ctx context.Context, pollID string, cmd livepoll.Command, now time.Time) (models.LiveState, error) {
	now = now.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.LiveState{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	before, err := s.loadState(ctx, tx, pollID, "FOR UPDATE")
	if err != nil {
		return before, err
	}

	after := before.Clone()
	if err := cmd.Apply(&after, now); err != nil {
		return before, err
	}

	var active any
	if after.ActiveQuestionID != nil {
		active = *after.ActiveQuestionID
	}
	query, args, err := s.sb.Update("poll").
		Set("status", string(after.Status)).
		Set("active_question_id", active).
		Set("state_version", after.Version).
		Set("updated_at", now).
		Where(sq.Eq{"id": pollID}).
		ToSql()
	if err != nil {
		return before, errors.Wrap(err, "build poll update")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return before, errors.Wrap(err, "failed to update poll")
	}

	for i, qs := range after.Questions {
		prev := before.Questions[i]
		if prev.Revealed == qs.Revealed && sameTime(prev.ActivatedAt, qs.ActivatedAt) {
			continue
		}
		var activated any
		if qs.ActivatedAt != nil {
			activated = *qs.ActivatedAt
		}
		query, args, err := s.sb.Update("poll_question").
			Set("is_revealed", qs.Revealed).
			Set("activated_at", activated).
			Where(sq.Eq{"id": qs.ID}).
			ToSql()
		if err != nil {
			return before, errors.Wrap(err, "build question update")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return before, errors.Wrap(err, "failed to update question")
		}
	}

	if err := tx.Commit(); err != nil {
		return before, errors.Wrap(err, "failed to commit transaction")
	}
	return after, nil
}

func (s *SQLStore) InsertVote(ctx context.Context, v models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	state, err := s.loadState(ctx, tx, v.PollID, "FOR SHARE")
	if err != nil {
		return err
	}

	// Check if vote already exists
	query, args, err := s.sb.Select("COUNT(*)").From("poll_vote").
		Where(sq.Eq{"question_id": v.QuestionID, "user_id": v.UserID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build vote lookup")
	}
	var existing int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&existing); err != nil {
		return errors.Wrap(err, "failed to query existing vote")
	}
	if existing > 0 {
		return livepoll.ErrAlreadyVoted
	}

	query, args, err = s.sb.Select("COUNT(*)").From("poll_option").
		Where(sq.Eq{"id": v.OptionID, "question_id": v.QuestionID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build option lookup")
	}
	var options int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&options); err != nil {
		return errors.Wrap(err, "failed to query option")
	}
	if options == 0 {
		return errors.Wrapf(livepoll.ErrNotFound, "option %s on question %s", v.OptionID, v.QuestionID)
	}

	if err := livepoll.CheckVote(&state, v.QuestionID); err != nil {
		return err
	}

	if v.ID == "" {
		v.ID = NewVoteID()
	}
	query, args, err = s.sb.Insert("poll_vote").
		Columns("id", "poll_id", "question_id", "user_id", "option_id", "created_at").
		Values(v.ID, v.PollID, v.QuestionID, v.UserID, v.OptionID, v.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build vote insert")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return livepoll.ErrAlreadyVoted
		}
		return errors.Wrap(err, "failed to insert vote")
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return livepoll.ErrAlreadyVoted
		}
		return errors.Wrap(err, "failed to commit vote")
	}
	return nil
}

func (s *SQLStore) Import(ctx context.Context, in models.PollAggregate) error {
	agg := copyAggregate(&in)
	prepareImport(agg)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var active any
	if agg.ActiveQuestionID != nil {
		active = *agg.ActiveQuestionID
	}
	stmts := []sq.InsertBuilder{
		s.sb.Insert("poll").
			Columns("id", "group_id", "slug", "title", "description", "type", "status",
				"active_question_id", "state_version", "created_at", "updated_at").
			Values(agg.ID, agg.GroupID, agg.Slug, agg.Title, agg.Description, string(agg.Type), string(agg.Status),
				active, agg.StateVersion, agg.CreatedAt.UTC(), agg.UpdatedAt.UTC()),
	}

	for _, q := range agg.Questions {
		var activated any
		if q.ActivatedAt != nil {
			activated = q.ActivatedAt.UTC()
		}
		stmts = append(stmts, s.sb.Insert("poll_question").
			Columns("id", "poll_id", "order_index", "question_text", "media_url", "is_revealed", "activated_at").
			Values(q.ID, agg.ID, q.OrderIndex, q.QuestionText, nullable(q.MediaURL), q.IsRevealed, activated))

		for _, o := range q.Options {
			var correct any
			if o.IsCorrect != nil {
				correct = *o.IsCorrect
			}
			stmts = append(stmts, s.sb.Insert("poll_option").
				Columns("id", "question_id", "option_text", "media_url", "order_index", "is_correct").
				Values(o.ID, q.ID, o.OptionText, nullable(o.MediaURL), o.OrderIndex, correct))
		}
	}

	for _, v := range agg.Votes {
		stmts = append(stmts, s.sb.Insert("poll_vote").
			Columns("id", "poll_id", "question_id", "user_id", "option_id", "created_at").
			Values(v.ID, agg.ID, v.QuestionID, v.UserID, v.OptionID, v.CreatedAt.UTC()))
	}

	for _, stmt := range stmts {
		query, args, err := stmt.ToSql()
		if err != nil {
			return errors.Wrap(err, "build import statement")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "failed to import poll %s", agg.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit import")
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// isUniqueViolation recognizes duplicate-key errors from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
