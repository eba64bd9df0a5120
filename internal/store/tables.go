package store

import (
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	attemptsTable = "attempt_logs"
	progressTable = "review_progress"
	sessionsTable = "session_results"
)

// sqlb builds SQLite statements.
var sqlb = entsql.Dialect(dialect.SQLite)

var (
	attemptColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "category", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "time_taken_ms", Type: field.TypeInt64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "quiz_id", Type: field.TypeString, Default: ""},
	}
	// AttemptLogsTable holds the append-only answer log.
	AttemptLogsTable = &schema.Table{
		Name:       attemptsTable,
		Columns:    attemptColumns,
		PrimaryKey: []*schema.Column{attemptColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attemptlog_user_id_sequence", Columns: []*schema.Column{attemptColumns[2], attemptColumns[1]}},
			{Name: "attemptlog_user_id_quiz_id", Columns: []*schema.Column{attemptColumns[2], attemptColumns[8]}},
		},
	}

	// next_review_at holds unix seconds: review instants may lie beyond
	// the range of SQLite's datetime text form.
	progressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "interval_days", Type: field.TypeInt64, Default: 0},
		{Name: "next_review_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ReviewProgressTable holds one row per (user_id, question_id).
	ReviewProgressTable = &schema.Table{
		Name:       progressTable,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reviewprogress_user_id_question_id", Unique: true, Columns: []*schema.Column{progressColumns[1], progressColumns[2]}},
			{Name: "reviewprogress_user_id_next_review_at", Columns: []*schema.Column{progressColumns[1], progressColumns[4]}},
		},
	}

	sessionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "incorrect_ids", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SessionResultsTable holds one row per finished quiz.
	SessionResultsTable = &schema.Table{
		Name:       sessionsTable,
		Columns:    sessionColumns,
		PrimaryKey: []*schema.Column{sessionColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionresult_user_id_sequence", Columns: []*schema.Column{sessionColumns[2], sessionColumns[1]}},
		},
	}

	// Tables lists every table managed by the migrator.
	Tables = []*schema.Table{
		AttemptLogsTable,
		ReviewProgressTable,
		SessionResultsTable,
	}
)
