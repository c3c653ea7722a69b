package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newPostgresTestDB connects to TRIVIA_TEST_POSTGRES_DSN and empties the
// trivia tables. The tests skip when the variable is unset.
func newPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TRIVIA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRIVIA_TEST_POSTGRES_DSN not set")
	}
	db, err := OpenDB(DatabaseConfig{Driver: DriverPostgres, DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })
	require.NoError(t, AutoMigrate(db))
	require.NoError(t, db.Exec("TRUNCATE TABLE questions, categories RESTART IDENTITY").Error)
	return db
}

func TestPostgresStore_SearchQuestions(t *testing.T) {
	db := newPostgresTestDB(t)
	insertQuestions(t, db,
		Question{Question: "What is my age ?", Answer: "21", Category: 1, Difficulty: 1},
		Question{Question: "snake_case or camelCase?", Answer: "both", Category: 1, Difficulty: 1},
		Question{Question: "snakeXcase?", Answer: "no", Category: 1, Difficulty: 1},
		Question{Question: `A back\slash?`, Answer: "yes", Category: 1, Difficulty: 1},
		Question{Question: "Who sang Édith's hits?", Answer: "Piaf", Category: 1, Difficulty: 2},
	)
	store := NewGormStore(db)
	ctx := context.Background()

	tests := []struct {
		term string
		want int
	}{
		{term: "AGE", want: 1},
		{term: "case", want: 2},
		{term: "snake_", want: 1},
		{term: `k\s`, want: 1},
		{term: "100%", want: 0},
		{term: "édith", want: 1},
		{term: "ÉDITH", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := store.SearchQuestions(ctx, tt.term)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
		})
	}
}

func TestPostgresStore_CRUDAndStats(t *testing.T) {
	db := newPostgresTestDB(t)
	insertCategories(t, db, fixtureCategories...)
	insertQuestions(t, db, numberedQuestions(10)...)
	store := NewGormStore(db)
	ctx := context.Background()

	page, err := store.ListQuestions(ctx, 0, QuestionsPerPage)
	require.NoError(t, err)
	require.Len(t, page, 10)
	require.Less(t, page[0].ID, page[9].ID)

	inCat, err := store.QuestionsByCategory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, inCat, 2)

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, st.TotalQuestions)
	require.NotNil(t, st.AverageDifficulty)
	require.InDelta(t, 3.0, *st.AverageDifficulty, 1e-9)
	require.Len(t, st.ByCategory, 4)

	require.NoError(t, store.DeleteQuestion(ctx, page[0].ID))
	require.ErrorIs(t, store.DeleteQuestion(ctx, page[0].ID), ErrNotFound)
	require.NoError(t, store.Ping(ctx))
}
