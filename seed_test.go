package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, name, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func TestSeedFromFile_JSON(t *testing.T) {
	db := newTestDB(t)
	path := writeSeed(t, "trivia.json", `{
  "categories": [{"id": 1, "type": "Science"}, {"id": 2, "type": " Art "}],
  "questions": [
    {"question": "Who discovered penicillin?", "answer": "Alexander Fleming", "category": 1, "difficulty": 3},
    {"question": "La Giaconda is better known as what?", "answer": "Mona Lisa", "category": 2, "difficulty": 3}
  ]
}`)

	stats, err := SeedFromFile(db, path)
	require.NoError(t, err)
	require.Equal(t, SeedStats{Categories: 2, Questions: 2}, stats)

	var cats []Category
	require.NoError(t, db.Order("id").Find(&cats).Error)
	require.Equal(t, "Art", cats[1].Type)

	empty, err := IsQuestionTableEmpty(db)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestSeedFromFile_YAML(t *testing.T) {
	db := newTestDB(t)
	path := writeSeed(t, "trivia.yaml", `categories:
  - id: 3
    type: Geography
questions:
  - question: "The Taj Mahal is located in which Indian city?"
    answer: "Agra"
    category: 3
    difficulty: 2
`)

	stats, err := SeedFromFile(db, path)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Questions)

	var q Question
	require.NoError(t, db.First(&q).Error)
	require.Equal(t, "Agra", q.Answer)
	require.Equal(t, 3, q.Category)
}

func TestSeedFromFile_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		payload string
	}{
		{
			name:    "duplicate category ids",
			file:    "dup.json",
			payload: `{"categories": [{"id": 1, "type": "Science"}, {"id": 1, "type": "Art"}]}`,
		},
		{
			name:    "unknown field",
			file:    "unknown.json",
			payload: `{"categories": [], "quizzes": []}`,
		},
		{
			name:    "blank answer",
			file:    "blank.yml",
			payload: "questions:\n  - question: \"Why?\"\n    answer: \"\"\n    category: 1\n    difficulty: 1\n",
		},
		{
			name:    "malformed",
			file:    "bad.json",
			payload: `{"categories": [`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			_, err := SeedFromFile(db, writeSeed(t, tt.file, tt.payload))
			require.Error(t, err)

			empty, err := IsQuestionTableEmpty(db)
			require.NoError(t, err)
			require.True(t, empty)
		})
	}
}

func TestSeedFromFile_RollsBackOnConflict(t *testing.T) {
	db := newTestDB(t)
	insertCategories(t, db, Category{ID: 2, Type: "Art"})
	path := writeSeed(t, "conflict.json", `{
  "categories": [{"id": 1, "type": "Science"}, {"id": 2, "type": "Art"}],
  "questions": [{"question": "q?", "answer": "a", "category": 1, "difficulty": 1}]
}`)

	_, err := SeedFromFile(db, path)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&Category{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "the transaction must roll back category 1")
}

func TestSeedFromFile_MissingFile(t *testing.T) {
	db := newTestDB(t)
	_, err := SeedFromFile(db, filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSeedFromFile_BundledData(t *testing.T) {
	db := newTestDB(t)
	stats, err := SeedFromFile(db, filepath.Join("data", "trivia.json"))
	require.NoError(t, err)
	require.Equal(t, 6, stats.Categories)
	require.Positive(t, stats.Questions)
}
