package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// QuestionStore is the persistence surface the handlers depend on.
// Every listing is ordered by id ascending.
type QuestionStore interface {
	ListCategories(ctx context.Context) ([]Category, error)

	CountQuestions(ctx context.Context) (int64, error)
	ListQuestions(ctx context.Context, offset, limit int) ([]Question, error)
	AllQuestions(ctx context.Context) ([]Question, error)
	QuestionsByCategory(ctx context.Context, categoryID int) ([]Question, error)
	SearchQuestions(ctx context.Context, term string) ([]Question, error)

	CreateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id int) error

	Stats(ctx context.Context) (StatsResponse, error)
	Ping(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) QuestionStore {
	return &gormStore{db: db}
}

func (s *gormStore) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := s.db.WithContext(ctx).Order("id").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *gormStore) CountQuestions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Question{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *gormStore) ListQuestions(ctx context.Context, offset, limit int) ([]Question, error) {
	var qs []Question
	if err := s.db.WithContext(ctx).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return qs, nil
}

func (s *gormStore) AllQuestions(ctx context.Context) ([]Question, error) {
	var qs []Question
	if err := s.db.WithContext(ctx).Order("id").Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("all questions: %w", err)
	}
	return qs, nil
}

func (s *gormStore) QuestionsByCategory(ctx context.Context, categoryID int) ([]Question, error) {
	var qs []Question
	if err := s.db.WithContext(ctx).
		Where("category = ?", categoryID).
		Order("id").
		Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("questions in category %d: %w", categoryID, err)
	}
	return qs, nil
}

// SearchQuestions matches term as a case-insensitive substring of the
// question text. LIKE wildcards in term match literally.
func (s *gormStore) SearchQuestions(ctx context.Context, term string) ([]Question, error) {
	db := s.db.WithContext(ctx)
	var qs []Question
	if db.Dialector.Name() == DriverPostgres {
		pattern := "%" + escapeLike(term) + "%"
		if err := db.
			Where("question ILIKE ? ESCAPE '\\'", pattern).
			Order("id").
			Find(&qs).Error; err != nil {
			return nil, fmt.Errorf("search questions: %w", err)
		}
		return qs, nil
	}

	// sqlite LOWER() only folds ASCII, so the match runs in Go.
	if err := db.Order("id").Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return matchQuestions(qs, term), nil
}

func (s *gormStore) CreateQuestion(ctx context.Context, q *Question) error {
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteQuestion(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q Question
		if err := tx.First(&q, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("question %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("find question %d: %w", id, err)
		}
		if err := tx.Delete(&q).Error; err != nil {
			return fmt.Errorf("delete question %d: %w", id, err)
		}
		return nil
	})
}

func (s *gormStore) Stats(ctx context.Context) (StatsResponse, error) {
	return questionStats(ctx, s.db)
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
