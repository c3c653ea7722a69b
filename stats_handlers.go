package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryCount is the number of questions filed under one category id.
// Type is empty for ids with no categories row.
type CategoryCount struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	TotalQuestions    int64            `json:"totalQuestions"`
	TotalCategories   int64            `json:"totalCategories"`
	AverageDifficulty *float64         `json:"averageDifficulty,omitempty"`
	ByCategory        []CategoryCount  `json:"byCategory"`
	ByDifficulty      map[string]int64 `json:"byDifficulty"` // difficulty -> count
}

// questionStats runs the aggregate queries behind GET /stats.
func questionStats(ctx context.Context, db *gorm.DB) (StatsResponse, error) {
	resp := StatsResponse{
		ByCategory:   []CategoryCount{},
		ByDifficulty: map[string]int64{},
	}
	db = db.WithContext(ctx)

	if err := db.Model(&Question{}).Count(&resp.TotalQuestions).Error; err != nil {
		return resp, fmt.Errorf("count questions: %w", err)
	}
	if err := db.Model(&Category{}).Count(&resp.TotalCategories).Error; err != nil {
		return resp, fmt.Errorf("count categories: %w", err)
	}

	type RowAvg struct{ Avg *float64 }
	var rowAvg RowAvg
	if err := db.Model(&Question{}).Select("AVG(difficulty) as avg").Scan(&rowAvg).Error; err != nil {
		return resp, fmt.Errorf("average difficulty: %w", err)
	}
	resp.AverageDifficulty = rowAvg.Avg

	// per category, dangling ids included
	var byCat []CategoryCount
	if err := db.Table("questions q").
		Select("q.category as id, COALESCE(c.type, '') as type, COUNT(*) as count").
		Joins("LEFT JOIN categories c ON c.id = q.category").
		Group("q.category, c.type").
		Order("q.category").
		Scan(&byCat).Error; err != nil {
		return resp, fmt.Errorf("count by category: %w", err)
	}
	resp.ByCategory = append(resp.ByCategory, byCat...)

	type RowDiff struct {
		Difficulty int
		Count      int64
	}
	var byDiff []RowDiff
	if err := db.Model(&Question{}).
		Select("difficulty, COUNT(*) as count").
		Group("difficulty").
		Scan(&byDiff).Error; err != nil {
		return resp, fmt.Errorf("count by difficulty: %w", err)
	}
	for _, r := range byDiff {
		resp.ByDifficulty[strconv.Itoa(r.Difficulty)] = r.Count
	}
	return resp, nil
}

func Stats(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := store.Stats(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"stats":   resp,
		})
	}
}
