package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*** DTOs shared across handlers ***/

// CategoryDTO carries the label as "type" for the trivia front end and as
// "name" for everything else.
type CategoryDTO struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

func toCategoryDTOs(cats []Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(cats))
	for _, cat := range cats {
		out = append(out, CategoryDTO{ID: cat.ID, Type: cat.Type, Name: cat.Type})
	}
	return out
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil(qs []Question) []Question {
	if qs == nil {
		return []Question{}
	}
	return qs
}

/*** Categories ***/

func ListCategories(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := store.ListCategories(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"categories": toCategoryDTOs(cats),
		})
	}
}

// QuestionsByCategory answers 200 with an empty list when nothing matches,
// unknown and dangling category ids included.
func QuestionsByCategory(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID("id", c.Param("id"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		qs, err := store.QuestionsByCategory(c.Request.Context(), id)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"questions":       nonNil(qs),
			"totalQuestions":  len(qs),
			"currentCategory": id,
		})
	}
}

/*** Questions ***/

func ListQuestions(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c.Query("page"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		ctx := c.Request.Context()

		total, err := store.CountQuestions(ctx)
		if err != nil {
			writeError(c, log, err)
			return
		}
		offset, ok := pageOffset(page)
		if !ok || int64(offset) >= total {
			writeError(c, log, ErrNotFound)
			return
		}
		qs, err := store.ListQuestions(ctx, offset, QuestionsPerPage)
		if err != nil {
			writeError(c, log, err)
			return
		}
		if len(qs) == 0 {
			writeError(c, log, ErrNotFound)
			return
		}
		cats, err := store.ListCategories(ctx)
		if err != nil {
			writeError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"questions":      qs,
			"categories":     toCategoryDTOs(cats),
			"totalQuestions": total,
		})
	}
}

type CreateQuestionReq struct {
	Question   flexText `json:"question" binding:"required"`
	Answer     flexText `json:"answer" binding:"required"`
	Category   *int     `json:"category" binding:"required,min=1"`
	Difficulty *int     `json:"difficulty" binding:"required,min=1,max=5"`
}

func CreateQuestion(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateQuestionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, log, bindError(err))
			return
		}

		q := Question{
			Question:   string(req.Question),
			Answer:     string(req.Answer),
			Category:   *req.Category,
			Difficulty: *req.Difficulty,
		}
		if err := store.CreateQuestion(c.Request.Context(), &q); err != nil {
			writeError(c, log, err)
			return
		}

		log.Info("question created",
			zap.String("request_id", requestID(c)),
			zap.Int("id", q.ID),
			zap.Int("category", q.Category),
		)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"msg":     "Item added",
			"created": q.ID,
		})
	}
}

func DeleteQuestion(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID("id", c.Param("id"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		if err := store.DeleteQuestion(c.Request.Context(), id); err != nil {
			writeError(c, log, err)
			return
		}

		log.Info("question deleted", zap.String("request_id", requestID(c)), zap.Int("id", id))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"msg":     "question is deleted",
			"deleted": id,
		})
	}
}

type SearchReq struct {
	SearchString string `json:"search_string" binding:"required"`
}

// SearchQuestions reports both the match count and the count of all
// questions; older clients read totalQuestions as the latter.
func SearchQuestions(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SearchReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, log, bindError(err))
			return
		}
		if strings.TrimSpace(req.SearchString) == "" {
			writeError(c, log, invalidField("search_string", "is required"))
			return
		}
		ctx := c.Request.Context()

		qs, err := store.SearchQuestions(ctx, req.SearchString)
		if err != nil {
			writeError(c, log, err)
			return
		}
		total, err := store.CountQuestions(ctx)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"questions":        nonNil(qs),
			"totalQuestions":   total,
			"matchedQuestions": len(qs),
		})
	}
}

/*** Quiz ***/

type QuizReq struct {
	PreviousQuestions questionIDs  `json:"previous_questions" binding:"required"`
	QuizCategory      *categoryRef `json:"quiz_category" binding:"required"`
	Seed              *int64       `json:"seed"` // optional, for reproducible draws
}

// NextQuizQuestion draws a question the client has not seen yet. When none
// is left it answers {"question": null}, which ends the quiz.
func NextQuizQuestion(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuizReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, log, bindError(err))
			return
		}
		category := int(*req.QuizCategory)
		if category < 0 {
			writeError(c, log, invalidField("quiz_category", "must be 0 or a category id"))
			return
		}
		ctx := c.Request.Context()

		var (
			candidates []Question
			err        error
		)
		if category == 0 {
			candidates, err = store.AllQuestions(ctx)
		} else {
			candidates, err = store.QuestionsByCategory(ctx, category)
		}
		if err != nil {
			writeError(c, log, err)
			return
		}

		next := drawQuestion(removeAsked(candidates, req.PreviousQuestions), req.Seed)
		if next == nil {
			log.Info("quiz exhausted",
				zap.String("request_id", requestID(c)),
				zap.Int("category", category),
				zap.Int("asked", len(req.PreviousQuestions)),
			)
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"question": next,
		})
	}
}

/*** Health ***/

func Health(store QuestionStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Error("health check failed", zap.String("request_id", requestID(c)), zap.Error(err))
			abort(c, http.StatusServiceUnavailable)
			return
		}
		c.String(http.StatusOK, "ok")
	}
}
