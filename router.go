package main

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var registerFieldNames sync.Once

// useJSONFieldNames makes validation errors report fields by their JSON
// names, so they line up with the request body.
func useJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

func NewRouter(cfg Config, store QuestionStore, log *zap.Logger) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestLogger(log), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORS)))

	r.NoRoute(func(c *gin.Context) { abort(c, http.StatusNotFound) })
	r.NoMethod(func(c *gin.Context) { abort(c, http.StatusMethodNotAllowed) })

	r.GET("/healthz", Health(store, log))

	r.GET("/categories", ListCategories(store, log))
	r.GET("/categories/:id/questions", QuestionsByCategory(store, log))

	r.GET("/questions", ListQuestions(store, log))
	r.POST("/questions", CreateQuestion(store, log))
	r.POST("/questions/search", SearchQuestions(store, log))
	r.DELETE("/questions/:id", DeleteQuestion(store, log))

	r.POST("/quizzes", NextQuizQuestion(store, log))

	r.GET("/stats", Stats(store, log))

	return r
}

func corsConfig(cfg CORSConfig) cors.Config {
	out := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		out.AllowAllOrigins = true
		return out
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			out.AllowAllOrigins = true
			return out
		}
	}
	out.AllowOrigins = cfg.AllowOrigins
	return out
}
