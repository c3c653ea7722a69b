package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ==== Input structures ====

type seedCategory struct {
	ID   int    `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

type seedQuestion struct {
	Question   string `json:"question" yaml:"question"`
	Answer     string `json:"answer" yaml:"answer"`
	Category   int    `json:"category" yaml:"category"`
	Difficulty int    `json:"difficulty" yaml:"difficulty"`
}

type seedFile struct {
	Categories []seedCategory `json:"categories" yaml:"categories"`
	Questions  []seedQuestion `json:"questions" yaml:"questions"`
}

// SeedStats reports how many rows a seed inserted.
type SeedStats struct {
	Categories int
	Questions  int
}

// ==== Seeder ====

// SeedFromFile loads categories and questions from a JSON or YAML file
// (picked by extension) and inserts them in one transaction.
func SeedFromFile(db *gorm.DB, path string) (SeedStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedStats{}, err
	}
	in, err := parseSeed(raw, path)
	if err != nil {
		return SeedStats{}, err
	}
	if err := validateSeed(in); err != nil {
		return SeedStats{}, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, sc := range in.Categories {
			cat := Category{ID: sc.ID, Type: strings.TrimSpace(sc.Type)}
			if err := tx.Create(&cat).Error; err != nil {
				return fmt.Errorf("category %d: %w", sc.ID, err)
			}
		}
		for i, sq := range in.Questions {
			q := Question{
				Question:   strings.TrimSpace(sq.Question),
				Answer:     strings.TrimSpace(sq.Answer),
				Category:   sq.Category,
				Difficulty: sq.Difficulty,
			}
			if err := tx.Create(&q).Error; err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}
	return SeedStats{Categories: len(in.Categories), Questions: len(in.Questions)}, nil
}

func parseSeed(raw []byte, path string) (seedFile, error) {
	var in seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&in); err != nil {
			return in, fmt.Errorf("yaml parse: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return in, fmt.Errorf("json parse: %w", err)
		}
	}
	return in, nil
}

func validateSeed(in seedFile) error {
	seen := map[int]bool{}
	var dups []int
	for _, c := range in.Categories {
		if c.ID < 1 {
			return fmt.Errorf("category %q: id must be at least 1", c.Type)
		}
		if strings.TrimSpace(c.Type) == "" {
			return fmt.Errorf("category %d: type is required", c.ID)
		}
		if seen[c.ID] {
			dups = append(dups, c.ID)
		}
		seen[c.ID] = true
	}
	if len(dups) > 0 {
		return fmt.Errorf("duplicate category ids in seed: %v", dups)
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("question %d: question and answer are required", i)
		}
	}
	return nil
}
