package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const QuestionsPerPage = 10

// pageOffset returns the row offset of a 1-indexed page. ok is false when
// the offset does not fit in an int; such a page is always past the data.
func pageOffset(page int) (offset int, ok bool) {
	if page < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/QuestionsPerPage {
		return 0, false
	}
	return (page - 1) * QuestionsPerPage, true
}

// parsePage reads the ?page= query value. An empty value means page 1.
func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalidField("page", "must be an integer")
	}
	if page < 1 {
		return 0, invalidField("page", "must be at least 1")
	}
	return page, nil
}

func parseID(field, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidField(field, "must be an integer")
	}
	if id < 1 {
		return 0, invalidField(field, "must be at least 1")
	}
	return id, nil
}

// removeAsked returns the candidates whose id is not in asked. The input
// slice is left untouched.
func removeAsked(candidates []Question, asked []int) []Question {
	seen := make(map[int]struct{}, len(asked))
	for _, id := range asked {
		seen[id] = struct{}{}
	}
	out := make([]Question, 0, len(candidates))
	for _, q := range candidates {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		out = append(out, q)
	}
	return out
}

// matchQuestions keeps the questions whose text contains term, ignoring
// case. Order is preserved.
func matchQuestions(qs []Question, term string) []Question {
	needle := strings.ToLower(term)
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		if strings.Contains(strings.ToLower(q.Question), needle) {
			out = append(out, q)
		}
	}
	return out
}

// drawQuestion picks one candidate uniformly at random, or nil when there
// are none left. A non-nil seed makes the pick reproducible.
func drawQuestion(candidates []Question, seed *int64) *Question {
	if len(candidates) == 0 {
		return nil
	}
	var r *rand.Rand
	if seed != nil {
		r = rand.New(rand.NewSource(*seed))
	} else {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	q := candidates[r.Intn(len(candidates))]
	return &q
}

/*** lenient JSON scalars ***/

// intToken decodes a JSON integer or a numeric string.
func intToken(raw []byte) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case json.Number:
		return strconv.Atoi(t.String())
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, errors.New("not an integer")
	}
}

// questionIDs accepts ids sent as numbers or numeric strings: [1, "2"].
type questionIDs []int

func (ids *questionIDs) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return invalidField("previous_questions", "must be an array of question ids")
	}
	out := make(questionIDs, 0, len(raw))
	for i, item := range raw {
		id, err := intToken(item)
		if err != nil {
			return invalidField("previous_questions", fmt.Sprintf("item %d is not an integer id", i))
		}
		out = append(out, id)
	}
	*ids = out
	return nil
}

// categoryRef accepts 3, "3" or {"id": 3, "type": "Geography"}.
type categoryRef int

func (c *categoryRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil || obj.ID == nil {
			return invalidField("quiz_category", "object must carry an id")
		}
		trimmed = obj.ID
	}
	id, err := intToken(trimmed)
	if err != nil {
		return invalidField("quiz_category", "must be an integer category id")
	}
	*c = categoryRef(id)
	return nil
}

// flexText accepts a string or a number and stores it trimmed.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch s := v.(type) {
	case string:
		*t = flexText(strings.TrimSpace(s))
	case json.Number:
		*t = flexText(s.String())
	default:
		return &json.UnmarshalTypeError{Value: "non-scalar", Type: reflect.TypeOf("")}
	}
	return nil
}
