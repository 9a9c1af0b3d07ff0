// Package planner is the client for the curriculum planning backend. The
// backend owns term-plan retrieval and lesson-plan generation; this package
// only validates requests and checks the shape of what comes back.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/logger"
)

// DefaultBaseURL is the hosted planning backend.
const DefaultBaseURL = "https://eadteachers-toolbackend-production-129c.up.railway.app/api"

// DefaultTopK is the number of curriculum passages retrieved for a term plan.
const DefaultTopK = 5

// Client calls the planning backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Config configures a Client. A zero Timeout means no client-side timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New returns a Client for cfg.
func New(cfg Config, log *logger.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// TermPlanRequest asks for a curriculum term plan.
type TermPlanRequest struct {
	Curriculum string `json:"curriculum"`
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
}

// TermPlan is the backend's answer: markdown content and the sources used.
type TermPlan struct {
	Response       string   `json:"response"`
	Sources        []string `json:"sources"`
	CollectionUsed string   `json:"collection_used,omitempty"`
}

// Title is the heading used when the plan is shown or exported.
func (r TermPlanRequest) Title() string {
	return fmt.Sprintf("%s - Grade %s", SubjectName(r.Subject), r.Grade)
}

// Validate checks the request against the offered options.
func (r TermPlanRequest) Validate() error {
	const op = "planner.TermPlan"
	switch {
	case !hasOption(Curricula, r.Curriculum):
		return apperr.Errorf(apperr.KindInvalidInput, op, "unknown curriculum %q", r.Curriculum)
	case !hasOption(Subjects, r.Subject):
		return apperr.Errorf(apperr.KindInvalidInput, op, "unknown subject %q", r.Subject)
	case !validGrade(r.Grade):
		return apperr.Errorf(apperr.KindInvalidInput, op, "unsupported grade %q", r.Grade)
	case strings.TrimSpace(r.Query) == "":
		return apperr.Errorf(apperr.KindInvalidInput, op, "Please describe what the term plan should cover.")
	}
	return nil
}

// TermPlan requests a term plan. TopK defaults to DefaultTopK.
func (c *Client) TermPlan(ctx context.Context, req TermPlanRequest) (*TermPlan, error) {
	const op = "planner.TermPlan"
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := c.post(ctx, op, "/terms_plan", req, &raw); err != nil {
		return nil, err
	}

	// response must be a string and sources an array.
	plan := &TermPlan{}
	if !present(raw["response"]) || !present(raw["sources"]) ||
		json.Unmarshal(raw["response"], &plan.Response) != nil ||
		json.Unmarshal(raw["sources"], &plan.Sources) != nil {
		return nil, apperr.Userf(apperr.KindUnexpectedShape, op, "No data returned from backend.")
	}
	// collection_used is informational; a bad value never fails the plan.
	if v, ok := raw["collection_used"]; ok && present(v) {
		if err := json.Unmarshal(v, &plan.CollectionUsed); err != nil {
			c.log.Warn("ignoring malformed collection_used", "value", string(v), "error", err)
		}
	}
	return plan, nil
}

func present(v json.RawMessage) bool {
	return len(v) > 0 && string(v) != "null"
}

// LessonPlanRequest asks for a series of lesson plans built from a syllabus.
type LessonPlanRequest struct {
	ClassDuration      string `json:"class_duration"`
	HomeworkPreference string `json:"homework_preference"`
	NumClasses         int    `json:"num_classes"`
	SyllabusData       string `json:"syllabus_data"`
	TeachingStyle      string `json:"teaching_style"`
}

// DefaultLessonPlanRequest carries the form defaults.
func DefaultLessonPlanRequest() LessonPlanRequest {
	return LessonPlanRequest{
		ClassDuration:      "45 minutes",
		HomeworkPreference: "moderate",
		NumClasses:         1,
		TeachingStyle:      "interactive",
	}
}

// Validate checks the request against the offered options.
func (r LessonPlanRequest) Validate() error {
	const op = "planner.LessonPlan"
	switch {
	case strings.TrimSpace(r.SyllabusData) == "":
		return apperr.Errorf(apperr.KindInvalidInput, op, "Please upload a PDF syllabus file.")
	case r.NumClasses < MinClasses || r.NumClasses > MaxClasses:
		return apperr.Errorf(apperr.KindInvalidInput, op, "number of classes must be between %d and %d", MinClasses, MaxClasses)
	case strings.TrimSpace(r.ClassDuration) == "":
		return apperr.Errorf(apperr.KindInvalidInput, op, "class duration is required")
	case !hasOption(TeachingStyles, r.TeachingStyle):
		return apperr.Errorf(apperr.KindInvalidInput, op, "unknown teaching style %q", r.TeachingStyle)
	case !hasOption(HomeworkPreferences, r.HomeworkPreference):
		return apperr.Errorf(apperr.KindInvalidInput, op, "unknown homework preference %q", r.HomeworkPreference)
	}
	return nil
}

// Lesson is one generated lesson plan.
type Lesson struct {
	Title      string   `json:"title"`
	Duration   string   `json:"duration"`
	Objectives []string `json:"objectives"`
	Activities []string `json:"activities"`
	Homework   string   `json:"homework"`
}

// Heading returns the lesson title, falling back to its position.
func (l Lesson) Heading(index int) string {
	if l.Title != "" {
		return l.Title
	}
	return fmt.Sprintf("Lesson %d", index+1)
}

type lessonPlanResponse struct {
	Success     bool            `json:"success"`
	LessonPlans json.RawMessage `json:"lesson_plans"`
}

// LessonPlan requests lesson plans for a syllabus.
func (c *Client) LessonPlan(ctx context.Context, req LessonPlanRequest) ([]Lesson, error) {
	const op = "planner.LessonPlan"
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp lessonPlanResponse
	if err := c.post(ctx, op, "/lesson_plan", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperr.Errorf(apperr.KindBackend, op, "Failed to generate lesson plan.")
	}

	var lessons []Lesson
	if !present(resp.LessonPlans) || json.Unmarshal(resp.LessonPlans, &lessons) != nil {
		return nil, apperr.Userf(apperr.KindUnexpectedShape, op, "Lesson plans not found in response.")
	}
	return lessons, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// post sends body as JSON and decodes a successful reply into out.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperr.New(apperr.KindInvalidInput, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperr.New(apperr.KindBackend, op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("planner request failed", "path", path, "error", err)
		return apperr.New(apperr.KindBackend, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.New(apperr.KindBackend, op, err)
	}
	c.log.Debug("planner request",
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return apperr.New(apperr.KindBackend, op, errors.New(eb.Error))
		}
		return apperr.Errorf(apperr.KindBackend, op, "Request failed with status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Userf(apperr.KindUnexpectedShape, op, "No data returned from backend.")
	}
	return nil
}

// LessonPlanTitle is the heading for lesson plans built from fileName.
func LessonPlanTitle(fileName string) string {
	name := fileName
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	return "Lesson Plan for " + name
}
