package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/assistant"
	"github.com/eadteachers/teachkit/internal/config"
	"github.com/eadteachers/teachkit/internal/credential"
	"github.com/eadteachers/teachkit/internal/llm"
	"github.com/eadteachers/teachkit/internal/metrics"
	"github.com/eadteachers/teachkit/internal/planner"
	"github.com/eadteachers/teachkit/internal/prompts"
	"github.com/eadteachers/teachkit/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func mcqReply(n int) string {
	items := make([]string, n)
	for i := range n {
		items[i] = fmt.Sprintf(`{"id": %d, "question": "Question %d?", "options": ["A", "B", "C", "D"], "correctAnswer": %d, "explanation": "Because."}`,
			i+1, i+1, i%4)
	}
	return "Here you go:\n[" + strings.Join(items, ",") + "]"
}

func shortReply(n int) string {
	items := make([]string, n)
	for i := range n {
		items[i] = fmt.Sprintf(`{"id": %d, "question": "Explain idea %d.", "expectedAnswer": "Model.", "keyPoints": [], "commonMisconceptions": [], "gradingCriteria": {"excellent": "a", "good": "b", "fair": "c", "poor": "d", "zero": "e"}}`,
			i+1, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

// fakeModel answers by request kind so calls may arrive in any order.
func fakeModel(req llm.Request) llm.MockResponse {
	var user string
	if len(req.Messages) > 0 {
		user = req.Messages[0].Content
	}
	switch {
	case user == prompts.MCQUserMessage:
		return llm.MockResponse{Text: mcqReply(prompts.MCQCount)}
	case user == prompts.ShortAnswerUserMessage:
		return llm.MockResponse{Text: shortReply(prompts.ShortAnswerCount)}
	case user == prompts.GradingUserMessage && strings.Contains(req.System, "good answer"):
		return llm.MockResponse{Text: `{"score": 90, "feedback": "Great", "keyPointsCovered": [{"point": "P", "quality": "good"}]}`}
	case user == prompts.GradingUserMessage:
		return llm.MockResponse{Text: "I cannot grade this."}
	}
	return llm.MockResponse{Text: "<p>Try a <b>number line</b>.</p><script>alert(1)</script>"}
}

type testEnv struct {
	server   *Server
	provider *llm.MockProvider
	backend  *httptest.Server
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, sessions SessionStore) *testEnv {
	t.Helper()
	provider := llm.NewMockProvider()
	provider.Responder = fakeModel

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/terms_plan":
			json.NewEncoder(w).Encode(map[string]any{
				"response": "## Term 1\n- Habitats",
				"sources":  []string{"science-4.pdf"},
			})
		case "/api/lesson_plan":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"lesson_plans": []map[string]any{{
					"title":    "Plants",
					"duration": body["class_duration"],
				}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	db, err := store.Open(filepath.Join(t.TempDir(), "teachkit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := metrics.New()
	instrumented := m.InstrumentProvider(provider)
	cfg := assessment.DefaultConfig()
	deps := Deps{
		Generator:   assessment.NewGenerator(instrumented, cfg),
		Grader:      assessment.NewGrader(instrumented, cfg),
		Teacher:     assistant.New(assistant.Teacher, instrumented, assistant.DefaultConfig(), nil),
		Student:     assistant.New(assistant.Student, instrumented, assistant.DefaultConfig(), nil),
		Planner:     planner.New(planner.Config{BaseURL: backend.URL + "/api"}, nil),
		Credentials: credential.NewStore(db.SettingsRepo()),
		Sessions:    sessions,
		Metrics:     m,
	}
	srv := New(deps, config.ServerConfig{Mode: gin.TestMode, AllowedOrigins: []string{"*"}})
	return &testEnv{server: srv, provider: provider, backend: backend, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type apiError struct {
	Error errorBody `json:"error"`
}

type stateBody struct {
	ID         string                `json:"id"`
	Assessment assessment.Assessment `json:"assessment"`
	Score      assessment.Score      `json:"score"`
}

func (e *testEnv) createAssessment(t *testing.T) stateBody {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/assessments", map[string]any{
		"sourceText": "Plants need light and water to grow.",
		"types":      []string{"mcq", "short"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[stateBody](t, rec)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAssessmentFlow(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	created := env.createAssessment(t)

	require.NotEmpty(t, created.ID)
	assert.Len(t, created.Assessment.MCQs, prompts.MCQCount)
	assert.Len(t, created.Assessment.ShortAnswers, prompts.ShortAnswerCount)
	require.NotNil(t, created.Score.MCQ)
	assert.Zero(t, *created.Score.MCQ)
	assert.False(t, created.Score.Complete)

	base := "/api/assessments/" + created.ID

	rec := env.do(t, http.MethodPut, base+"/mcq/1", map[string]any{"answer": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sel := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, sel["correct"])
	assert.Equal(t, "Because.", sel["explanation"])

	rec = env.do(t, http.MethodPost, base+"/short/1", map[string]any{"answer": "a good answer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	graded := decodeBody[struct {
		Slot assessment.FeedbackSlot `json:"slot"`
	}](t, rec)
	require.True(t, graded.Slot.Graded())
	assert.Equal(t, 90.0, graded.Slot.Feedback.Score)
	assert.Empty(t, graded.Slot.Feedback.Misconceptions)

	rec = env.do(t, http.MethodGet, base+"/score", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	score := decodeBody[assessment.Score](t, rec)
	require.NotNil(t, score.MCQ)
	require.NotNil(t, score.Short)
	assert.Equal(t, 20.0, *score.MCQ)
	assert.Equal(t, 90.0, *score.Short)
	assert.Equal(t, 55.0, score.Final)
	assert.False(t, score.Complete)
}

func TestSubmitShortAnswer_GradingFailureBecomesSlotError(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	created := env.createAssessment(t)

	rec := env.do(t, http.MethodPost, "/api/assessments/"+created.ID+"/short/2", map[string]any{"answer": "meh"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[struct {
		Slot  assessment.FeedbackSlot `json:"slot"`
		Score assessment.Score        `json:"score"`
	}](t, rec)
	assert.Equal(t, "Could not find valid JSON in the AI response. Please try again.", body.Slot.Err)
	require.NotNil(t, body.Score.Short)
	assert.Zero(t, *body.Score.Short)
}

func TestSubmitShortAnswer_Rejections(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	created := env.createAssessment(t)
	base := "/api/assessments/" + created.ID

	rec := env.do(t, http.MethodPost, base+"/short/1", map[string]any{"answer": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please write an answer before submitting", decodeBody[apiError](t, rec).Error.Message)

	rec = env.do(t, http.MethodPost, base+"/short/9", map[string]any{"answer": "text"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/assessments/missing/short/1", map[string]any{"answer": "text"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[apiError](t, rec).Error.Code)
}

func TestSubmitShortAnswer_PendingConflict(t *testing.T) {
	sessions := NewMemoryStore(time.Hour)
	env := newTestEnv(t, sessions)
	created := env.createAssessment(t)

	ctx := t.Context()
	require.NoError(t, sessions.SetShortAnswer(ctx, created.ID, 1, "draft"))
	_, _, err := sessions.BeginGrading(ctx, created.ID, 1)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/assessments/"+created.ID+"/short/1", map[string]any{"answer": "a good answer"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This answer is already being graded.", decodeBody[apiError](t, rec).Error.Message)
}

func TestSelectAnswer_Invalid(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	created := env.createAssessment(t)
	base := "/api/assessments/" + created.ID

	for _, tc := range []struct {
		name string
		path string
		body any
	}{
		{"no answer", base + "/mcq/1", map[string]any{}},
		{"option out of range", base + "/mcq/1", map[string]any{"answer": 4}},
		{"unknown item", base + "/mcq/42", map[string]any{"answer": 0}},
		{"bad item id", base + "/mcq/x", map[string]any{"answer": 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_input", decodeBody[apiError](t, rec).Error.Code)
		})
	}
}

func TestCreateAssessment_Errors(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))

	rec := env.do(t, http.MethodPost, "/api/assessments", map[string]any{"sourceText": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter text or upload a PDF file", decodeBody[apiError](t, rec).Error.Message)

	rec = env.do(t, http.MethodPost, "/api/assessments", map[string]any{"sourceText": "x", "types": []string{"essay"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.provider.Responder = func(llm.Request) llm.MockResponse {
		return llm.MockResponse{Text: "[{oops}]"}
	}
	rec = env.do(t, http.MethodPost, "/api/assessments", map[string]any{"sourceText": "text", "types": []string{"mcq"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "malformed_payload", decodeBody[apiError](t, rec).Error.Code)
}

func TestCreateAssessment_MultipartTextUpload(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("types", "mcq"))
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Photosynthesis turns light into chemical energy."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[stateBody](t, rec)
	assert.Equal(t, []assessment.QuestionType{assessment.TypeMCQ}, created.Assessment.Types)
	assert.Empty(t, created.Assessment.ShortAnswers)

	call, ok := env.provider.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.System, "Photosynthesis turns light into chemical energy.")
}

func TestExportAssessment(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	created := env.createAssessment(t)
	base := "/api/assessments/" + created.ID + "/export"

	rec := env.do(t, http.MethodGet, base+"?short=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Multiple Choice Questions")
	assert.NotContains(t, rec.Body.String(), "Short Answer Questions")

	rec = env.do(t, http.MethodGet, base+"?format=png&short=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Page-Count"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = env.do(t, http.MethodGet, base+"?format=png&page=3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistant(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))

	rec := env.do(t, http.MethodPost, "/api/assistant/student", map[string]any{
		"subject": "maths", "grade": "3", "curriculum": "ontario",
		"question": "How do I add fractions?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "student", body["role"])
	assert.NotContains(t, body["html"], "<script>")
	assert.Contains(t, body["html"], "<b>number line</b>")
	assert.Equal(t, "Try a number line.", body["text"])

	rec = env.do(t, http.MethodPost, "/api/assistant/teacher", map[string]any{"question": "Hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select curriculum, subject, and grade before asking a question.",
		decodeBody[apiError](t, rec).Error.Message)

	rec = env.do(t, http.MethodPost, "/api/assistant/parent", map[string]any{"question": "Hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlans(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))

	rec := env.do(t, http.MethodPost, "/api/plans/term", map[string]any{
		"curriculum": "ontario", "subject": "science", "grade": "4", "query": "habitats",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	term := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Science - Grade 4", term["title"])
	assert.Equal(t, []any{"science-4.pdf"}, term["sources"])

	rec = env.do(t, http.MethodPost, "/api/plans/term", map[string]any{"curriculum": "mars"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/plans/lesson", map[string]any{
		"syllabus_data": "Unit 1: Plants", "num_classes": 2, "class_duration": "60 minutes",
		"teaching_style": "interactive", "homework_preference": "none",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lesson := decodeBody[struct {
		Title   string           `json:"title"`
		Lessons []planner.Lesson `json:"lesson_plans"`
	}](t, rec)
	assert.Equal(t, "Lesson Plan", lesson.Title)
	require.Len(t, lesson.Lessons, 1)
	assert.Equal(t, "60 minutes", lesson.Lessons[0].Duration)
}

func TestCredentialEndpoints(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))

	rec := env.do(t, http.MethodGet, "/api/credential", nil)
	assert.JSONEq(t, `{"configured":false}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/credential", map[string]any{"apiKey": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter your API key", decodeBody[apiError](t, rec).Error.Message)

	rec = env.do(t, http.MethodPut, "/api/credential", map[string]any{"apiKey": "gsk_test"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/credential", nil)
	assert.JSONEq(t, `{"configured":true}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "gsk_test")

	rec = env.do(t, http.MethodDelete, "/api/credential", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/credential", nil)
	assert.JSONEq(t, `{"configured":false}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, NewMemoryStore(time.Hour))
	env.createAssessment(t)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `teachkit_llm_requests_total{outcome="ok",purpose="mcq-gen"} 1`)
	assert.Contains(t, body, `teachkit_http_requests_total{endpoint="/api/assessments",method="POST",status="201"} 1`)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(2, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(0, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 5 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://teach.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://teach.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://teach.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
