package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/assistant"
	"github.com/eadteachers/teachkit/internal/export"
	"github.com/eadteachers/teachkit/internal/planner"
	"github.com/eadteachers/teachkit/internal/sourcetext"
)

const maxUploadBytes = 20 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) healthz(c *gin.Context) {
	if p, ok := s.deps.Sessions.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "sessions": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"questionTypes":       assessment.AllTypes,
		"curricula":           planner.Curricula,
		"subjects":            planner.Subjects,
		"grades":              planner.Grades,
		"classDurations":      planner.ClassDurations,
		"teachingStyles":      planner.TeachingStyles,
		"homeworkPreferences": planner.HomeworkPreferences,
	})
}

// Credential

func (s *Server) credentialStatus(c *gin.Context) {
	ok, err := s.deps.Credentials.HasKey(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": ok})
}

type credentialBody struct {
	APIKey string `json:"apiKey"`
}

func (s *Server) setCredential(c *gin.Context) {
	var body credentialBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, badRequest("Invalid request body"))
		return
	}
	if err := s.deps.Credentials.Set(c.Request.Context(), body.APIKey); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearCredential(c *gin.Context) {
	if err := s.deps.Credentials.Clear(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Assessments

type stateResponse struct {
	*assessment.State
	Score assessment.Score `json:"score"`
}

func newStateResponse(st *assessment.State) stateResponse {
	return stateResponse{State: st, Score: assessment.ScoreState(st)}
}

type createAssessmentBody struct {
	SourceText string   `json:"sourceText"`
	Types      []string `json:"types"`
}

func (s *Server) createAssessment(c *gin.Context) {
	body, err := s.generationBody(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	types, err := parseTypes(body.Types)
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	a, err := s.deps.Generator.Generate(ctx, assessment.GenerationRequest{
		SourceText: body.SourceText,
		Types:      types,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.deps.Sessions.Create(ctx, a); err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info("assessment created", "id", a.ID, "mcqs", len(a.MCQs), "short_answers", len(a.ShortAnswers))
	c.JSON(http.StatusCreated, newStateResponse(assessment.NewState(a)))
}

// generationBody accepts JSON or a multipart form whose "file" part is a
// PDF or text document.
func (s *Server) generationBody(c *gin.Context) (createAssessmentBody, error) {
	var body createAssessmentBody
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&body); err != nil {
			return body, badRequest("Invalid request body")
		}
		return body, nil
	}

	body.SourceText = c.PostForm("sourceText")
	body.Types = c.PostFormArray("types")
	if _, err := c.FormFile("file"); err == nil {
		name, data, err := readUpload(c, "file")
		if err != nil {
			return body, err
		}
		text, err := sourcetext.FromBytes(name, data, 0)
		if err != nil {
			return body, err
		}
		body.SourceText = text
	}
	return body, nil
}

func readUpload(c *gin.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, badRequest("Please upload a file")
	}
	if fh.Size > maxUploadBytes {
		return "", nil, badRequest("File is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return fh.Filename, data, nil
}

// parseTypes defaults to every type when none is given.
func parseTypes(names []string) ([]assessment.QuestionType, error) {
	if len(names) == 0 {
		return assessment.AllTypes, nil
	}
	var types []assessment.QuestionType
	for _, n := range names {
		t, ok := assessment.ParseType(strings.TrimSpace(n))
		if !ok {
			return nil, badRequest("Unknown question type %q", n)
		}
		if !assessment.HasType(types, t) {
			types = append(types, t)
		}
	}
	return types, nil
}

func itemParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return 0, badRequest("Unknown question %s", c.Param("itemId"))
	}
	return id, nil
}

func (s *Server) getAssessment(c *gin.Context) {
	st, err := s.deps.Sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStateResponse(st))
}

type selectBody struct {
	Answer *int `json:"answer"`
}

func (s *Server) selectAnswer(c *gin.Context) {
	itemID, err := itemParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var body selectBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Answer == nil {
		s.respondError(c, badRequest("An answer option is required"))
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.deps.Sessions.SelectAnswer(ctx, id, itemID, *body.Answer); err != nil {
		s.respondError(c, err)
		return
	}
	st, err := s.deps.Sessions.Load(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	q, _ := st.Assessment.MCQ(itemID)
	c.JSON(http.StatusOK, gin.H{
		"itemId":        itemID,
		"selected":      *body.Answer,
		"correct":       *body.Answer == q.CorrectAnswer,
		"correctAnswer": q.CorrectAnswer,
		"explanation":   q.Explanation,
		"score":         assessment.ScoreState(st),
	})
}

type shortAnswerBody struct {
	Answer *string `json:"answer"`
}

// submitShortAnswer stores the answer, if one is sent, and grades it. The
// item stays pending until grading settles; a second submission meanwhile
// is rejected with 409.
func (s *Server) submitShortAnswer(c *gin.Context) {
	itemID, err := itemParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var body shortAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(c, badRequest("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	st, err := s.deps.Sessions.Load(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if st.Feedback[itemID].Pending {
		s.respondError(c, assessment.ErrAlreadyGrading)
		return
	}
	if body.Answer != nil {
		if err := s.deps.Sessions.SetShortAnswer(ctx, id, itemID, *body.Answer); err != nil {
			s.respondError(c, err)
			return
		}
	}

	item, answer, err := s.deps.Sessions.BeginGrading(ctx, id, itemID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	slot := assessment.GradeSlot(ctx, s.deps.Grader, item, answer)
	// The pending mark must clear even when the client has gone away.
	if err := s.deps.Sessions.FinishGrading(context.WithoutCancel(ctx), id, itemID, slot); err != nil {
		s.respondError(c, err)
		return
	}

	st, err = s.deps.Sessions.Load(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"itemId": itemID,
		"slot":   slot,
		"score":  assessment.ScoreState(st),
	})
}

func (s *Server) getScore(c *gin.Context) {
	st, err := s.deps.Sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment.ScoreState(st))
}

func boolQuery(c *gin.Context, key string) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("%s must be true or false", key)
	}
	return b, nil
}

func (s *Server) exportAssessment(c *gin.Context) {
	st, err := s.deps.Sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	inc := export.Include{}
	if inc.MCQ, err = boolQuery(c, "mcq"); err != nil {
		s.respondError(c, err)
		return
	}
	if inc.Short, err = boolQuery(c, "short"); err != nil {
		s.respondError(c, err)
		return
	}
	doc := export.FromAssessment(st.Assessment, inc)

	switch format := c.DefaultQuery("format", "md"); format {
	case "md", "markdown":
		var buf bytes.Buffer
		if err := export.Markdown(&buf, doc); err != nil {
			s.respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="assessment.md"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", buf.Bytes())
	case "png":
		s.writePNGPage(c, doc, "assessment")
	default:
		s.respondError(c, badRequest("Unknown export format %q", format))
	}
}

// writePNGPage renders doc and writes the page selected by the 1-based
// "page" query. X-Page-Count carries the total.
func (s *Server) writePNGPage(c *gin.Context, doc export.Document, name string) {
	page := 1
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(c, badRequest("page must be a positive number"))
			return
		}
		page = n
	}
	pages, err := export.PNGPages(doc, export.PageOptions{})
	if err != nil {
		s.respondError(c, err)
		return
	}
	if page > len(pages) {
		s.respondError(c, badRequest("page %d is out of range (1-%d)", page, len(pages)))
		return
	}

	var buf bytes.Buffer
	if err := export.WritePNG(&buf, pages[page-1]); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("X-Page-Count", strconv.Itoa(len(pages)))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-page-%d.png"`, name, page))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Assistants

type askBody struct {
	assistant.SubjectContext
	Question string `json:"question"`
}

func (s *Server) ask(c *gin.Context) {
	role, ok := assistant.ParseRole(c.Param("role"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errorBody{
			Message: "Unknown assistant.",
			Code:    "not_found",
		}})
		return
	}
	a := s.deps.Teacher
	if role == assistant.Student {
		a = s.deps.Student
	}

	var body askBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, badRequest("Invalid request body"))
		return
	}
	html, err := a.Ask(c.Request.Context(), body.SubjectContext, body.Question)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role": role,
		"html": html,
		"text": assistant.PlainText(html),
	})
}

// Plans

func (s *Server) termPlan(c *gin.Context) {
	var req planner.TermPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest("Invalid request body"))
		return
	}
	plan, err := s.deps.Planner.TermPlan(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":           req.Title(),
		"response":        plan.Response,
		"sources":         plan.Sources,
		"collection_used": plan.CollectionUsed,
	})
}

// lessonPlan accepts the request as JSON, or as a multipart form whose
// "syllabus" part is the syllabus PDF.
func (s *Server) lessonPlan(c *gin.Context) {
	req := planner.DefaultLessonPlanRequest()
	title := "Lesson Plan"

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := lessonPlanFromForm(c, &req); err != nil {
			s.respondError(c, err)
			return
		}
		name, data, err := readUpload(c, "syllabus")
		if err != nil {
			s.respondError(c, err)
			return
		}
		text, err := sourcetext.FromBytes(name, data, sourcetext.LessonPlanPages)
		if err != nil {
			s.respondError(c, err)
			return
		}
		req.SyllabusData = text
		title = planner.LessonPlanTitle(name)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest("Invalid request body"))
		return
	}

	lessons, err := s.deps.Planner.LessonPlan(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title, "lesson_plans": lessons})
}

func lessonPlanFromForm(c *gin.Context, req *planner.LessonPlanRequest) error {
	if v := c.PostForm("class_duration"); v != "" {
		req.ClassDuration = v
	}
	if v := c.PostForm("homework_preference"); v != "" {
		req.HomeworkPreference = v
	}
	if v := c.PostForm("teaching_style"); v != "" {
		req.TeachingStyle = v
	}
	if v := c.PostForm("num_classes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest("num_classes must be a number")
		}
		req.NumClasses = n
	}
	return nil
}
