package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"articleapi/internal/model"
	"articleapi/internal/repository"
	serviceMocks "articleapi/internal/service/mocks"
)

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Get("/health", HealthCheck(mockSvc))

	t.Run("healthy", func(t *testing.T) {
		mockSvc.On("ListArticles", mock.Anything).Return([]repository.ArticleSummary{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		mockSvc.On("ListArticles", mock.Anything).Return(nil, errors.New("disk error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestListArticles(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Get("/articles", ListArticles(mockSvc))

	t.Run("success", func(t *testing.T) {
		summaries := []repository.ArticleSummary{
			{ID: "1700000000001", Title: "newer"},
			{ID: "1700000000000", Title: "older"},
		}
		mockSvc.On("ListArticles", mock.Anything).Return(summaries, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []repository.ArticleSummary
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 2)
		assert.Equal(t, "newer", result[0].Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListArticles", mock.Anything).Return(nil, errors.New("disk error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Get("/articles/:id", GetArticle(mockSvc))

	t.Run("success", func(t *testing.T) {
		article := &model.Article{ID: "1700000000000", Title: "Hi", Content: "<p>World</p>"}
		mockSvc.On("GetArticle", mock.Anything, "1700000000000").Return(article, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles/1700000000000", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Article
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "Hi", result.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("GetArticle", mock.Anything, "42").Return(nil, model.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles/42", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Post("/articles", CreateArticle(mockSvc))

	t.Run("json body", func(t *testing.T) {
		article := &model.Article{ID: "1700000000000", Title: "Hi", Content: "<p>World</p>"}
		mockSvc.On("CreateArticle", mock.Anything, "Hi", "<p>World</p>", []model.AttachmentCandidate(nil)).
			Return(article, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/articles",
			strings.NewReader(`{"title":"Hi","content":"<p>World</p>"}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Article
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, article.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("multipart with attachments", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("title", "Hi")
		writer.WriteField("content", "<p>World</p>")

		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="attachments"; filename="a.pdf"`)
		hdr.Set("Content-Type", "application/pdf")
		part, err := writer.CreatePart(hdr)
		require.NoError(t, err)
		part.Write([]byte("%PDF-1.4"))
		writer.Close()

		article := &model.Article{ID: "1700000000000", Title: "Hi"}
		mockSvc.On("CreateArticle", mock.Anything, "Hi", "<p>World</p>",
			mock.MatchedBy(func(cands []model.AttachmentCandidate) bool {
				return len(cands) == 1 &&
					cands[0].Name == "a.pdf" &&
					cands[0].DeclaredType == model.MediaPDF &&
					cands[0].Size == int64(len("%PDF-1.4"))
			})).Return(article, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/articles", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc.On("CreateArticle", mock.Anything, "", "<p>World</p>", []model.AttachmentCandidate(nil)).
			Return(nil, model.NewValidationError("title", "is required")).Once()

		req := httptest.NewRequest(http.MethodPost, "/articles",
			strings.NewReader(`{"title":"","content":"<p>World</p>"}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "title")
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "BAD_REQUEST", body.Error.Code)
	})
}

func TestUpdateArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Put("/articles/:id", UpdateArticle(mockSvc))

	t.Run("multipart with removals", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("title", "Hi2")
		writer.WriteField("content", "<p>World2</p>")
		writer.WriteField("removed", "1700000000000-a.pdf")
		writer.Close()

		article := &model.Article{ID: "1700000000000", Title: "Hi2"}
		mockSvc.On("UpdateArticle", mock.Anything, "1700000000000", "Hi2", "<p>World2</p>",
			[]string{"1700000000000-a.pdf"}, []model.AttachmentCandidate(nil)).
			Return(article, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/articles/1700000000000", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Article
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "Hi2", result.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("UpdateArticle", mock.Anything, "42", "t", "<p>c</p>",
			[]string(nil), []model.AttachmentCandidate(nil)).
			Return(nil, model.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/articles/42",
			strings.NewReader(`{"title":"t","content":"<p>c</p>"}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Delete("/articles/:id", DeleteArticle(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("DeleteArticle", mock.Anything, "1700000000000").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/articles/1700000000000", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("DeleteArticle", mock.Anything, "42").Return(model.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/articles/42", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockStoreService)
	app := fiber.New()
	app.Get("/attachments/:name", GetAttachment(mockSvc))

	t.Run("success", func(t *testing.T) {
		rc := io.NopCloser(strings.NewReader("%PDF-1.4 payload"))
		mockSvc.On("OpenAttachment", mock.Anything, "1700000000000-a.pdf").Return(rc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/attachments/1700000000000-a.pdf", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.4 payload", string(data))
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		rc := io.NopCloser(strings.NewReader("data"))
		mockSvc.On("OpenAttachment", mock.Anything, "1700000000000-blob").Return(rc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/attachments/1700000000000-blob", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("OpenAttachment", mock.Anything, "missing.pdf").Return(nil, model.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/attachments/missing.pdf", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockStoreService)
	app.Use(cors.New())
	RegisterRoutes(app, mockSvc, prometheus.NewRegistry(), 15*time.Second)

	t.Run("cross-origin viewers are allowed", func(t *testing.T) {
		mockSvc.On("ListArticles", mock.Anything).Return([]repository.ArticleSummary{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "METHOD_NOT_ALLOWED", body.Error.Code)
	})
}
