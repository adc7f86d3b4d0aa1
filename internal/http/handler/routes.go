package handler

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"articleapi/internal/model"
	"articleapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin: parsing and status mapping only, all semantics live behind the
// store service.
func RegisterRoutes(app *fiber.App, store service.StoreService, gatherer prometheus.Gatherer, keepAlive time.Duration) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(store))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Get("/articles", ListArticles(store))
	app.Post("/articles", CreateArticle(store))
	app.Get("/articles/:id", GetArticle(store))
	app.Put("/articles/:id", UpdateArticle(store))
	app.Delete("/articles/:id", DeleteArticle(store))

	app.Get("/attachments/:name", GetAttachment(store))
	app.Get("/events", StreamEvents(store, keepAlive))
}

// LivenessProbe is a trivial liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// HealthCheck probes the article store with a short timeout.
func HealthCheck(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if _, err := store.ListArticles(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "store unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// ListArticles returns article summaries, newest first.
//
// @Summary List articles
// @Produce json
// @Success 200 {array} repository.ArticleSummary
// @Router /articles [get]
func ListArticles(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summaries, err := store.ListArticles(c.UserContext())
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(summaries)
	}
}

// GetArticle returns one full article.
//
// @Summary Get an article
// @Produce json
// @Param id path string true "article id"
// @Success 200 {object} model.Article
// @Failure 404 {object} errorPayload
// @Router /articles/{id} [get]
func GetArticle(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		article, err := store.GetArticle(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(article)
	}
}

// CreateArticle creates an article from a multipart form (fields title,
// content, repeated attachments files) or a plain JSON body when no
// attachments are sent.
//
// @Summary Create an article
// @Accept mpfd,json
// @Produce json
// @Success 201 {object} model.Article
// @Failure 400 {object} errorPayload
// @Router /articles [post]
func CreateArticle(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := parseArticleForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}
		defer form.Close()

		article, err := store.CreateArticle(c.UserContext(), form.title, form.content, form.candidates)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(article)
	}
}

// UpdateArticle edits an article in place. Repeated "removed" form values
// name stored attachment files to drop; new files are appended.
//
// @Summary Update an article
// @Accept mpfd,json
// @Produce json
// @Param id path string true "article id"
// @Success 200 {object} model.Article
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /articles/{id} [put]
func UpdateArticle(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := parseArticleForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}
		defer form.Close()

		article, err := store.UpdateArticle(c.UserContext(), c.Params("id"), form.title, form.content, form.removed, form.candidates)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(article)
	}
}

// DeleteArticle removes an article and its attachments.
//
// @Summary Delete an article
// @Param id path string true "article id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /articles/{id} [delete]
func DeleteArticle(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteArticle(c.UserContext(), c.Params("id")); err != nil {
			return writeStoreError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetAttachment streams stored attachment bytes. Traversal attempts and
// unknown names are both a plain 404.
//
// @Summary Download an attachment
// @Param name path string true "stored filename"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /attachments/{name} [get]
func GetAttachment(store service.StoreService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		rc, err := store.OpenAttachment(c.UserContext(), name)
		if err != nil {
			return writeStoreError(c, err)
		}

		if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
			c.Set(fiber.HeaderContentType, ct)
		} else {
			c.Set(fiber.HeaderContentType, "application/octet-stream")
		}
		return c.SendStream(rc)
	}
}

// articleForm is the parsed create/update request: scalar fields plus
// attachment candidates whose readers stay open until the store consumed
// them.
type articleForm struct {
	title      string
	content    string
	removed    []string
	candidates []model.AttachmentCandidate
	closers    []io.Closer
}

func (f *articleForm) Close() {
	for _, cl := range f.closers {
		cl.Close()
	}
}

func parseArticleForm(c *fiber.Ctx) (*articleForm, error) {
	ct := string(c.Request().Header.ContentType())
	if !strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err != nil {
			return nil, err
		}
		return &articleForm{title: body.Title, content: body.Content}, nil
	}

	mp, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	form := &articleForm{
		title:   firstValue(mp.Value["title"]),
		content: firstValue(mp.Value["content"]),
		removed: mp.Value["removed"],
	}
	for _, fh := range mp.File["attachments"] {
		f, err := fh.Open()
		if err != nil {
			form.Close()
			return nil, err
		}
		form.closers = append(form.closers, f)
		form.candidates = append(form.candidates, model.AttachmentCandidate{
			Name:         fh.Filename,
			Reader:       f,
			Size:         fh.Size,
			DeclaredType: model.MediaType(fh.Header.Get("Content-Type")),
		})
	}
	return form, nil
}

func firstValue(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
