package fsdb

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/microcosm-cc/bluemonday"

	"articleapi/internal/model"
)

// tagStripper reduces rich-text markup to its text content for the
// "non-empty after stripping tags" rule. An editor's empty document is
// typically "<p><br></p>", which strips to nothing.
var tagStripper = bluemonday.StrictPolicy()

// validateArticleInput checks title and content before any storage is
// touched. Title must be non-empty after trimming; content must contain
// actual text once markup is stripped.
func validateArticleInput(title, content string) error {
	if err := validation.Validate(strings.TrimSpace(title),
		validation.Required.Error("is required"),
	); err != nil {
		return model.NewValidationError("title", err.Error())
	}

	plain := strings.TrimSpace(tagStripper.Sanitize(content))
	if err := validation.Validate(plain,
		validation.Required.Error("is required"),
	); err != nil {
		return model.NewValidationError("content", err.Error())
	}
	return nil
}
