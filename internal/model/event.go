package model

// EventType tags a change notification.
type EventType string

const (
	EventArticleCreated EventType = "article_created"
	EventArticleUpdated EventType = "article_updated"
)

// ChangeEvent is the payload fanned out to live subscribers when an article
// is created or updated. It carries the id and title only, never the body,
// and is never persisted.
type ChangeEvent struct {
	Type    EventType      `json:"type"`
	Article ChangedArticle `json:"article"`
}

// ChangedArticle identifies the article a ChangeEvent refers to.
type ChangedArticle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreatedEvent builds an article_created event for a.
func CreatedEvent(a *Article) ChangeEvent {
	return ChangeEvent{Type: EventArticleCreated, Article: ChangedArticle{ID: a.ID, Title: a.Title}}
}

// UpdatedEvent builds an article_updated event for a.
func UpdatedEvent(a *Article) ChangeEvent {
	return ChangeEvent{Type: EventArticleUpdated, Article: ChangedArticle{ID: a.ID, Title: a.Title}}
}
