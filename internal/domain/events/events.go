package events

import (
	"time"

	"github.com/jobradar/jobradar/internal/domain/models"
)

var JobFoundTopic = "JobFoundEvent"

type JobFound struct {
	Job      models.JobRecord
	Keywords string
}

var SearchCompletedTopic = "SearchCompletedEvent"

type SearchCompleted struct {
	Request    models.SearchRequest
	Found      int
	Persisted  int
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}
