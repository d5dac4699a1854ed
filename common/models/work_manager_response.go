package models

import (
	"encoding/json"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/samber/lo"
)

type CrawlLogResponse struct {
	ID        string    `json:"id"`
	Portal    string    `json:"portal"`
	JobID     string    `json:"job_id"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	Details   any       `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCrawlLogResponse(l repository.CrawlLog) CrawlLogResponse {
	var details any
	if len(l.Details) > 0 {
		if err := json.Unmarshal(l.Details, &details); err != nil {
			details = string(l.Details)
		}
	}
	return CrawlLogResponse{
		ID:        l.ID,
		Portal:    l.Portal,
		JobID:     l.JobID.String,
		EventType: l.EventType,
		Message:   l.Message.String,
		Details:   details,
		CreatedAt: l.CreatedAt,
	}
}

type WorkDetailResponse struct {
	Job  repository.Job     `json:"job"`
	Logs []CrawlLogResponse `json:"logs"`
}

func NewWorkDetailResponse(job repository.Job, logs []repository.CrawlLog) WorkDetailResponse {
	return WorkDetailResponse{
		Job: job,
		Logs: lo.Map(logs, func(l repository.CrawlLog, _ int) CrawlLogResponse {
			return NewCrawlLogResponse(l)
		}),
	}
}
