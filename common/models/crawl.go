package models

// CrawlRequest is the payload accepted by the HTTP and NATS triggers.
// Zero values fall back to the CRAWL_* configuration.
type CrawlRequest struct {
	// Portals lists registered portal names or portal URLs. Empty means
	// every portal.
	Portals           []string `json:"portals" validate:"omitempty,dive,required"`
	Keywords          []string `json:"keywords" validate:"omitempty,dive,required,max=200"`
	MaxPages          int      `json:"max_pages" validate:"omitempty,min=1,max=100"`
	MaxInteractions   int      `json:"max_interactions" validate:"omitempty,min=0,max=100"`
	DelayMs           int      `json:"delay_ms" validate:"omitempty,min=0,max=60000"`
	JitterMs          int      `json:"jitter_ms" validate:"omitempty,min=0,max=60000"`
	TimeBudgetSeconds int      `json:"time_budget_seconds" validate:"omitempty,min=1,max=86400"`
}

// PortalRun pairs a portal with the job that tracked its run.
type PortalRun struct {
	Portal string      `json:"portal"`
	JobID  string      `json:"job_id"`
	Status string      `json:"status"`
	Result CrawlResult `json:"result"`
}

// QueuedRun is returned by the asynchronous trigger.
type QueuedRun struct {
	Portal string `json:"portal"`
	JobID  string `json:"job_id"`
}

// PortalInfo is the public description of a registered portal.
type PortalInfo struct {
	Name       string `json:"name"`
	BaseURL    string `json:"base_url"`
	Mode       string `json:"mode"`
	Pagination string `json:"pagination"`
}
