// internal/workers/support/sync-programs/models.go
package syncprograms

type Input struct {
	PageNo   int `json:"pageNo,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
	MaxPages int `json:"maxPages,omitempty"`
}

type Output struct {
	Synced     int    `json:"synced"`
	TotalCount int    `json:"totalCount"`
	Pages      int    `json:"pages"`
	SyncedAt   string `json:"syncedAt"`
}
