package dto

// UpdateSyncConfigRequest carries partial sync settings. Nil fields keep the
// stored value.
type UpdateSyncConfigRequest struct {
	Enabled      *bool `json:"enabled"`
	FullContent  *bool `json:"full_content"`
	LookbackDays *int  `json:"lookback_days"`
	MaxThreads   *int  `json:"max_threads"`
}
