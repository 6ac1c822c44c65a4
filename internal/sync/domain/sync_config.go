package domain

import "time"

// Defaults applied when the user never saved a sync config.
const (
	DefaultLookbackDays = 90
	DefaultMaxThreads   = 200
	maxThreadsCeiling   = 500
)

// SyncConfig holds per-user Gmail sync settings. A missing row means the
// defaults apply.
type SyncConfig struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	// Enabled gates both scheduled and manual Gmail syncs.
	Enabled bool `json:"enabled"`
	// FullContent keeps sanitized snippets and bodies on threads. When off,
	// only subjects, counters and timestamps are retained.
	FullContent  bool `json:"full_content"`
	LookbackDays int  `json:"lookback_days"`
	MaxThreads   int  `json:"max_threads"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize clamps unset or out-of-range values back to the defaults.
func (c *SyncConfig) Normalize() {
	if c.LookbackDays <= 0 {
		c.LookbackDays = DefaultLookbackDays
	}
	if c.MaxThreads <= 0 || c.MaxThreads > maxThreadsCeiling {
		c.MaxThreads = DefaultMaxThreads
	}
}

// DefaultSyncConfig is the effective config for users who never saved one.
func DefaultSyncConfig(userID string) *SyncConfig {
	return &SyncConfig{
		UserID:       userID,
		Enabled:      true,
		FullContent:  true,
		LookbackDays: DefaultLookbackDays,
		MaxThreads:   DefaultMaxThreads,
	}
}
