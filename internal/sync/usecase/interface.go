package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	syncdomain "netcrm-backend/internal/sync/domain"
	"netcrm-backend/internal/sync/dto"
	"netcrm-backend/pkg/google"
)

var (
	ErrNotConnected = errors.New("integration not connected")
	ErrSyncDisabled = errors.New("sync disabled for user")
	ErrJobNotFound  = errors.New("import job not found")
)

// GoogleGateway is the slice of the Google client the sync jobs use. Faked in
// tests.
type GoogleGateway interface {
	Profile(ctx context.Context, accessToken, refreshToken string, onRefresh google.TokenUpdateFunc) (string, error)
	ListThreads(ctx context.Context, accessToken, refreshToken, selfEmail string, after time.Time, maxThreads int, onRefresh google.TokenUpdateFunc) ([]*google.ThreadSummary, error)
	ListContacts(ctx context.Context, accessToken, refreshToken string, onRefresh google.TokenUpdateFunc) ([]*google.PersonRecord, error)
	ListEvents(ctx context.Context, accessToken, refreshToken string, from, to time.Time, onRefresh google.TokenUpdateFunc) ([]*google.EventRecord, error)
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Provider        string `json:"provider"`
	ThreadsSeen     int    `json:"threads_seen,omitempty"`
	ThreadsCreated  int    `json:"threads_created,omitempty"`
	EventsSeen      int    `json:"events_seen,omitempty"`
	ContactsTouched int    `json:"contacts_touched"`
}

type SyncUsecase interface {
	// SyncGmail pulls recent threads for the user and updates contacts,
	// threads and interactions.
	SyncGmail(ctx context.Context, userID string) (*SyncResult, error)
	// ScanCalendar records past meetings as interactions and stamps the next
	// upcoming meeting on each contact.
	ScanCalendar(ctx context.Context, userID string) (*SyncResult, error)
	// ImportGoogleContacts runs a People API import, tracked as a job.
	ImportGoogleContacts(ctx context.Context, userID string) (*syncdomain.ImportJob, error)
	// ImportCSV parses the uploaded file and creates or updates contacts,
	// tracked as a job.
	ImportCSV(userID string, r io.Reader) (*syncdomain.ImportJob, error)

	GetImportJob(userID, jobID string) (*syncdomain.ImportJob, error)
	ListImportJobs(userID string) ([]*syncdomain.ImportJob, error)
	ListThreadsByContact(userID, contactID string, limit, offset int) ([]*syncdomain.EmailThread, int64, error)

	// GetSyncConfig returns the user's effective sync settings, defaults
	// included when nothing was saved yet.
	GetSyncConfig(userID string) (*syncdomain.SyncConfig, error)
	UpdateSyncConfig(userID string, req *dto.UpdateSyncConfigRequest) (*syncdomain.SyncConfig, error)
}
