package downloader

import (
	"langpack-manager/pkg/models"
)

// StateStore defines the persisted resume-record operations used by the downloader
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type StateStore interface {
	Save(state *models.ResumeState) error
	Get(packID string) (*models.ResumeState, error)
	Delete(packID string) error
	List() ([]*models.ResumeState, error)
}

// Storage defines the filesystem operations used by the downloader
type Storage interface {
	PackDir(packID string) (string, error)
	TempDir() (string, error)
	IsPackInstalled(packID string) bool
	VerifyPackIntegrity(packID string) bool
	HasEnoughSpace(requiredBytes int64) bool
	DeletePack(packID string) bool
}

// BackgroundScheduler defines the OS-job-scheduler bridge operations.
// Registration is best effort: a failure here never aborts a foreground
// download.
type BackgroundScheduler interface {
	ScheduleDownload(packID string) error
	ScheduleResume(packID string) error
	CancelJob(packID string) error
}
