package identity

import (
	"errors"
	"io/fs"

	"github.com/benmeehan/geotrack/pkg/file"
	"github.com/google/uuid"
)

// Identity holds the tracker's unique identifier and display name.
type Identity struct {
	ID   string `json:"tracker_id,omitempty"`
	Name string `json:"tracker_name,omitempty"`
}

// TrackerInfoInterface defines methods for managing the tracker identity.
type TrackerInfoInterface interface {
	LoadTrackerInfo() error
	EnsureTrackerID() (string, error)
	GetTrackerID() string
	GetTrackerIdentity() *Identity
}

// TrackerInfo manages the tracker identity and its backing file.
type TrackerInfo struct {
	TrackerInfoFile string
	Identity        Identity
	fileOps         file.FileOperations
}

// NewTrackerInfo initializes a new TrackerInfo instance.
func NewTrackerInfo(filePath string, fileOps file.FileOperations) *TrackerInfo {
	return &TrackerInfo{
		TrackerInfoFile: filePath,
		fileOps:         fileOps,
	}
}

// LoadTrackerInfo reads the identity file. A missing file leaves the identity empty.
func (t *TrackerInfo) LoadTrackerInfo() error {
	err := t.fileOps.ReadJsonFile(t.TrackerInfoFile, &t.Identity)
	if errors.Is(err, fs.ErrNotExist) {
		t.Identity = Identity{}
		return nil
	}
	return err
}

// EnsureTrackerID returns the persisted tracker ID, generating and saving one on first use.
func (t *TrackerInfo) EnsureTrackerID() (string, error) {
	if err := t.LoadTrackerInfo(); err != nil {
		return "", err
	}
	if t.Identity.ID != "" {
		return t.Identity.ID, nil
	}

	t.Identity.ID = uuid.New().String()
	if err := t.fileOps.WriteJsonFile(t.TrackerInfoFile, t.Identity); err != nil {
		t.Identity.ID = ""
		return "", err
	}
	return t.Identity.ID, nil
}

// GetTrackerIdentity returns the current tracker Identity.
func (t *TrackerInfo) GetTrackerIdentity() *Identity {
	return &t.Identity
}

// GetTrackerID returns the current tracker ID.
func (t *TrackerInfo) GetTrackerID() string {
	return t.Identity.ID
}
