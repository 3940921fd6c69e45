// Package domain holds the fetch state machine types shared by transport and service
package domain

// Phase is the lifecycle position of the raw dataset download
type Phase string

const (
	// PhaseNotStarted means no fetch has been triggered this process
	PhaseNotStarted Phase = "not_started"
	// PhaseInProgress means a download goroutine is running
	PhaseInProgress Phase = "in_progress"
	// PhaseComplete means this process downloaded the file successfully
	PhaseComplete Phase = "complete"
	// PhaseAlreadyPresent means a verified complete file was found on disk
	PhaseAlreadyPresent Phase = "already_present"
	// PhaseFailed means the last attempt ended in an error, see Error
	PhaseFailed Phase = "failed"
)

// Terminal reports whether p is an end state of the machine
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseAlreadyPresent || p == PhaseFailed
}

// FetchState is a snapshot of the download lifecycle
// TotalBytes is -1 when the source does not advertise a length
type FetchState struct {
	Phase      Phase  `json:"phase"`
	BytesRead  int64  `json:"bytes_read"`
	TotalBytes int64  `json:"total_bytes"`
	Error      string `json:"error,omitempty"`
}
