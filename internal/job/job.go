// Package job defines the unit of work flowing through the transcription
// pipeline and the single outcome notification produced for it.
package job

// Outcome status values reported to the callback.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Transcript source tags, ordered by acquisition preference.
const (
	SourceManual  = "manual"
	SourceAuto    = "auto"
	SourceWhisper = "whisper"
)

// DefaultAuthor is the sentinel used when a submission carries no author.
const DefaultAuthor = "unknown"

// Job is one accepted transcription request. It exists only in flight:
// queued or executing. There is no persisted terminal state.
type Job struct {
	// ID is generated at the submission boundary and never reused.
	ID string `json:"task_id"`
	// VideoURL is the video to acquire a transcript for.
	VideoURL string `json:"video_url"`
	// WebhookURL receives the outcome notification.
	WebhookURL string `json:"webhook_url"`
	// Author is an opaque caller-supplied label, echoed back unchanged.
	Author string `json:"author"`
}

// Outcome is the single notification object for a job. Exactly one Outcome
// is constructed per job and exactly one delivery attempt is made for it.
type Outcome struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	// Source and Transcript are present only on success.
	Source     string `json:"source,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	// Error is present only on failure, message preserved verbatim.
	Error  string `json:"error,omitempty"`
	Author string `json:"author"`
}

// Succeeded builds a success Outcome for j.
func Succeeded(j Job, source, transcript string) Outcome {
	return Outcome{
		TaskID:     j.ID,
		Status:     StatusSuccess,
		Source:     source,
		Transcript: transcript,
		Author:     j.Author,
	}
}

// Failed builds a failure Outcome for j with the failure message verbatim.
func Failed(j Job, message string) Outcome {
	return Outcome{
		TaskID: j.ID,
		Status: StatusFailed,
		Error:  message,
		Author: j.Author,
	}
}
