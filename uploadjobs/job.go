// Package uploadjobs tracks asynchronous video uploads so the browser can poll their progress.
package uploadjobs

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusUploading Status = "uploading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Source string

const (
	SourceLocal Source = "local"
	SourceDrive Source = "drive"
)

type Job struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"-"`
	Source     Source    `json:"source"`
	SourceName string    `json:"sourceName"`
	Title      string    `json:"title"`
	ChannelID  string    `json:"channelId"`
	Status     Status    `json:"status"`
	BytesSent  int64     `json:"bytesSent"`
	TotalBytes int64     `json:"totalBytes"`
	VideoID    string    `json:"videoId,omitempty"`
	VideoURL   string    `json:"videoUrl,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Percent is the share of bytes sent, or zero when the size is unknown.
func (j Job) Percent() float64 {
	if j.TotalBytes <= 0 {
		return 0
	}
	p := float64(j.BytesSent) / float64(j.TotalBytes) * 100
	if p > 100 {
		return 100
	}
	return p
}

func (j Job) Done() bool {
	return j.Status == StatusSucceeded || j.Status == StatusFailed
}

// SetProgress moves a queued job to uploading. Finished jobs are left alone.
func (j *Job) SetProgress(sent, total int64) {
	if j.Done() {
		return
	}
	j.Status = StatusUploading
	if sent > j.BytesSent {
		j.BytesSent = sent
	}
	if total > 0 {
		j.TotalBytes = total
	}
}

func (j *Job) Succeed(videoID, videoURL string) {
	j.Status = StatusSucceeded
	j.VideoID = videoID
	j.VideoURL = videoURL
	j.Error = ""
	if j.TotalBytes > 0 {
		j.BytesSent = j.TotalBytes
	}
}

func (j *Job) Fail(err error) {
	j.Status = StatusFailed
	if err != nil {
		j.Error = err.Error()
	}
}
