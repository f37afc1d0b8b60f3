package domain

import (
	"errors"
	"time"
)

var (
	ErrNotConfigured = errors.New("instagram credentials needed")
	ErrPublishFailed = errors.New("failed to post to instagram")
)

// PublishStep names one transition of the carousel publish sequence.
type PublishStep string

const (
	StepDiscover        PublishStep = "discover_account"
	StepCreateContainer PublishStep = "create_container"
	StepCreateChildren  PublishStep = "create_children"
	StepAttachChildren  PublishStep = "attach_children"
	StepPublish         PublishStep = "publish"
	StepPermalink       PublishStep = "fetch_permalink"
	StepDone            PublishStep = "done"
)

// PublishResult is the outcome of a publish sequence.
type PublishResult struct {
	ID         string      `json:"id"`
	Permalink  string      `json:"permalink,omitempty"`
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
	FailedStep PublishStep `json:"failedStep,omitempty"`
}

// PublishError reports the step a failed publish sequence stopped at.
type PublishError struct {
	Step    PublishStep
	Message string
}

func (e *PublishError) Error() string {
	return ErrPublishFailed.Error() + ": " + e.Message
}

func (e *PublishError) Unwrap() error { return ErrPublishFailed }

// PublishAttempt is one audit record of a publish call.
type PublishAttempt struct {
	PostID          int64
	UserID          int64
	Success         bool
	InstagramPostID string
	Permalink       string
	FailedStep      PublishStep
	Error           string
	AttemptedAt     time.Time
	DurationMillis  int64
}
