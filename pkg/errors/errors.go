package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network/HTTP failures while fetching a page
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParse represents extraction failures (no strategy succeeded)
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeRateLimit represents upstream rate limiting
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeClassifier represents AI classifier call failures
	ErrorTypeClassifier ErrorType = "classifier"
	// ErrorTypePersistence represents durable state read/write failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeNotify represents alert delivery failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a pipeline-specific error
type ScrapeError struct {
	Type     ErrorType
	Platform string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Platform, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Platform, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeClassifier:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, platform, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:     errType,
		Platform: platform,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(platform, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, platform, message, err)
}

// NewParse creates a new parse error
func NewParse(platform, message string, err error) *ScrapeError {
	return New(ErrorTypeParse, platform, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(platform string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, platform, message, nil)
}

// NewClassifier creates a new classifier error
func NewClassifier(message string, err error) *ScrapeError {
	return New(ErrorTypeClassifier, "", message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(message string, err error) *ScrapeError {
	return New(ErrorTypePersistence, "", message, err)
}

// NewNotify creates a new notification error
func NewNotify(message string, err error) *ScrapeError {
	return New(ErrorTypeNotify, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of err if it is a ScrapeError
func TypeOf(err error) (ErrorType, bool) {
	se, ok := err.(*ScrapeError)
	if !ok {
		return "", false
	}
	return se.Type, true
}
