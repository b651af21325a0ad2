package app

import "errors"

var (
	ErrNoFileProvided            = errors.New("No file uploaded")
	ErrNameEmailPasswordRequired = errors.New("name, email and password are required")
	ErrEmailAlreadyExists        = errors.New("User already exists")

	// ErrInvalidCredentials covers both unknown emails and wrong passwords so
	// responses do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	ErrInvalidDays     = errors.New("days must be a non-negative integer")
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrAnalysisFailed wraps every failure inside the upload pipeline. The
	// wrapped cause is for logs only.
	ErrAnalysisFailed = errors.New("Resume analysis failed")

	ErrAccountNotFound = errors.New("account not found")
)
