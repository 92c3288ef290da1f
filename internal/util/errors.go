package util

import "errors"

var (
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrImageNotFound       = errors.New("image not found")
	ErrNotAnImage          = errors.New("only image files can be uploaded")
	ErrWebhookUpstream     = errors.New("webhook upstream error")
	ErrWebhookDisabled     = errors.New("webhook integration is not configured")
	ErrDecrypt             = errors.New("decrypt payload failed")
	ErrDuplicateSubmission = errors.New("submission already processed")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrEmptyCSV            = errors.New("csv data is empty")
)
