package handler

const (
	errInvalidInput    = "Please enter a valid email and password"
	errAuthUnavailable = "The sign-in service is unavailable right now. Please try again."
	errPageNotFound    = "Page not found"
)
