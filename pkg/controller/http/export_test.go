package http

// Export internal functions for testing
var (
	VerifySlackSignature = verifySlackSignature
	StatusFor            = statusFor
)
