package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

const (
	serviceErrorTag   = "[Bedrock]"
	transportErrorTag = "[Bedrock/SDK]"
	unknownErrorCode  = "Unknown"
)

// ServiceError is a structured error returned by Bedrock, enriched with
// operator hints.
type ServiceError struct {
	Code    string
	Message string
	Hints   []string
	Err     error
}

func (e *ServiceError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s %s: %s", serviceErrorTag, e.Code, e.Message)
	if len(e.Hints) > 0 {
		builder.WriteString("\nHints:\n- ")
		builder.WriteString(strings.Join(e.Hints, "\n- "))
	}
	return builder.String()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// TransportError covers failures where no structured response was obtained.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %v", transportErrorTag, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Classify turns an SDK error into a *ServiceError or *TransportError.
// Errors that are already classified pass through unchanged.
func Classify(err error, modelID string) error {
	if err == nil {
		return nil
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return err
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return &TransportError{Err: err}
	}
	code := apiErr.ErrorCode()
	if code == "" {
		code = unknownErrorCode
	}
	message := apiErr.ErrorMessage()
	if message == "" {
		message = err.Error()
	}
	return &ServiceError{
		Code:    code,
		Message: message,
		Hints:   Hints(code, message, modelID),
		Err:     err,
	}
}

// Hints returns the guidance that applies to a service error, in a fixed
// order. Scripts parse this output, so wording and order are stable.
func Hints(code, message, modelID string) []string {
	lower := strings.ToLower(message)
	var hints []string
	switch code {
	case "AccessDeniedException", "ForbiddenException":
		hints = append(hints, "Check IAM: allow bedrock:InvokeModel and bedrock:InvokeModelWithResponseStream on the model ARN.")
	}
	switch code {
	case "ValidationException", "BadRequestException":
		hints = append(hints, "Request shape likely wrong for this provider, or bad modelId. Using Converse avoids provider-specific schemas.")
	}
	if strings.Contains(lower, "model not enabled") {
		hints = append(hints, "Enable the foundation model in the Bedrock console for this region/account.")
	}
	if strings.Contains(message, "Unrecognized model") || strings.Contains(message, "modelId") {
		hints = append(hints, fmt.Sprintf("Verify modelId '%s' and region; models are region-scoped.", modelID))
	}
	switch code {
	case "ThrottlingException", "TooManyRequestsException":
		hints = append(hints, "You're throttled. Add retries/backoff or lower token limits.")
	}
	if strings.Contains(lower, "tokens") && strings.Contains(lower, "max") {
		hints = append(hints, "Reduce maxTokens or input size; watch provider token limits.")
	}
	return hints
}
