package flow

import (
	"errors"
	"fmt"

	"github.com/ruteri/vc-storage-client/interfaces"
)

// NetworkErrorMessage is shown when a remote service could not be reached.
const NetworkErrorMessage = "Network error: Unable to connect to the server. Please check if the API server is running and accessible."

// Message renders err as the single error line shown for a run of tab.
func Message(tab Tab, err error) string {
	if err == nil {
		return ""
	}

	var validationErr *interfaces.ValidationError
	var reqErr *interfaces.RequestError

	switch {
	case errors.Is(err, interfaces.ErrNetworkUnreachable):
		return NetworkErrorMessage
	case errors.As(err, &validationErr):
		if tab == TabUpload {
			return "Upload failed: " + validationErr.Message
		}
		return validationErr.Message
	case errors.Is(err, interfaces.ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, interfaces.ErrMalformedPresentationResponse):
		return "No data field found in presentation response"
	case errors.Is(err, interfaces.ErrBusy):
		return "A request is already in progress"
	case errors.As(err, &reqErr):
		return requestMessage(tab, reqErr)
	}

	if tab == TabUpload {
		return "Upload failed: " + err.Error()
	}
	return err.Error()
}

func requestMessage(tab Tab, reqErr *interfaces.RequestError) string {
	var prefix string
	switch {
	case errors.Is(reqErr, interfaces.ErrPresentationExchangeFailed):
		prefix = "Presentation failed"
	case errors.Is(reqErr, interfaces.ErrUploadFailed):
		prefix = "Upload failed"
	case errors.Is(reqErr, interfaces.ErrCredentialIssuanceFailed):
		prefix = "VC creation failed"
	case errors.Is(reqErr, interfaces.ErrFileRetrievalFailed) && tab == TabView:
		prefix = "Failed to fetch file"
	case errors.Is(reqErr, interfaces.ErrFileRetrievalFailed):
		prefix = "File access failed"
	default:
		return reqErr.Error()
	}
	if reqErr.Body == "" {
		return fmt.Sprintf("%s: %d %s", prefix, reqErr.StatusCode, reqErr.Status)
	}
	return fmt.Sprintf("%s: %d %s - %s", prefix, reqErr.StatusCode, reqErr.Status, reqErr.Body)
}
