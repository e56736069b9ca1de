package share

// View is the boundary between the service and whatever renders it.
// The service only talks to the user through a View, so upload sequencing
// can be tested without a terminal.
type View interface {
	// ShowProgress makes the progress indicator visible.
	ShowProgress()

	// SetProgress updates the indicator to percent (0-100, unrounded).
	// Renderers round for the numeric label.
	SetProgress(percent float64)

	// HideProgress removes the progress indicator.
	HideProgress()

	// Alert surfaces a message the user must see.
	Alert(msg string)
}

// Messages shown through View.Alert.
const (
	MsgBatchComplete   = "All files uploaded successfully!"
	MsgNoFileAvailable = "No file available for download."
	msgUploadFailed    = "Error uploading file: "
	msgCheckFailed     = "Error checking for file: "
)
