package selectdlg

// Texts shown by the dialog.
const (
	titleWarning     = "Warning"
	titleFlashFailed = "Programming failed"
	titleProgramming = "Programming the board, please wait..."
	connectingFmt    = "Connecting to %s..."
)
