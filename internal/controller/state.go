package controller

// Status is the coarse UI state shown next to the form.
type Status int

const (
	StatusIdle Status = iota
	StatusUploading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// User-visible texts.
const (
	MsgChooseFile     = "Please choose a file."
	MsgUploading      = "Uploading and summarizing..."
	MsgDone           = "Done."
	MsgErrorPrefix    = "Error: "
	MsgDownloadFailed = "Download failed."

	// SummaryFilename is the name the downloaded summary is saved under.
	SummaryFilename = "summary.txt"
)

// State is everything a view needs to draw the form and its result section.
type State struct {
	Status          Status
	StatusText      string
	SubmitEnabled   bool
	DownloadEnabled bool
	ResultVisible   bool
	// Summary is the text of the most recent successful submission. A new
	// submission clears it.
	Summary string
}
