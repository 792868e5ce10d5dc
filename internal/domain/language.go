package domain

// SupportedLanguage describes one entry of the static language catalog.
// Instances are immutable after process start.
type SupportedLanguage struct {
	Name      string
	Extension string
	// RemoteID is the language identifier used by the remote judging service
	RemoteID int
	// SourceFile is the file name the sandbox writes the code to
	SourceFile string
	// CompileCmd is empty for interpreted languages
	CompileCmd string
	RunCmd     string
	// Image is the container image the sandbox runs this language in
	Image string
	// Default limits, applied when the request carries no override
	TimeLimitSec  int
	MemoryLimitMB int
}
