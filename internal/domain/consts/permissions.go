package consts

// Permissions for the files and directories tubeplus creates.
const (
	// Download directories - world readable
	PermsGenericDir = 0o755
	PermsVideoDir   = 0o755

	// Program files
	PermsHomeProgDir = 0o755
	PermsLogFile     = 0o644
)
