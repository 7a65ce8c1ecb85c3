package enums

import "fmt"

// DriveMode distinguishes self-drive hires from guided tours.
type DriveMode string

const (
	DriveModeSelfDrive DriveMode = "self_drive"
	DriveModeGuided    DriveMode = "guided"
)

var validDriveModes = []DriveMode{
	DriveModeSelfDrive,
	DriveModeGuided,
}

// String implements fmt.Stringer.
func (d DriveMode) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DriveMode.
func (d DriveMode) IsValid() bool {
	for _, candidate := range validDriveModes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDriveMode converts raw input into a DriveMode.
func ParseDriveMode(value string) (DriveMode, error) {
	for _, candidate := range validDriveModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid drive mode %q", value)
}
