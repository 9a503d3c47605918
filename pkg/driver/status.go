package driver

import "fmt"

// Status is the outcome of a driver call. It is a closed set; driver
// outcomes are reported as values rather than Go errors because most of
// them (NotSupported, NoSuch) are not failures from the shell's view.
type Status int

const (
	OK                Status = 0
	Fail              Status = -1
	BadParam          Status = -4
	NoSuch            Status = -7
	NotSupported      Status = -10
	AlreadyExist      Status = -11
	BadCPUPort        Status = -12
	FeatureNotEnabled Status = -13
)

var statusText = map[Status]string{
	OK:                "ok",
	Fail:              "operation failed",
	BadParam:          "bad param",
	NoSuch:            "no such item",
	NotSupported:      "not supported",
	AlreadyExist:      "already exist",
	BadCPUPort:        "bad cpu port",
	FeatureNotEnabled: "feature not enabled",
}

// String returns the human text used in "Error ret[code: text]".
func (s Status) String() string {
	if txt, ok := statusText[s]; ok {
		return txt
	}
	return fmt.Sprintf("unknown status %d", int(s))
}

// Code returns the numeric status code.
func (s Status) Code() int { return int(s) }

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, ok := statusText[s]
	return ok
}
