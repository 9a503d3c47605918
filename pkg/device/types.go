package device

// Config represents the mcli.yaml configuration
type Config struct {
	Device   DeviceConfig   `yaml:"device" json:"device"`
	Metadata MetadataConfig `yaml:"metadata" json:"metadata"`

	// Prompt is printed before every interactive line and logged before
	// every reported line
	Prompt string `yaml:"prompt" json:"prompt"`

	// LogFile is the default target of "file logOn"
	LogFile string `yaml:"logFile" json:"logFile"`

	History HistoryConfig `yaml:"history" json:"history"`
}

// DeviceConfig selects the switch the shell manages
type DeviceConfig struct {
	// Family is the chip family name (e.g., "BonsaiZ1")
	Family string `yaml:"family,omitempty" json:"family,omitempty"`

	// DeviceID selects the family by device ID when Family is empty
	DeviceID uint16 `yaml:"deviceId,omitempty" json:"deviceId,omitempty"`

	// Bus is the management interface: "SMI", "SMI_MULTICHIP" or "RMU"
	Bus string `yaml:"bus,omitempty" json:"bus,omitempty"`

	// Ports overrides the family port count
	Ports int `yaml:"ports,omitempty" json:"ports,omitempty"`

	// BaseAddr is the chip SMI address in multi-chip mode
	BaseAddr uint8 `yaml:"baseAddr,omitempty" json:"baseAddr,omitempty"`
}

// MetadataConfig locates the help documents
type MetadataConfig struct {
	// Dir holds <family>.json help documents; empty selects the embedded ones
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// HistoryConfig configures the command history database
type HistoryConfig struct {
	// Path is the SQLite file; empty disables history, ":memory:" keeps it
	// for the life of the process
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// RetainDays drops entries older than this many days at startup; 0
	// keeps everything
	RetainDays int `yaml:"retainDays,omitempty" json:"retainDays,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
