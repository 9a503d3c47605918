package device

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/akam1o/mcli/pkg/driver"
	"github.com/akam1o/mcli/pkg/errors"
	"github.com/akam1o/mcli/pkg/help"
	"github.com/akam1o/mcli/pkg/logger"
)

const (
	DefaultFamily  = "BonsaiZ1"
	DefaultPrompt  = "MCLI> "
	DefaultLogFile = "mcli.log"

	// maxPorts is bounded by the port device addresses below Global 1.
	maxPorts = 27
)

// Default returns the configuration used when no file is given: the
// simulated BonsaiZ1 over SMI with the embedded help documents.
func Default() *Config {
	return &Config{
		Device:  DeviceConfig{Family: DefaultFamily, Bus: driver.BusSMI.String()},
		Prompt:  DefaultPrompt,
		LogFile: DefaultLogFile,
	}
}

// LoadConfig loads and validates mcli.yaml. Fields left out keep the
// values from Default; a deviceId alone selects its own family.
func LoadConfig(path string, log *logger.Logger) (*Config, error) {
	if log != nil {
		log.Debug("Loading configuration", slog.String("path", path))
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(
			err,
			errors.ErrCodeConfigPermission,
			fmt.Sprintf("Failed to read configuration: %s", path),
			"Permission denied or file is not readable",
			"Check file permissions with 'ls -l' and ensure the file is readable",
		)
	}

	// Parse YAML with strict mode to detect unknown fields (typo detection)
	config := Default()
	config.Device.Family = ""
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && err != io.EOF {
		return nil, errors.ConfigParseError(path, err)
	}
	if config.Device.Family == "" && config.Device.DeviceID == 0 {
		config.Device.Family = DefaultFamily
	}

	if err := ValidateConfig(config); err != nil {
		return nil, errors.Wrap(
			err,
			errors.ErrCodeConfigValidation,
			"Configuration validation failed",
			"Configuration contains invalid values",
			"Review the error details and fix mcli.yaml",
		)
	}

	if log != nil {
		log.Info("Configuration loaded",
			slog.String("family", config.Device.Family),
			slog.String("bus", config.Device.Bus),
		)
	}

	return config, nil
}

// ValidateConfig checks the device selection and port count
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration is nil")
	}

	d := &config.Device
	if d.Family == "" && d.DeviceID == 0 {
		return &ValidationError{Field: "device.family", Message: "family or deviceId must be set"}
	}
	if _, err := resolveFamily(d); err != nil {
		return &ValidationError{Field: "device.family", Message: err.Error()}
	}
	if _, ok := driver.ParseBus(d.Bus); !ok {
		return &ValidationError{
			Field:   "device.bus",
			Message: "bus must be one of: SMI, SMI_MULTICHIP, RMU",
		}
	}
	if d.Ports < 0 || d.Ports > maxPorts {
		return &ValidationError{
			Field:   "device.ports",
			Message: fmt.Sprintf("ports must be between 1 and %d", maxPorts),
		}
	}
	if d.BaseAddr > 0x1F {
		return &ValidationError{Field: "device.baseAddr", Message: "baseAddr must be 0x00-0x1F"}
	}
	if config.History.RetainDays < 0 {
		return &ValidationError{Field: "history.retainDays", Message: "retainDays cannot be negative"}
	}
	if config.Prompt == "" {
		return &ValidationError{Field: "prompt", Message: "prompt cannot be empty"}
	}

	return nil
}

// resolveFamily prefers the family name and falls back to the device ID.
// When both are given they must agree.
func resolveFamily(d *DeviceConfig) (driver.Family, error) {
	var fam driver.Family
	if d.Family != "" {
		f, ok := driver.LookupFamily(d.Family)
		if !ok {
			return fam, errors.DeviceUnknown(d.Family)
		}
		fam = f
	}
	if d.DeviceID != 0 {
		f, ok := driver.FamilyByID(d.DeviceID)
		if !ok {
			return fam, errors.DeviceUnknown(fmt.Sprintf("device ID %#x", d.DeviceID))
		}
		if d.Family != "" && f.Name != fam.Name {
			return fam, fmt.Errorf("deviceId %#x belongs to %s, not %s", d.DeviceID, f.Name, fam.Name)
		}
		fam = f
	}
	return fam, nil
}

// Info builds the driver description of the configured device.
func (c *Config) Info() (driver.Info, error) {
	fam, err := resolveFamily(&c.Device)
	if err != nil {
		return driver.Info{}, err
	}
	if c.Device.Ports > 0 {
		fam.Ports = c.Device.Ports
	}
	bus, ok := driver.ParseBus(c.Device.Bus)
	if !ok {
		return driver.Info{}, errors.DeviceUnknown("bus " + c.Device.Bus)
	}
	return driver.Info{Family: fam, Bus: bus, BaseAddr: c.Device.BaseAddr}, nil
}

// LoadHelp loads the help document of the configured family, from
// metadata.dir when set and from the embedded documents otherwise.
func (c *Config) LoadHelp(log *logger.Logger) (*help.Store, error) {
	fam, err := resolveFamily(&c.Device)
	if err != nil {
		return nil, err
	}

	var store *help.Store
	if c.Metadata.Dir != "" {
		store, err = help.LoadFile(filepath.Join(c.Metadata.Dir, fam.Metadata))
	} else {
		store, err = help.LoadBuiltin(fam.Metadata)
	}
	if err != nil {
		return nil, err
	}

	if log != nil {
		log.Debug("Help document loaded",
			slog.String("document", store.Name()),
			slog.Int("entries", store.Len()),
		)
	}
	return store, nil
}

// LoadAPIDoc loads the driver API index: api.json from metadata.dir when
// the directory has one, the embedded index otherwise.
func (c *Config) LoadAPIDoc(log *logger.Logger) (*help.APIDoc, error) {
	if c.Metadata.Dir != "" {
		path := filepath.Join(c.Metadata.Dir, help.APIDocFile)
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if log != nil {
				log.Debug("Loading API document", slog.String("path", path))
			}
			return help.LoadAPIDoc(f, path)
		case !os.IsNotExist(err):
			return nil, errors.MetadataParseError(path, err)
		}
	}
	return help.BuiltinAPIDoc()
}
