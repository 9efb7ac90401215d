// =============================================================================
// Guarantee Summary Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
// The converter is usually started by dropping files onto the executable, so
// the configuration file is optional and every setting has a built-in default.
//
// LOAD ORDER:
//   1. Built-in defaults (Default)
//   2. YAML file (riepilogo.yaml in the working directory, or --config)
//   3. Environment overrides (RIEPILOGO_* variables)
//   4. Validation
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultConfigFile is looked up in the working directory when no
	// --config flag is given. Its absence is not an error.
	DefaultConfigFile = "riepilogo.yaml"

	// DefaultOutputSuffix replaces the input extension to build the PDF path.
	DefaultOutputSuffix = "_Riepilogo_Garanzie.pdf"

	// DefaultVATRate is the Italian standard VAT rate (IVA).
	DefaultVATRate = "0.22"

	// DefaultEncoding is the single-byte Western European encoding of the export.
	DefaultEncoding = "ISO-8859-1"

	// DefaultTitle is the document title.
	DefaultTitle = "Riepilogo Garanzie"

	// DefaultDisclaimer is printed in small italics under the totals table.
	DefaultDisclaimer = "Disclaimer: I totali riportati nel presente documento sono stati calcolati automaticamente.\n" +
		"A causa di possibili arrotondamenti e differenze di calcolo, potrebbero verificarsi scostamenti minimi " +
		"di qualche euro rispetto ai valori ufficiali di fatturazione."

	// envPrefix is the prefix of the environment overrides, e.g. RIEPILOGO_VAT_RATE.
	envPrefix = "riepilogo"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// InputEncoding is the character encoding of the text export.
	// Valid values: "ISO-8859-1" (aliases "LATIN-1", "LATIN1"), "WINDOWS-1252" (alias
	// "CP1252"), "ISO-8859-15".
	// Default: "ISO-8859-1"
	InputEncoding string `yaml:"input_encoding" envconfig:"INPUT_ENCODING" validate:"required,oneof=ISO-8859-1 LATIN-1 LATIN1 WINDOWS-1252 CP1252 ISO-8859-15"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputSuffix replaces the input file extension to build the output path.
	// Default: "_Riepilogo_Garanzie.pdf"
	OutputSuffix string `yaml:"output_suffix" envconfig:"OUTPUT_SUFFIX" validate:"required,endswith=.pdf"`

	// ExportXLSX also writes an XLSX workbook next to the PDF.
	// Default: false
	ExportXLSX bool `yaml:"export_xlsx" envconfig:"EXPORT_XLSX"`

	// CompressPDF enables stream compression in the generated PDF.
	// Default: true
	CompressPDF bool `yaml:"compress_pdf" envconfig:"COMPRESS_PDF"`

	// SummaryDir, when set, receives a YAML summary of every batch run.
	SummaryDir string `yaml:"summary_dir" envconfig:"SUMMARY_DIR"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// VATRate is the VAT rate as a decimal string.
	// Default: "0.22"
	VATRate string `yaml:"vat_rate" envconfig:"VAT_RATE" validate:"required,numeric"`

	// Title is the document title.
	Title string `yaml:"title" envconfig:"TITLE"`

	// Disclaimer is the fixed text under the totals. Newlines are kept.
	Disclaimer string `yaml:"disclaimer" envconfig:"DISCLAIMER"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "warn"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`

	// LogFile is an optional path for JSON logs. Empty means stderr.
	LogFile string `yaml:"log_file" envconfig:"LOG_FILE"`
}

// InputSettings contains settings for reading the text export.
type InputSettings struct {
	// Encoding is the character encoding of the file.
	Encoding string
}

// Default returns the built-in configuration.
func Default() *MainConfig {
	return &MainConfig{
		InputEncoding: DefaultEncoding,
		OutputSuffix:  DefaultOutputSuffix,
		CompressPDF:   true,
		VATRate:       DefaultVATRate,
		Title:         DefaultTitle,
		Disclaimer:    DefaultDisclaimer,
		LogLevel:      "warn",
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. An empty path means the optional
//     DefaultConfigFile in the working directory.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if an explicit file cannot be read, or if any file or
//     environment value is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := Default()

	path := configPath
	optional := false
	if path == "" {
		path = DefaultConfigFile
		optional = true
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		// No config file next to the input; built-in defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(envPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyMainConfigDefaults restores defaults for settings explicitly blanked
// in the file and normalizes case-insensitive values.
func applyMainConfigDefaults(config *MainConfig) {
	config.InputEncoding = strings.ToUpper(strings.TrimSpace(config.InputEncoding))
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.VATRate = strings.TrimSpace(config.VATRate)

	if config.InputEncoding == "" {
		config.InputEncoding = DefaultEncoding
	}
	if config.OutputSuffix == "" {
		config.OutputSuffix = DefaultOutputSuffix
	}
	if config.VATRate == "" {
		config.VATRate = DefaultVATRate
	}
	if config.Title == "" {
		config.Title = DefaultTitle
	}
	if config.Disclaimer == "" {
		config.Disclaimer = DefaultDisclaimer
	}
	if config.LogLevel == "" {
		config.LogLevel = "warn"
	}
}

// validate is shared; validator.Validate caches struct metadata.
var validate = validator.New()

// validateMainConfig validates the configuration.
func validateMainConfig(config *MainConfig) error {
	if err := validate.Struct(config); err != nil {
		return err
	}

	rate, err := decimal.NewFromString(config.VATRate)
	if err != nil {
		return fmt.Errorf("vat_rate %q: %w", config.VATRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("vat_rate %q must be in [0, 1)", config.VATRate)
	}

	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Rate returns the VAT rate. The value is validated on load.
func (c *MainConfig) Rate() decimal.Decimal {
	return decimal.RequireFromString(c.VATRate)
}

// Input returns the settings used to read text exports.
func (c *MainConfig) Input() InputSettings {
	return InputSettings{Encoding: c.InputEncoding}
}

// XLSXSuffix returns the suffix of the companion workbook.
func (c *MainConfig) XLSXSuffix() string {
	return strings.TrimSuffix(c.OutputSuffix, ".pdf") + ".xlsx"
}
