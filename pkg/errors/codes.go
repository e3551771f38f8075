package errors

// Configuration codes.
const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigReadFailed indicates the file exists but could not be read.
	ErrConfigReadFailed = "CONFIG_READ_FAILED"

	// ErrConfigParseFailed indicates a YAML syntax or structure error.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates a field value failed validation.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"
)

// Node store and simulator codes.
const (
	// ErrInvalidConfig indicates a constructor received an unusable parameter
	// (non-positive capacity, empty vector dimension, probability outside [0,1]).
	ErrInvalidConfig = "INVALID_CONFIG"

	// ErrInvalidInput indicates text that is not valid UTF-8.
	ErrInvalidInput = "INVALID_INPUT"

	// ErrCapacityExceeded indicates new words arrived after the index arena filled.
	// The words are tracked for strength but have no matrix slot and no edges.
	ErrCapacityExceeded = "CAPACITY_EXCEEDED"

	// ErrInvalidSamples indicates NaN or infinite values passed to the simulator.
	ErrInvalidSamples = "INVALID_SAMPLES"
)

// Session codes.
const (
	ErrSessionNotFound     = "SESSION_NOT_FOUND"
	ErrSessionExportFailed = "SESSION_EXPORT_FAILED"
	ErrSessionEnded        = "SESSION_ENDED"
)

// Shell command codes.
const (
	ErrCommandMissingArgs = "COMMAND_MISSING_ARGS"
	ErrCommandNotFound    = "COMMAND_NOT_FOUND"
	ErrShellInitFailed    = "SHELL_INIT_FAILED"
)

// IO codes.
const (
	ErrIOReadFailed   = "IO_READ_FAILED"
	ErrIOFileNotFound = "IO_FILE_NOT_FOUND"
)

// API codes.
const (
	ErrInternalError    = "INTERNAL_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
)
