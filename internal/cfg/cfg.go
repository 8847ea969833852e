package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// bytesPerAtom bounds the JSON encoding of one atom's three input properties,
// full float64 precision and one indented line per value included.
const bytesPerAtom = 128

// Config holds application configuration on top of the go-core package
// configs, following the cfg.Registerable and cfg.Validatable conventions.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	APIToken              string
	CalibrationFile       string
	SlackWebhookURL       string
	NotifyDefectFraction  float64
	MaxAtoms              int
	ClassifyWorkers       int
	MemStoreCapacity      int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for frame summaries (empty = in-memory store)")
	fs.StringVar(&c.APIToken, "api-token", "", "comma separated bearer tokens accepted on /api/v1 (empty = no auth)")
	fs.StringVar(&c.CalibrationFile, "calibration-file", "", "YAML file overriding the default BCC tungsten thresholds")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for defect-rich frame notifications")
	fs.Float64Var(&c.NotifyDefectFraction, "notify-defect-fraction", 0.25, "non-bulk atom fraction at which a frame triggers a notification (0..1, 0 = never)")
	fs.IntVar(&c.MaxAtoms, "max-atoms", 2_000_000, "largest frame accepted, in atoms (1..100000000)")
	fs.IntVar(&c.ClassifyWorkers, "classify-workers", 4, "goroutines classifying chunks of one frame (1..256)")
	fs.IntVar(&c.MemStoreCapacity, "memstore-capacity", 10000, "frame summaries kept by the in-memory store (0 = unbounded)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// written as a negated range so NaN fails too
	if !(c.NotifyDefectFraction >= 0 && c.NotifyDefectFraction <= 1) {
		errs = append(errs, fmt.Errorf("invalid NOTIFY_DEFECT_FRACTION %g (must be 0..1)", c.NotifyDefectFraction))
	}

	if c.MaxAtoms <= 0 || c.MaxAtoms > 100_000_000 {
		errs = append(errs, fmt.Errorf("invalid MAX_ATOMS %d (must be 1..100000000)", c.MaxAtoms))
	}

	if c.ClassifyWorkers <= 0 || c.ClassifyWorkers > 256 {
		errs = append(errs, fmt.Errorf("invalid CLASSIFY_WORKERS %d (must be 1..256)", c.ClassifyWorkers))
	}

	if c.MemStoreCapacity < 0 {
		errs = append(errs, fmt.Errorf("invalid MEMSTORE_CAPACITY %d (must be >= 0)", c.MemStoreCapacity))
	}

	if c.SlackWebhookURL != "" && c.NotifyDefectFraction == 0 {
		errs = append(errs, errors.New("SLACK_WEBHOOK_URL is set but NOTIFY_DEFECT_FRACTION is 0"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// MaxBodyBytes is the request body limit implied by MaxAtoms.
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.MaxAtoms)*bytesPerAtom + 64<<10
}
