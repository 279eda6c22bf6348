package seiscan

// Config collects all tunables for a Service. Zero values fall back to the
// defaults below.
type Config struct {
	DBPath string

	// Match filter
	Threshold         float64
	ThresholdType     string
	TrigInt           float64 // seconds
	ParallelThreshold int
	Workers           int

	// Despiker
	DespikeMultiplier float64
	DespikeWindow     float64 // seconds
	DespikeInterp     float64 // seconds

	// Plotting
	PlotEnabled bool
	PlotDir     string

	Logger  Logger
	Storage Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) { c.DBPath = path }
}

func WithThreshold(multiplier float64, thresholdType string) Option {
	return func(c *Config) {
		c.Threshold = multiplier
		c.ThresholdType = thresholdType
	}
}

func WithTrigInt(seconds float64) Option {
	return func(c *Config) { c.TrigInt = seconds }
}

func WithParallel(threshold, workers int) Option {
	return func(c *Config) {
		c.ParallelThreshold = threshold
		c.Workers = workers
	}
}

func WithDespike(multiplier, windowSeconds, interpSeconds float64) Option {
	return func(c *Config) {
		c.DespikeMultiplier = multiplier
		c.DespikeWindow = windowSeconds
		c.DespikeInterp = interpSeconds
	}
}

func WithPlotting(dir string) Option {
	return func(c *Config) {
		c.PlotEnabled = true
		c.PlotDir = dir
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

func WithStorage(storage Storage) Option {
	return func(c *Config) { c.Storage = storage }
}

func defaultConfig() *Config {
	return &Config{
		DBPath:            "seiscan.sqlite3",
		Threshold:         8.0,
		ThresholdType:     "MAD",
		TrigInt:           6.0,
		ParallelThreshold: 4,
		DespikeMultiplier: 10.0,
		DespikeWindow:     0.5,
		DespikeInterp:     0.05,
		PlotDir:           "plots",
	}
}
