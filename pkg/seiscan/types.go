package seiscan

import "time"

// Detection is one template match in a day of continuous data, as surfaced to
// callers and the persistence layer.
type Detection struct {
	ID           string    // Unique detection id
	TemplateName string    // Template that produced the match
	DetectTime   time.Time // Absolute time of the correlation peak
	NoChans      int       // Channels that contributed to the correlation sum
	Chans        []string  // Their station.channel identifiers
	DetectVal    float64   // Raw correlation-sum value at the peak
	Threshold    float64   // Raw threshold the peak had to clear
	TypeOfDet    string    // Detection type tag ("corr", "bright", "STA")
}

// DespikeReport summarises one despiking run.
type DespikeReport struct {
	Station string
	Channel string
	Spikes  int           // Spike locations removed
	Elapsed time.Duration // Wall time spent
}
