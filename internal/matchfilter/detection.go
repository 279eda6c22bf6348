package matchfilter

import (
	"time"

	"github.com/google/uuid"
)

// Detection types produced by the different scanning back-ends.
const (
	DetectCorr   = "corr"
	DetectBright = "bright"
	DetectSTA    = "STA"
)

// Detection is one accepted peak in a template's correlation-sum trace. It is
// immutable once created; the caller owns the result set.
type Detection struct {
	ID           string
	TemplateName string
	DetectTime   time.Time
	NoChans      int
	Chans        []string
	DetectVal    float64
	Threshold    float64
	TypeOfDet    string
}

func newDetection(templateName string, detectTime time.Time, noChans int,
	chans []string, detectVal, threshold float64) Detection {
	cp := make([]string, len(chans))
	copy(cp, chans)
	return Detection{
		ID:           uuid.NewString(),
		TemplateName: templateName,
		DetectTime:   detectTime,
		NoChans:      noChans,
		Chans:        cp,
		DetectVal:    detectVal,
		Threshold:    threshold,
		TypeOfDet:    DetectCorr,
	}
}
