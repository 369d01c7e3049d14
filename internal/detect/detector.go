package detect

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

// ErrUnavailable is the single failure outcome of the AI strategy. Callers
// treat it as "fall back", never as a request error.
var ErrUnavailable = errors.New("detect: ai strategy unavailable")

// Detection is the output of one strategy run. Score, Level and Summary are
// set only when the strategy computed them itself.
type Detection struct {
	Clauses  []entity.Clause
	Strategy string
	Score    *int
	Level    *constants.RiskLevel
	Summary  *string
}

// Scored reports whether the detection already carries score, level and summary.
func (d Detection) Scored() bool {
	return d.Score != nil && d.Level != nil && d.Summary != nil
}

// Detector finds risky clauses in contract text.
type Detector interface {
	Detect(ctx context.Context, text string, lang constants.Language) (Detection, error)
}
