// Package panel implements the live resource-usage core: the stats channel
// that feeds decoded snapshots from the node daemon, the view model that
// reconciles them with configured limits and lifecycle status, and the limit
// resolution helpers that produce display pairs.
package panel

import (
	"fmt"

	"srvpanel/internal/units"
)

// Unlimited is the sentinel rendered in place of a limit when no ceiling is
// configured.
const Unlimited = "∞"

// DisplayPair pairs a formatted current value with its formatted limit.
type DisplayPair struct {
	Current string `json:"current"`
	Limit   string `json:"limit"`
}

// Text joins the pair for display, e.g. "12.35% / 50%".
func (p DisplayPair) Text() string {
	return p.Current + " / " + p.Limit
}

// ResolvePercent pairs a formatted percentage with a percent-denominated
// limit. A zero limit means none is configured.
func ResolvePercent(current string, limit uint32) DisplayPair {
	pair := DisplayPair{Current: current, Limit: Unlimited}
	if limit > 0 {
		pair.Limit = fmt.Sprintf("%d%%", limit)
	}
	return pair
}

// ResolveMebibytes pairs a formatted byte value with a MiB-denominated limit.
// A zero limit means none is configured.
func ResolveMebibytes(current string, limit uint32) DisplayPair {
	pair := DisplayPair{Current: current, Limit: Unlimited}
	if limit > 0 {
		pair.Limit = units.FormatBytes(units.MebibytesToBytes(uint64(limit)))
	}
	return pair
}

// Describe produces the per-resource subtext stating the configured cap, e.g.
// "This server is allowed to use up to 50% of CPU.", or that none exists.
func Describe(noun string, pair DisplayPair) string {
	if pair.Limit == Unlimited {
		return fmt.Sprintf("No %s limit has been configured.", noun)
	}
	return fmt.Sprintf("This server is allowed to use up to %s of %s.", pair.Limit, noun)
}
