package order

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/creamcroissant/ovenboard/internal/obs"
)

// StageTimestamp is the derived display time for one lifecycle stage.
// Known=false means the stage has not happened yet. Exact distinguishes a
// recorded time from an interpolated estimate.
type StageTimestamp struct {
	Time  time.Time `json:"time,omitzero"`
	Known bool      `json:"known"`
	Exact bool      `json:"exact"`
}

// Estimator derives per-stage timestamps from the only two times the
// storefront records: order creation and last update. Anything in between is
// an approximation and is flagged as such.
type Estimator struct {
	logger *slog.Logger
	dq     *obs.DataQuality
	now    func() time.Time
}

// EstimatorOption customizes an Estimator.
type EstimatorOption func(*Estimator)

// WithClock overrides the estimator's time source.
func WithClock(now func() time.Time) EstimatorOption {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEstimator constructs a stage timeline estimator.
func NewEstimator(logger *slog.Logger, dq *obs.DataQuality, opts ...EstimatorOption) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	if dq == nil {
		dq = obs.NopDataQuality()
	}
	e := &Estimator{logger: logger, dq: dq, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// EstimateStage derives the display timestamp for the stage at stageIndex.
// The current stage maps to updatedAt and the first stage to createdAt, both
// exact. Future stages are absent. Past stages are interpolated between the
// two recorded times proportional to their ordinal.
func (e *Estimator) EstimateStage(o Order, stageIndex int) StageTimestamp {
	if stageIndex < 0 || stageIndex >= StageCount() {
		return StageTimestamp{}
	}

	createdAt := e.parseOrNow(o.ID, "created_at", o.CreatedAt)
	updatedAt := e.parseOrNow(o.ID, "updated_at", o.UpdatedAt)

	ordinal, inSequence := o.Status.Ordinal()
	if !inSequence {
		// Cancelled orders stop progressing; only creation time stays known.
		if stageIndex == 0 {
			return StageTimestamp{Time: createdAt, Known: true, Exact: true}
		}
		return StageTimestamp{}
	}

	switch {
	case stageIndex == ordinal:
		return StageTimestamp{Time: updatedAt, Known: true, Exact: true}
	case stageIndex == 0:
		return StageTimestamp{Time: createdAt, Known: true, Exact: true}
	case stageIndex > ordinal:
		return StageTimestamp{}
	}

	window := updatedAt.Sub(createdAt)
	if window < 0 {
		window = 0
	}
	divisor := ordinal + 1
	if divisor < 1 {
		divisor = 1
	}
	offset := time.Duration(float64(window) * float64(stageIndex+1) / float64(divisor))
	return StageTimestamp{Time: createdAt.Add(offset), Known: true, Exact: false}
}

// Timeline derives StageTimestamp for every stage in ordinal order.
func (e *Estimator) Timeline(o Order) []StageTimestamp {
	out := make([]StageTimestamp, StageCount())
	for i := range out {
		out[i] = e.EstimateStage(o, i)
	}
	return out
}

// PendingElapsed formats how long o has been waiting, e.g. "2m 5s".
// It is only meaningful while the order is pending; otherwise, and when
// createdAt cannot be parsed, ok is false. Clock skew is floored to zero.
func (e *Estimator) PendingElapsed(o Order, now time.Time) (string, bool) {
	if o.Status != StatusPending {
		return "", false
	}
	createdAt, _, err := ParseTimestamp(o.CreatedAt)
	if err != nil {
		e.dq.TimestampFallbacks.Inc()
		e.logger.Warn("unparseable created_at for pending order", "order_id", o.ID, "raw", o.CreatedAt)
		return "", false
	}
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return formatElapsed(elapsed), true
}

// parseOrNow degrades an unparseable timestamp to the current time. The
// degradation is logged and counted so it can never pass for a real value.
func (e *Estimator) parseOrNow(orderID, field, raw string) time.Time {
	ts, guessed, err := ParseTimestamp(raw)
	if err != nil {
		e.dq.TimestampFallbacks.Inc()
		e.logger.Warn("unparseable order timestamp, using current time",
			"order_id", orderID, "field", field, "raw", raw)
		return e.now()
	}
	if guessed {
		e.dq.ZoneGuesses.Inc()
		e.logger.Debug("timestamp without offset interpreted as UTC",
			"order_id", orderID, "field", field, "raw", raw)
	}
	return ts
}

// offsetless layouts are interpreted as UTC; the storefront backend is
// supposed to emit offsets but historic rows predate that.
var offsetlessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the storefront API emits.
// guessed reports that the input carried no offset and UTC was assumed.
func ParseTimestamp(raw string) (ts time.Time, guessed bool, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return ts, false, nil
	}
	for _, layout := range offsetlessLayouts {
		if ts, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return ts, true, nil
		}
	}
	// Opaque fallback: some export paths serialize unix seconds.
	if secs, convErr := strconv.ParseInt(trimmed, 10, 64); convErr == nil && secs > 0 {
		return time.Unix(secs, 0).UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("unsupported timestamp format: %q", raw)
}

// formatElapsed renders the two largest units of d, seconds alone below a
// minute.
func formatElapsed(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		days := int(d / (24 * time.Hour))
		hours := int(d % (24 * time.Hour) / time.Hour)
		return fmt.Sprintf("%dd %dh", days, hours)
	case d >= time.Hour:
		hours := int(d / time.Hour)
		minutes := int(d % time.Hour / time.Minute)
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case d >= time.Minute:
		minutes := int(d / time.Minute)
		seconds := int(d % time.Minute / time.Second)
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
}
