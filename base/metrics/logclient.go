package metrics

import (
	"github.com/x-xyz/salebot/base/log"
)

// LogClient writes metrics to the debug log when no datadog agent is configured
type LogClient struct{}

// Count tracks how many times something happened per second,
// like the number of sales published in a run.
func (lc *LogClient) Count(name string, value int64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric count")
	return nil
}

// TimeInMilliseconds tracks durations, DogStatsD treats it like a histogram.
func (lc *LogClient) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "time_ms": value, "tags": tags}).Debug("metric time")
	return nil
}

func (lc *LogClient) Close() error {
	return nil
}
