/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- Counters of handled items: *.<outcome>
*/
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/x-xyz/salebot/base/env"
	"github.com/x-xyz/salebot/base/log"
)

const (
	// DefaultDdPort is the dogstatsd agent port
	DefaultDdPort = 8125

	// ddRate is the rate to pass metrics to datadog agent. 1 means always
	ddRate = 1
	// buffer 10 metrics before sending to statsd
	bufferMetrics = 10
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpSum(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender

	// Close flushes buffered metrics
	Close() error
}

type Config struct {
	// DdHost empty means metrics are only written to the debug log
	DdHost  string
	DdPort  int
	AppName string
	EnvName string
}

type statsCli interface {
	Count(name string, value int64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
	Close() error
}

// New creates a metric client with package name as prefix
func New(pkgName string, cfg Config) (Service, error) {
	var cli statsCli = &LogClient{}
	if cfg.DdHost != "" {
		port := cfg.DdPort
		if port == 0 {
			port = DefaultDdPort
		}
		addr := fmt.Sprintf("%s:%d", cfg.DdHost, port)
		log.Log().WithField("addr", addr).Info("connecting to datadog agent")

		c, err := statsd.New(addr, statsd.WithMaxMessagesPerPayload(bufferMetrics))
		if err != nil {
			log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Error("can't talk to datadog agent")
			return nil, err
		}
		cli = c
	}
	return newMetrics(pkgName, cli, cfg), nil
}

func newMetrics(pkgName string, cli statsCli, cfg Config) *Metrics {
	return &Metrics{
		pkgName: pkgName,
		client:  cli,
		ddTags: []string{
			// using host removes all tags associated with host
			// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
			"host:", // remove unused host tag
			"pod:" + env.PodName(),
			"env:" + cfg.EnvName,
			"app:" + cfg.AppName,
		},
	}
}

// Metrics sends every bump to one statsd client
type Metrics struct {
	pkgName string
	ddTags  []string
	client  statsCli
}

// bumpSumPanic handles panics raised while bumping
func (mt *Metrics) bumpSumPanic(key, tag string) {
	if err := mt.client.Count(mt.pkgName+".bump.panic", 1, []string{"tag:" + tag}, ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key}).Error("Bump fail")
	}
}

func (mt *Metrics) tags(tags []string) []string {
	out := make([]string, 0, len(mt.ddTags)+len(tags)/2)
	out = append(out, mt.ddTags...)
	return append(out, parseTag(tags)...)
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	name := mt.pkgName + `.` + key
	defer func() {
		if err := recover(); err != nil {
			mt.bumpSumPanic("bumpsum", name+"#"+strings.Join(tags, "#"))
		}
	}()

	if err := mt.client.Count(name, int64(val), mt.tags(tags), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": name, "val": val, "func": "BumpSum"}).Error("Bump fail")
	}
}

// BumpTime records a duration. Calling it starts the timer, and it returns a
// value on which End() can be called to indicate finishing the timer. A convenient way of
// recording the duration of a function is calling it like such at the top of
// the function:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		start: time.Now(),
		key:   mt.pkgName + `.` + key,
		tags:  mt.tags(tags),
		mt:    mt,
	}
}

func (mt *Metrics) Close() error {
	return mt.client.Close()
}

// parseTag pairs up key, value, key, value... into datadog tags, a dangling key is dropped
func parseTag(tags []string) []string {
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Warn("tag length needs to be multiple of 2")
		tags = tags[:len(tags)-1]
	}
	arr := make([]string, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		arr[i/2] = tags[i] + ":" + tags[i+1]
	}
	return arr
}

type timeTracker struct {
	start time.Time
	key   string
	tags  []string
	mt    *Metrics
}

func (t *timeTracker) End() {
	defer func() {
		if err := recover(); err != nil {
			t.mt.bumpSumPanic("bumptime", t.key)
		}
	}()

	d := time.Since(t.start)
	msec := d / time.Millisecond
	nsec := d % time.Millisecond

	dur := float64(msec) + float64(nsec)*1e-6

	if err := t.mt.client.TimeInMilliseconds(t.key, dur, t.tags, ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": t.key, "val": dur, "func": "BumpTime"}).Error("Bump fail")
	}
}
