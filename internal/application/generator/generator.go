package generator

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/logging"
)

// Vital sign bounds used for synthetic readings.
const (
	MinTemperature = 36.0
	MaxTemperature = 38.5
	MinHeartRate   = 60
	MaxHeartRate   = 100
	MinSystolic    = 90
	MaxSystolic    = 140
	MinDiastolic   = 60
	MaxDiastolic   = 90
	MinHumidity    = 30.0
	MaxHumidity    = 70.0
	MinOxygen      = 95
	MaxOxygen      = 100
)

// Config describes the runtime characteristics of the generator.
type Config struct {
	Interval    time.Duration
	DeviceCount int
	RandSource  rand.Source
}

// Generator produces bounded synthetic vitals, cycling through device ids 1..DeviceCount.
type Generator struct {
	cfg    Config
	logger *logging.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a configured generator instance.
func New(cfg Config, logger *logging.Logger) *Generator {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.DeviceCount <= 0 {
		cfg.DeviceCount = 1
	}

	source := cfg.RandSource
	if source == nil {
		source = rand.NewSource(time.Now().UnixNano())
	}

	return &Generator{
		cfg:    cfg,
		logger: logger,
		rnd:    rand.New(source),
	}
}

// Next returns a fresh reading for the given device.
func (g *Generator) Next(deviceID int) domain.Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	return domain.Reading{
		DeviceID:    deviceID,
		Temperature: g.uniform(MinTemperature, MaxTemperature),
		HeartRate:   g.intn(MinHeartRate, MaxHeartRate),
		BloodPressure: domain.BloodPressure{
			Systolic:  g.intn(MinSystolic, MaxSystolic),
			Diastolic: g.intn(MinDiastolic, MaxDiastolic),
		},
		Humidity: g.uniform(MinHumidity, MaxHumidity),
		Oxygen:   g.intn(MinOxygen, MaxOxygen),
	}
}

// Run emits one reading per interval, cycling through the device ids, until ctx
// is cancelled. The output channel is closed once generation stops.
func (g *Generator) Run(ctx context.Context, out chan<- domain.Reading) {
	defer close(out)

	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	deviceID := 1
	for {
		reading := g.Next(deviceID)

		select {
		case <-ctx.Done():
			g.logger.Debug("generator stopped", logging.AttachError(ctx.Err())...)
			return
		case out <- reading:
		}

		deviceID = deviceID%g.cfg.DeviceCount + 1

		select {
		case <-ctx.Done():
			g.logger.Debug("generator stopped", logging.AttachError(ctx.Err())...)
			return
		case <-ticker.C:
		}
	}
}

// uniform rounds to one fractional digit.
func (g *Generator) uniform(lo, hi float64) float64 {
	return math.Round((lo+g.rnd.Float64()*(hi-lo))*10) / 10
}

// intn is inclusive on both ends.
func (g *Generator) intn(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

var _ domain.ReadingGenerator = (*Generator)(nil)
