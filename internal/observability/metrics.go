package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// SimulationCollector bundles Prometheus metrics for simulation trials and
// dumps them in the text exposition format.
type SimulationCollector struct {
	gatherer prometheus.Gatherer

	TrialsTotal     prometheus.Counter
	TrialDays       prometheus.Histogram
	VaccinatedTotal prometheus.Counter
	PeakInfected    prometheus.Gauge
	AverageDays     prometheus.Gauge
}

// NewSimulationCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimulationCollector(reg prometheus.Registerer) (*SimulationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	trials, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "epidemic_trials_total",
		Help: "Total number of simulation trials run.",
	}), "epidemic_trials_total")
	if err != nil {
		return nil, err
	}

	days, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "epidemic_trial_days",
		Help:    "Days simulated per trial until no one was infected or the day bound was hit.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}), "epidemic_trial_days")
	if err != nil {
		return nil, err
	}

	vaccinated, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "epidemic_vaccinated_total",
		Help: "Total number of people vaccinated across all trials.",
	}), "epidemic_vaccinated_total")
	if err != nil {
		return nil, err
	}

	peak, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "epidemic_peak_infected",
		Help: "Largest number of simultaneously infected people in the most recent trial.",
	}), "epidemic_peak_infected")
	if err != nil {
		return nil, err
	}

	avg, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "epidemic_average_days",
		Help: "Mean days to zero infections over the most recent set of trials.",
	}), "epidemic_average_days")
	if err != nil {
		return nil, err
	}

	return &SimulationCollector{
		gatherer:        gatherer,
		TrialsTotal:     trials,
		TrialDays:       days,
		VaccinatedTotal: vaccinated,
		PeakInfected:    peak,
		AverageDays:     avg,
	}, nil
}

// ObserveTrial records the outcome of one trial. It satisfies
// core.MetricsRecorder.
func (c *SimulationCollector) ObserveTrial(days, vaccinated, peakInfected int) {
	if c == nil {
		return
	}
	if c.TrialsTotal != nil {
		c.TrialsTotal.Inc()
	}
	if c.TrialDays != nil {
		c.TrialDays.Observe(float64(days))
	}
	if c.VaccinatedTotal != nil && vaccinated > 0 {
		c.VaccinatedTotal.Add(float64(vaccinated))
	}
	if c.PeakInfected != nil {
		c.PeakInfected.Set(float64(peakInfected))
	}
}

// SetAverageDays records the mean of a set of trials.
func (c *SimulationCollector) SetAverageDays(avg float64) {
	if c == nil || c.AverageDays == nil {
		return
	}
	c.AverageDays.Set(avg)
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (c *SimulationCollector) WriteText(w io.Writer) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
