package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation loop and
// provides a ready-to-serve /metrics handler.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Episodes       *prometheus.CounterVec
	Steps          prometheus.Counter
	EpisodeSimTime *prometheus.HistogramVec
	EpisodeReward  *prometheus.HistogramVec
	MinSeparation  prometheus.Histogram
	ActiveHumans   prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	episodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crowdsim_episodes_total",
		Help: "Completed episodes, labeled by phase and termination outcome.",
	}, []string{"phase", "outcome"})
	episodes, err := registerCounterVec(reg, episodes, "crowdsim_episodes_total")
	if err != nil {
		return nil, err
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crowdsim_steps_total",
		Help: "Total simulation steps across all episodes.",
	}), "crowdsim_steps_total")
	if err != nil {
		return nil, err
	}

	simTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crowdsim_episode_sim_seconds",
		Help:    "Episode length in simulation seconds.",
		Buckets: []float64{2.5, 5, 7.5, 10, 12.5, 15, 17.5, 20, 22.5, 25},
	}, []string{"phase"})
	simTime, err = registerHistogramVec(reg, simTime, "crowdsim_episode_sim_seconds")
	if err != nil {
		return nil, err
	}

	reward := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crowdsim_episode_reward",
		Help:    "Cumulative reward per episode.",
		Buckets: []float64{-2, -1, -0.5, 0, 0.5, 1, 2, 4, 8, 16},
	}, []string{"phase"})
	reward, err = registerHistogramVec(reg, reward, "crowdsim_episode_reward")
	if err != nil {
		return nil, err
	}

	minSep, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crowdsim_min_separation_meters",
		Help:    "Smallest human-robot surface distance seen on danger steps.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.075, 0.1, 0.125, 0.15, 0.175, 0.2},
	}), "crowdsim_min_separation_meters")
	if err != nil {
		return nil, err
	}

	humans, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crowdsim_active_humans",
		Help: "Number of humans in the current episode.",
	}), "crowdsim_active_humans")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:       gatherer,
		Episodes:       episodes,
		Steps:          steps,
		EpisodeSimTime: simTime,
		EpisodeReward:  reward,
		MinSeparation:  minSep,
		ActiveHumans:   humans,
	}, nil
}

// ObserveEpisode records one finished episode.
func (c *SimCollector) ObserveEpisode(phase, outcome string, simSeconds, reward float64) {
	if c == nil {
		return
	}
	if c.Episodes != nil {
		c.Episodes.WithLabelValues(phase, outcome).Inc()
	}
	if c.EpisodeSimTime != nil {
		c.EpisodeSimTime.WithLabelValues(phase).Observe(simSeconds)
	}
	if c.EpisodeReward != nil {
		c.EpisodeReward.WithLabelValues(phase).Observe(reward)
	}
}

// ObserveStep records one simulation step and, when the step was a danger
// step, the minimum separation observed.
func (c *SimCollector) ObserveStep(minSeparation float64, danger bool) {
	if c == nil {
		return
	}
	if c.Steps != nil {
		c.Steps.Inc()
	}
	if danger && c.MinSeparation != nil {
		c.MinSeparation.Observe(minSeparation)
	}
}

// SetActiveHumans tracks the crowd size of the running episode.
func (c *SimCollector) SetActiveHumans(n int) {
	if c == nil || c.ActiveHumans == nil {
		return
	}
	c.ActiveHumans.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
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

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
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
