package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/crowdnav-simulator/core"
	"github.com/signalsfoundry/crowdnav-simulator/internal/logging"
	"github.com/signalsfoundry/crowdnav-simulator/internal/observability"
	"github.com/signalsfoundry/crowdnav-simulator/model"
	"github.com/signalsfoundry/crowdnav-simulator/record"
	"github.com/signalsfoundry/crowdnav-simulator/timectrl"
)

func main() {
	episodes := flag.Int("episodes", 10, "number of episodes to run")
	phaseName := flag.String("phase", "test", "phase to draw episodes from (train|val|test)")
	humanNum := flag.Int("humans", 5, "number of humans in the arena")
	humanPolicy := flag.String("human-policy", core.PolicyReciprocal, "policy driving the humans")
	robotPolicy := flag.String("robot-policy", core.RobotPolicyGraphRNN, "observation layout for the robot")
	baseSeed := flag.Int64("seed", 0, "base seed for episode generation")
	deterministic := flag.Bool("deterministic", false, "cycle scenarios in fixed order for evaluation")
	realtime := flag.Bool("realtime", false, "pace playback at wall-clock speed instead of as fast as possible")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on (empty disables)")
	configPath := flag.String("config", "", "JSON config file; when set, the sim/robot/human flags are ignored")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	phase := model.Phase(*phaseName)
	if !phase.Valid() {
		log.Error(ctx, "unknown phase", logging.String("phase", *phaseName))
		os.Exit(1)
	}

	var cfg core.Config
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			log.Error(ctx, "config open failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		cfg, err = core.LoadConfig(f)
		f.Close()
		if err != nil {
			log.Error(ctx, "config load failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		cfg.Sim.HumanNum = *humanNum
		cfg.Sim.BaseSeed = *baseSeed
		cfg.Sim.DeterministicEval = *deterministic
		cfg.Robot.Policy = *robotPolicy
		cfg.Humans.Policy = *humanPolicy
		cfg = cfg.ApplyDefaults()
	}

	sim, err := core.NewCrowdSim(cfg, log)
	if err != nil {
		log.Error(ctx, "simulator init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if err := sim.SetRobot(); err != nil {
		log.Error(ctx, "robot attach failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	collector.SetActiveHumans(cfg.Sim.HumanNum)

	store := record.NewStore()
	store.Subscribe(func(e record.Episode) {
		collector.ObserveEpisode(string(e.Phase), e.Outcome.String(), e.SimTime, e.Reward)
	})

	// The robot has no learned policy in this binary; a reciprocal-avoidance
	// driver stands in so episodes are worth watching.
	driver := core.NewReciprocalPolicy()
	tracer := otel.Tracer("crowdnav-simulator")

	for i := 0; i < *episodes; i++ {
		ep, err := runEpisode(ctx, tracer, sim, driver, collector, cfg, phase, *realtime)
		if err != nil {
			log.Error(ctx, "episode failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		if err := store.Add(ep); err != nil {
			log.Warn(ctx, "failed to record episode", logging.String("error", err.Error()))
		}
	}

	fmt.Printf("Ran %d %s episodes:\n", store.Len(), phase)
	for outcome, n := range store.Tally(phase) {
		fmt.Printf("  %-12s %d\n", outcome, n)
	}
}

// runEpisode resets the simulator, drives the robot with the stand-in policy
// until the episode terminates, and returns the episode summary.
func runEpisode(
	ctx context.Context,
	tracer trace.Tracer,
	sim *core.CrowdSim,
	driver core.Policy,
	collector *observability.SimCollector,
	cfg core.Config,
	phase model.Phase,
	realtime bool,
) (record.Episode, error) {
	if _, err := sim.Reset(phase, nil); err != nil {
		return record.Episode{}, err
	}

	_, span := tracer.Start(ctx, "episode", trace.WithAttributes(
		attribute.String("episode.id", sim.EpisodeID()),
		attribute.String("episode.phase", string(phase)),
		attribute.String("episode.scenario", string(sim.Scenario())),
		attribute.Int64("episode.seed", sim.Seed()),
	))
	defer span.End()

	ep := record.Episode{
		ID:       sim.EpisodeID(),
		Phase:    phase,
		Scenario: sim.Scenario(),
		Seed:     sim.Seed(),
	}

	var stepErr error
	stepOnce := func() {
		if stepErr != nil || !sim.Running() {
			return
		}
		action := driver.Act(sim.Robot().State, visibleToRobot(sim))
		_, reward, done, info, err := sim.Step(action)
		if err != nil {
			stepErr = err
			return
		}
		collector.ObserveStep(info.MinSeparation, info.Event == model.EventDanger)
		ep.Reward += reward
		ep.Steps++
		if done {
			ep.Outcome = info.Event
		}
	}

	mode := timectrl.Accelerated
	if realtime {
		mode = timectrl.RealTime
	}
	pacer := timectrl.NewPacer(time.Duration(cfg.Sim.TimeStep*float64(time.Second)), mode)
	pacer.AddListener(func(time.Duration) { stepOnce() })
	<-pacer.Run(func() bool { return stepErr != nil || !sim.Running() })

	if stepErr != nil {
		return record.Episode{}, stepErr
	}
	ep.SimTime = sim.GlobalTime()
	span.SetAttributes(
		attribute.String("episode.outcome", ep.Outcome.String()),
		attribute.Int("episode.steps", ep.Steps),
	)
	return ep, nil
}

// visibleToRobot gathers the observable state of every human inside the
// robot's field of view, which is what the stand-in driver gets to see.
func visibleToRobot(sim *core.CrowdSim) []model.ObservableState {
	robot := sim.Robot()
	out := make([]model.ObservableState, 0, len(sim.Humans()))
	for _, h := range sim.Humans() {
		if robot.CanSee(h) {
			out = append(out, h.State.Observable())
		}
	}
	return out
}
