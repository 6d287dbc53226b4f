package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/motiontrack/api-native/api/eventbus"
	"github.com/motiontrack/api-native/api/tracking"
	"github.com/motiontrack/api-native/host"
	"github.com/motiontrack/api-native/internal/serde"
	"github.com/motiontrack/api-native/lifecycle"
	"github.com/motiontrack/api-native/metrics"
	"github.com/motiontrack/api-native/platform"
	"github.com/motiontrack/api-native/shim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracksim",
		Short: "Simulate a motion tracking session lifecycle",
		Long: `tracksim drives a tracking session through a scripted sequence of host
lifecycle events (create, resume, pause, destroy) against a scripted engine,
and prints every state change and failure as a JSON line.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd.Flags())
			if err != nil {
				return err
			}

			return run(cmd.Context(), cmd.OutOrStdout(), s)
		},
	}

	bindFlags(cmd.Flags())

	return cmd
}

func run(ctx context.Context, out io.Writer, s settings) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := s.logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sc, err := loadScenario(s.scenario)
	if err != nil {
		return err
	}

	events, err := sc.hostEvents()
	if err != nil {
		return err
	}
	if len(events) == 0 || events[len(events)-1] != host.EventDestroy {
		events = append(events, host.EventDestroy)
	}

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return err
	}

	engine := shim.NewEngine(sc.Engine)
	session, prompter, info, err := platform.Session(engine, s.session, lifecycle.WithLogger(log), recorder.Hook())
	if err != nil {
		return err
	}

	log.Info("Starting tracking session simulation",
		zap.String("os", info.OS),
		zap.Stringer("prompt", info.Prompt),
		zap.String("profile", string(info.Profile)),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	printer := newEventPrinter(out, log)
	shell := host.NewShell(session, prompter, log)

	result := make(chan error, 1)
	go func() { result <- shell.Run(ctx) }()

	for _, ev := range events {
		if err := shell.Post(ctx, ev); err != nil {
			break
		}
	}

	err = <-result
	printer.Close()

	if err := printer.print("engine-calls", engine.Calls()); err != nil {
		return err
	}

	if errors.Is(err, host.ErrFeatureClosed) {
		log.Info("Tracking feature closed after the permission was denied")
		err = nil
	}
	if err != nil {
		return err
	}

	if s.metricsAddr != "" {
		return serveMetrics(ctx, reg, s.metricsAddr, log)
	}

	return nil
}

// eventPrinter writes session events to out as JSON lines, in the order
// they were published. Events published while its buffer is full are lost.
type eventPrinter struct {
	out io.Writer
	log *zap.Logger
	sub eventbus.SubscriberID

	done chan struct{}
	mu   sync.Mutex
}

func newEventPrinter(out io.Writer, log *zap.Logger) *eventPrinter {
	p := &eventPrinter{
		out:  out,
		log:  log,
		sub:  eventbus.Subscribe(tracking.StateEventID, tracking.FailureEventID, tracking.PromptEventID),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)

		for data := range p.sub.C {
			if err := p.print(eventName(data), data); err != nil {
				p.log.Warn("Cannot print event", zap.Error(err))
			}
		}
	}()

	return p
}

func eventName(data any) string {
	switch data.(type) {
	case tracking.StateEvent:
		return tracking.StateEventID.String()

	case tracking.FailureEvent:
		return tracking.FailureEventID.String()

	case tracking.PromptEvent:
		return tracking.PromptEventID.String()
	}

	return "unknown"
}

func (p *eventPrinter) print(name string, data any) error {
	line, err := serde.MarshalJson(map[string]any{
		"event": name,
		"data":  data,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, err = fmt.Fprintln(p.out, string(line))

	return err
}

// Close unsubscribes from the event bus and waits for pending events to be printed.
func (p *eventPrinter) Close() {
	p.sub.Unsubscribe()
	<-p.done
}

func serveMetrics(ctx context.Context, reg *prometheus.Registry, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Serving metrics until interrupted", zap.String("addr", addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
