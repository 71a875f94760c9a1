package scanner

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/azurescope/explorer/config"
	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/dispatchers"
	"github.com/azurescope/explorer/pkg/event"
	"github.com/azurescope/explorer/pkg/inventory"
)

// scanTimeout bounds a single subscription scan; az can take minutes on
// large subscriptions.
const scanTimeout = 10 * time.Minute

// Global manager for shutdown coordination
var globalManager *WatcherManager

// WatcherManager coordinates the lifecycle of all subscription watchers
type WatcherManager struct {
	watchers []ShutdownHandler
	mutex    sync.RWMutex
	stopCh   chan struct{}
	done     chan struct{}
}

// ShutdownHandler interface for graceful shutdown
type ShutdownHandler interface {
	Stop()
	WaitForShutdown(timeout time.Duration) bool
}

// SnapshotSink receives the inventory produced by every completed scan.
// The server installs one so dashboard views follow the scanner without
// an explicit re-discover.
type SnapshotSink func(subscriptionID string, snap *inventory.Snapshot)

// SubscriptionWatcher periodically rescans one subscription and diffs the
// result against the previous inventory to detect resource changes.
type SubscriptionWatcher struct {
	subscriptionID string
	cli            *azure.CLI
	conf           *config.Config
	eventHandler   dispatchers.Dispatcher
	sink           SnapshotSink
	eventsMetric   *prometheus.CounterVec
	scansMetric    *prometheus.CounterVec
	logger         *logrus.Entry
	interval       time.Duration
	previous       map[string]azure.Resource
	stopCh         chan struct{}
	done           chan struct{}
	stopped        bool
	mutex          sync.RWMutex
}

func init() {
	globalManager = &WatcherManager{
		watchers: make([]ShutdownHandler, 0),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches a watcher for every stored subscription and waits for
// process termination signals
func Start(conf *config.Config, eventHandler dispatchers.Dispatcher, store azure.SubscriptionStore, cli *azure.CLI, sink SnapshotSink) {
	// Check if the scanner is enabled
	if !conf.Enabled {
		logrus.Info("Scanner is disabled in configuration")
		return
	}

	resourceEventsMetrics := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azurescope_resource_events_total",
			Help: "The total number of Azure resource changes observed by the scanner, labeled by category and event type",
		},
		[]string{"category", "eventType", "subscription"},
	)

	scansMetrics := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azurescope_scans_total",
			Help: "The total number of subscription scans performed, labeled by outcome",
		},
		[]string{"subscription", "status"},
	)

	// Get all known subscriptions from the store
	subscriptions, err := store.GetSubscriptions()
	if err != nil {
		logrus.Errorf("Failed to get subscriptions from store: %v", err)
		return
	}

	logrus.Infof("Found %d subscriptions, filtering based on configuration", len(subscriptions))

	globalManager.mutex.Lock()
	watchedCount := 0
	for _, sub := range subscriptions {
		if !conf.ScansSubscription(sub.ID) {
			logrus.Infof("Skipping subscription '%s' due to configuration", sub.Name)
			continue
		}

		watcher := startSubscriptionWatcher(*sub, conf, eventHandler, cli, sink, resourceEventsMetrics, scansMetrics)
		globalManager.watchers = append(globalManager.watchers, watcher)
		watchedCount++
	}
	globalManager.mutex.Unlock()

	logrus.Infof("Started watchers for %d subscriptions (filtered from %d total)", watchedCount, len(subscriptions))

	// Handle graceful shutdown
	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGTERM)
	signal.Notify(sigterm, syscall.SIGINT)

	select {
	case <-sigterm:
		logrus.Info("Received shutdown signal, gracefully shutting down subscription watchers...")
		gracefulShutdown()
	case <-globalManager.stopCh:
		logrus.Info("Received internal stop signal, shutting down subscription watchers...")
		gracefulShutdown()
	}
}

// gracefulShutdown performs coordinated shutdown of all watchers
func gracefulShutdown() {
	globalManager.mutex.Lock()
	defer globalManager.mutex.Unlock()

	if len(globalManager.watchers) == 0 {
		logrus.Info("No watchers to shutdown")
		close(globalManager.done)
		return
	}

	logrus.Infof("Shutting down %d subscription watchers...", len(globalManager.watchers))

	var wg sync.WaitGroup
	shutdownTimeout := 15 * time.Second

	for i, watcher := range globalManager.watchers {
		wg.Add(1)
		go func(idx int, w ShutdownHandler) {
			defer wg.Done()

			logrus.Infof("Stopping watcher %d...", idx+1)
			w.Stop()

			if !w.WaitForShutdown(shutdownTimeout) {
				logrus.Warnf("Watcher %d did not shutdown gracefully within timeout", idx+1)
			} else {
				logrus.Infof("Watcher %d shutdown successfully", idx+1)
			}
		}(i, watcher)
	}

	// Wait for all watchers to shutdown
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("All subscription watchers shutdown successfully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Timeout waiting for all watchers to shutdown")
	}

	close(globalManager.done)
}

// Stop stops the global watcher manager
func Stop() {
	close(globalManager.stopCh)
	<-globalManager.done
}

func startSubscriptionWatcher(sub azure.Subscription, conf *config.Config, eventHandler dispatchers.Dispatcher, cli *azure.CLI, sink SnapshotSink, eventsMetric, scansMetric *prometheus.CounterVec) *SubscriptionWatcher {
	logrus.Infof("Starting watcher for subscription: %s", sub.Name)

	w := &SubscriptionWatcher{
		subscriptionID: sub.ID,
		cli:            cli,
		conf:           conf,
		eventHandler:   eventHandler,
		sink:           sink,
		eventsMetric:   eventsMetric,
		scansMetric:    scansMetric,
		logger:         logrus.WithField("pkg", "scanner").WithField("subscription", sub.Name),
		interval:       conf.Interval(),
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
	}

	go w.Run()

	return w
}

// Run scans once to establish a baseline, then rescans at the configured
// interval until stopped.
func (w *SubscriptionWatcher) Run() {
	defer close(w.done)

	w.logger.Info("Starting subscription watcher")
	w.scan()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			w.logger.Info("Subscription watcher stopped")
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *SubscriptionWatcher) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	discovery, err := w.cli.Discover(ctx, w.subscriptionID)
	if err != nil {
		// A partial listing would diff as a wave of deletions, so a
		// failed scan never touches the baseline.
		w.logger.Errorf("Scan failed: %v", err)
		if w.scansMetric != nil {
			w.scansMetric.WithLabelValues(w.subscriptionID, "error").Inc()
		}
		return
	}

	if w.scansMetric != nil {
		w.scansMetric.WithLabelValues(w.subscriptionID, "success").Inc()
	}

	w.processScan(discovery)
}

func (w *SubscriptionWatcher) processScan(discovery *azure.Discovery) {
	snap := inventory.NewSnapshot(discovery.Subscription, discovery.ResourceGroups, discovery.Resources)
	if w.sink != nil {
		w.sink(w.subscriptionID, snap)
	}

	current := make(map[string]azure.Resource, len(discovery.Resources))
	for _, r := range discovery.Resources {
		current[strings.ToLower(r.ID)] = r
	}

	w.mutex.Lock()
	previous := w.previous
	w.previous = current
	w.mutex.Unlock()

	if previous == nil {
		w.logger.Infof("Baseline scan recorded %d resources", len(current))
		return
	}

	for _, e := range diff(previous, current, w.subscriptionID) {
		w.handle(e)
	}
}

// diff compares two inventories keyed by lowercased resource id and returns
// the created, updated and deleted events between them.
func diff(previous, current map[string]azure.Resource, subscription string) []event.Event {
	var events []event.Event

	for key, r := range current {
		old, ok := previous[key]
		if !ok {
			events = append(events, event.New(r, subscription, event.ReasonCreated))
			continue
		}
		if !reflect.DeepEqual(old, r) {
			events = append(events, event.New(r, subscription, event.ReasonUpdated))
		}
	}

	for key, r := range previous {
		if _, ok := current[key]; !ok {
			events = append(events, event.New(r, subscription, event.ReasonDeleted))
		}
	}

	return events
}

func (w *SubscriptionWatcher) handle(e event.Event) {
	if !w.conf.Categories.Watches(e.Category) {
		return
	}

	if w.eventsMetric != nil {
		w.eventsMetric.WithLabelValues(e.Category, e.Reason, w.subscriptionID).Inc()
	}

	w.logger.Infof("Processing %s of %s: %s", e.Reason, e.Type, e.Name)
	w.eventHandler.Handle(e)
}

// Stop signals the watcher loop to exit. Safe to call more than once.
func (w *SubscriptionWatcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.stopped {
		return
	}

	w.logger.Info("Stopping subscription watcher")
	w.stopped = true
	close(w.stopCh)
}

// WaitForShutdown waits for the watcher loop to finish
func (w *SubscriptionWatcher) WaitForShutdown(timeout time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
