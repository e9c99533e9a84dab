package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent describes one step of a phase fraction analysis.
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	AnalysisID     string                 `json:"analysis_id"`
	SourceName     string                 `json:"source_name,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when an analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when an analysis finishes successfully
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when an analysis fails
	AnalysisFailed EventType = "analysis_failed"
	// ReportGenerated when a PDF report is produced
	ReportGenerated EventType = "report_generated"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	ObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events through logrus.
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"analysis_id":     event.AnalysisID,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.SourceName != "" {
		fields["source_name"] = event.SourceName
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	if event.Success {
		entry.Info("analysis event")
	} else {
		entry.Error("analysis event")
	}
}

// ObserverName returns the observer name
func (o *LoggingObserver) ObserverName() string {
	return "logging_observer"
}

// EventPublisher is a thread-safe Subject implementation.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates an empty event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// Subscribe registers an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// NotifyObservers delivers the event to all subscribed observers
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, o := range p.observers {
		o.OnEvent(ctx, event)
	}
}
