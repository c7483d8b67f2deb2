package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeSessionCreated = "session.created"
	EventTypeSessionExpired = "session.expired"

	EventTypeAnalysisCompleted = "analysis.completed"
)

// Event is the base event structure
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  EventMetadata   `json:"metadata"`
}

// EventMetadata contains event metadata
type EventMetadata struct {
	CorrelationID string `json:"correlation_id"`
	Source        string `json:"source"`
}

// SessionEvent carries session lifecycle data
type SessionEvent struct {
	SessionID     string `json:"session_id"`
	CompanyName   string `json:"company_name"`
	FacilityCount int    `json:"facility_count"`
}

// AnalysisEvent carries the headline figures of a completed analysis
type AnalysisEvent struct {
	Kind          string  `json:"kind"` // "transition" | "physical" | "esg"
	Scenario      string  `json:"scenario,omitempty"`
	PricingRegime string  `json:"pricing_regime,omitempty"`
	Framework     string  `json:"framework,omitempty"`
	FacilityCount int     `json:"facility_count"`
	TotalNPV      float64 `json:"total_npv,omitempty"`
	TotalEAL      float64 `json:"total_eal,omitempty"`
	Year          int     `json:"year,omitempty"`
	HighRiskCount int     `json:"high_risk_count,omitempty"`
	OverallScore  float64 `json:"overall_score,omitempty"`
	MaturityLevel int     `json:"maturity_level,omitempty"`
}

// NewEvent creates a new event
func NewEvent(eventType string, data interface{}, metadata EventMetadata) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      dataBytes,
		Metadata:  metadata,
	}, nil
}

// ParseEventData parses event data into the specified type
func ParseEventData[T any](event *Event) (*T, error) {
	var data T
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
