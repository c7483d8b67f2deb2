// Package metrics records one time-series point per completed analysis to
// InfluxDB, giving operators a longitudinal view of portfolio risk as the
// same facilities are re-analysed over time. The recorder consumes the
// domain event stream through a queue group, so in a scaled-out deployment
// at most one replica records each event; writes are asynchronous and the
// request path never blocks on the metrics backend.
package metrics

import (
	"encoding/json"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/nats-io/nats.go"

	"github.com/PLANiT-Institute/climate-risk/pkg/messaging"
)

// Recorder wraps the non-blocking InfluxDB write API.
type Recorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	bus      *messaging.Client
	subjects []string
}

// Config holds InfluxDB connection settings.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// NewRecorder connects to InfluxDB. Write errors are logged and dropped.
func NewRecorder(cfg Config) *Recorder {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	go func() {
		for err := range writeAPI.Errors() {
			log.Printf("metrics: influxdb write error: %v", err)
		}
	}()
	return &Recorder{client: client, writeAPI: writeAPI}
}

// ConsumeEvents subscribes the recorder to the analysis and session
// lifecycle events on the bus.
func (r *Recorder) ConsumeEvents(bus *messaging.Client) error {
	if r == nil || bus == nil {
		return nil
	}
	r.bus = bus
	subscriptions := []struct {
		subject string
		handler func(msg *nats.Msg)
	}{
		{messaging.EventTypeAnalysisCompleted, r.handleAnalysis},
		{messaging.EventTypeSessionExpired, r.handleSessionExpired},
	}
	for _, s := range subscriptions {
		if err := bus.QueueSubscribe(s.subject, "metrics", s.handler); err != nil {
			return err
		}
		r.subjects = append(r.subjects, s.subject)
	}
	return nil
}

func (r *Recorder) handleAnalysis(msg *nats.Msg) {
	var envelope messaging.Event
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Printf("metrics: malformed event envelope: %v", err)
		return
	}
	event, err := messaging.ParseEventData[messaging.AnalysisEvent](&envelope)
	if err != nil {
		log.Printf("metrics: malformed analysis event: %v", err)
		return
	}
	switch event.Kind {
	case "transition":
		r.RecordTransition(event.Scenario, event.PricingRegime, event.FacilityCount, event.TotalNPV)
	case "physical":
		r.RecordPhysical(event.Scenario, event.Year, event.FacilityCount, event.HighRiskCount, event.TotalEAL)
	case "esg":
		r.RecordESG(event.Framework, event.OverallScore, event.MaturityLevel)
	default:
		log.Printf("metrics: unknown analysis kind %q", event.Kind)
	}
}

func (r *Recorder) handleSessionExpired(msg *nats.Msg) {
	var envelope messaging.Event
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Printf("metrics: malformed event envelope: %v", err)
		return
	}
	event, err := messaging.ParseEventData[messaging.SessionEvent](&envelope)
	if err != nil {
		log.Printf("metrics: malformed session event: %v", err)
		return
	}
	point := influxdb2.NewPoint("session_expired",
		map[string]string{},
		map[string]interface{}{
			"facility_count": event.FacilityCount,
		},
		time.Now())
	r.writeAPI.WritePoint(point)
}

// RecordTransition records a transition analysis headline.
func (r *Recorder) RecordTransition(scenario, regime string, facilityCount int, totalNPV float64) {
	if r == nil {
		return
	}
	point := influxdb2.NewPoint("transition_risk",
		map[string]string{"scenario": scenario, "pricing_regime": regime},
		map[string]interface{}{
			"total_npv":      totalNPV,
			"facility_count": facilityCount,
		},
		time.Now())
	r.writeAPI.WritePoint(point)
}

// RecordPhysical records a physical assessment headline.
func (r *Recorder) RecordPhysical(scenario string, year, facilityCount, highRisk int, totalEAL float64) {
	if r == nil {
		return
	}
	point := influxdb2.NewPoint("physical_risk",
		map[string]string{"scenario": scenario},
		map[string]interface{}{
			"assessment_year": year,
			"facility_count":  facilityCount,
			"high_risk_count": highRisk,
			"total_eal":       totalEAL,
		},
		time.Now())
	r.writeAPI.WritePoint(point)
}

// RecordESG records a framework score.
func (r *Recorder) RecordESG(framework string, overallScore float64, maturityLevel int) {
	if r == nil {
		return
	}
	point := influxdb2.NewPoint("esg_score",
		map[string]string{"framework": framework},
		map[string]interface{}{
			"overall_score":  overallScore,
			"maturity_level": maturityLevel,
		},
		time.Now())
	r.writeAPI.WritePoint(point)
}

// Close drops the event subscriptions, flushes pending points, and shuts
// the client down.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	for _, subject := range r.subjects {
		if err := r.bus.Unsubscribe(subject); err != nil {
			log.Printf("metrics: unsubscribe %s: %v", subject, err)
		}
	}
	r.subjects = nil
	r.writeAPI.Flush()
	r.client.Close()
}
