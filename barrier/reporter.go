package barrier

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Reporter receives run progress events. Stage events are informational;
// RunFailed carries the error the run aborted with.
type Reporter interface {
	StageStarted(stage string)
	StageCompleted(stage string, features int)
	RunCompleted(incident, outputPath string, features int)
	RunFailed(incident string, err error)
}

// logReporter writes run events to a zerolog logger.
type logReporter struct {
	log zerolog.Logger
}

// NewLogReporter creates a Reporter backed by the given logger.
func NewLogReporter(log zerolog.Logger) Reporter {
	return &logReporter{log: log}
}

func (r *logReporter) StageStarted(stage string) {
	r.log.Info().Str("stage", stage).Msg("Stage started")
}

func (r *logReporter) StageCompleted(stage string, features int) {
	r.log.Info().Str("stage", stage).Int("features", features).Msg("Stage completed")
}

func (r *logReporter) RunCompleted(incident, outputPath string, features int) {
	r.log.Info().
		Str("incident", incident).
		Str("output", outputPath).
		Int("features", features).
		Msg("Run completed")
}

func (r *logReporter) RunFailed(incident string, err error) {
	r.log.Error().Str("incident", incident).Err(err).Msg("Run failed")
}

// runEvent is the JSON payload published per run event.
type runEvent struct {
	Event     string `json:"event"`
	Incident  string `json:"incident,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Features  int    `json:"features,omitempty"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// MQTTReporter publishes run events to an MQTT broker so incident
// dashboards can track processing without tailing logs. The last event on
// the run topic is retained.
type MQTTReporter struct {
	client   mqtt.Client
	topic    string
	incident string
	log      zerolog.Logger
}

// NewMQTTReporter connects to the broker and returns a reporter publishing
// on containline/runs/<incident>. Returns an error if the broker cannot be
// reached within the connect timeout.
func NewMQTTReporter(cfg MQTTConfig, incident string, log zerolog.Logger) (*MQTTReporter, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "containline"
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		if token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
		return nil, fmt.Errorf("connecting to MQTT broker: timeout")
	}

	return &MQTTReporter{
		client:   client,
		topic:    fmt.Sprintf("containline/runs/%s", incident),
		incident: incident,
		log:      log,
	}, nil
}

// Close disconnects from the broker.
func (r *MQTTReporter) Close() {
	if r.client != nil && r.client.IsConnected() {
		r.client.Disconnect(250)
	}
}

func (r *MQTTReporter) publish(ev runEvent) {
	ev.Incident = r.incident
	ev.Timestamp = time.Now().Unix()

	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Warn().Err(err).Msg("Marshaling run event")
		return
	}
	token := r.client.Publish(r.topic, 0, true, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		r.log.Warn().Err(token.Error()).Str("topic", r.topic).Msg("Publishing run event")
	}
}

func (r *MQTTReporter) StageStarted(stage string) {
	r.publish(runEvent{Event: "stage_started", Stage: stage})
}

func (r *MQTTReporter) StageCompleted(stage string, features int) {
	r.publish(runEvent{Event: "stage_completed", Stage: stage, Features: features})
}

func (r *MQTTReporter) RunCompleted(incident, outputPath string, features int) {
	r.publish(runEvent{Event: "run_completed", Output: outputPath, Features: features})
}

func (r *MQTTReporter) RunFailed(incident string, err error) {
	r.publish(runEvent{Event: "run_failed", Error: err.Error()})
}

// multiReporter fans events out to several reporters.
type multiReporter struct {
	reporters []Reporter
}

// CombineReporters returns a Reporter that forwards every event to each of
// the given reporters. Nil entries are skipped.
func CombineReporters(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return &multiReporter{reporters: rs}
}

func (m *multiReporter) StageStarted(stage string) {
	for _, r := range m.reporters {
		r.StageStarted(stage)
	}
}

func (m *multiReporter) StageCompleted(stage string, features int) {
	for _, r := range m.reporters {
		r.StageCompleted(stage, features)
	}
}

func (m *multiReporter) RunCompleted(incident, outputPath string, features int) {
	for _, r := range m.reporters {
		r.RunCompleted(incident, outputPath, features)
	}
}

func (m *multiReporter) RunFailed(incident string, err error) {
	for _, r := range m.reporters {
		r.RunFailed(incident, err)
	}
}
