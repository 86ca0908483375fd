package config

// Event stream providers.
const (
	EventStreamNone  = "none"
	EventStreamKafka = "kafka"
)

const (
	defaultServerListen = ":3001"
	defaultEventDelay   = "500ms"

	defaultClientTarget = "http://localhost:3001"

	defaultEventStreamTopic = "parley.exchanges"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:     defaultServerListen,
			EventDelay: defaultEventDelay,
			AllowOrigins: []string{
				"http://localhost:5173",
				"http://localhost:3000",
			},
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
		EventStream: EventStreamConfig{
			Provider: EventStreamNone,
			Topic:    defaultEventStreamTopic,
		},
	}
}
