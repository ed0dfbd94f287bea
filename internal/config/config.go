// Package config loads the simulator's properties file and turns it into the
// engine's in-memory configuration. All structural validation beyond parsing
// lives in the engine; errors here are fatal at startup.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/whatsacomputertho/elevator-optimization/internal/engine"
)

type DoorProps struct {
	Name        string
	Position    float64
	ArrivalProb float64
}

type ElevatorProps struct {
	Name               string
	Position           float64
	InitialFloor       int
	EnergyUp           float64
	EnergyDown         float64
	EnergyPerPassenger float64
}

type SimConfig struct {
	ListenAddr string

	Floors int
	Seed   int64

	Ticks        int
	Drain        bool
	TickInterval time.Duration

	// Transition shape: PUp is the total ground-to-upper mass (spread
	// uniformly over the upper floors), PLeave the ground exit probability,
	// PDown the probability an upper-floor resident heads for the ground.
	PUp    float64
	PLeave float64
	PDown  float64

	WeightFn string
	Lambda   float64

	Doors     []DoorProps
	Elevators []ElevatorProps

	// Publisher is one of "kafka", "mqtt", "none".
	Publisher    string
	KafkaBrokers []string
	TopicPrefix  string
	MQTTBroker   string
}

func loadProps(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load properties file: %w", err)
	}
	lines := strings.Split(string(b), "\n")
	m := map[string]string{}
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") || strings.HasPrefix(ln, "//") {
			continue
		}
		kv := strings.SplitN(ln, "=", 2)
		if len(kv) != 2 {
			continue
		}
		m[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return m, nil
}

func getf(m map[string]string, key string, def float64, log *slog.Logger) float64 {
	if v, ok := m[key]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn("invalid float in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func geti(m map[string]string, key string, def int, log *slog.Logger) int {
	if v, ok := m[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn("invalid int in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func getb(m map[string]string, key string, def bool, log *slog.Logger) bool {
	if v, ok := m[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn("invalid bool in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func getd(m map[string]string, key string, def time.Duration, log *slog.Logger) time.Duration {
	if v, ok := m[key]; ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warn("invalid duration in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Load reads the properties file named by the SIM_PROPERTIES env var.
func Load(log *slog.Logger) (SimConfig, error) {
	propsPath := os.Getenv("SIM_PROPERTIES")
	if propsPath == "" {
		return SimConfig{}, errors.New("SIM_PROPERTIES env var not set")
	}
	return LoadFile(propsPath, log)
}

// LoadFile reads one properties file into a SimConfig.
func LoadFile(path string, log *slog.Logger) (SimConfig, error) {
	props, err := loadProps(path)
	if err != nil {
		return SimConfig{}, err
	}

	cfg := SimConfig{
		ListenAddr:   props["listen_addr"],
		Floors:       geti(props, "building.floors", 6, log),
		Seed:         int64(geti(props, "building.seed", 1, log)),
		Ticks:        geti(props, "sim.ticks", 500, log),
		Drain:        getb(props, "sim.drain", false, log),
		TickInterval: getd(props, "sim.tick_interval", 0, log),
		PUp:          getf(props, "transition.p_up", 0.4, log),
		PLeave:       getf(props, "transition.p_leave", 0.1, log),
		PDown:        getf(props, "transition.p_down", 0.1, log),
		WeightFn:     props["weight.fn"],
		Lambda:       getf(props, "weight.lambda", 0.5, log),
		Publisher:    props["publisher"],
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.WeightFn == "" {
		cfg.WeightFn = "inverse"
	}
	if cfg.Publisher == "" {
		cfg.Publisher = "none"
	}
	switch cfg.Publisher {
	case "kafka", "mqtt", "none":
	default:
		return SimConfig{}, fmt.Errorf("unknown publisher %q", cfg.Publisher)
	}

	doorNames := splitCSV(props["doors"])
	if len(doorNames) == 0 {
		doorNames = []string{"main"}
	}
	for _, name := range doorNames {
		cfg.Doors = append(cfg.Doors, DoorProps{
			Name:        name,
			Position:    getf(props, "door."+name+".position", 0, log),
			ArrivalProb: getf(props, "door."+name+".arrival_p", 0.3, log),
		})
	}

	elevatorNames := splitCSV(props["elevators"])
	if len(elevatorNames) == 0 {
		elevatorNames = []string{"A"}
	}
	for _, name := range elevatorNames {
		prefix := "elevator." + name + "."
		cfg.Elevators = append(cfg.Elevators, ElevatorProps{
			Name:               name,
			Position:           getf(props, prefix+"position", 0, log),
			InitialFloor:       geti(props, prefix+"initial_floor", 0, log),
			EnergyUp:           getf(props, prefix+"energy_up", 2.0, log),
			EnergyDown:         getf(props, prefix+"energy_down", 1.0, log),
			EnergyPerPassenger: getf(props, prefix+"energy_per_passenger", 0, log),
		})
	}

	brokersEnv := os.Getenv("KAFKA_BROKERS")
	if brokersEnv == "" {
		brokersEnv = "kafka:9092"
	}
	cfg.KafkaBrokers = splitCSV(brokersEnv)
	cfg.TopicPrefix = os.Getenv("TOPIC_TICKS_PREFIX")
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "elevator.ticks"
	}
	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	if cfg.MQTTBroker == "" {
		cfg.MQTTBroker = "tcp://localhost:1883"
	}

	return cfg, nil
}

// BuildTransitions expands the three transition shape parameters into one
// validated-shape distribution per floor: the ground floor spreads PUp
// uniformly over the upper floors and exits with PLeave; upper floors head
// for the ground with PDown and otherwise stay.
func BuildTransitions(floors int, pUp, pLeave, pDown float64) ([]engine.TransitionDist, error) {
	if floors < 2 {
		return nil, fmt.Errorf("need at least 2 floors, got %d", floors)
	}
	if pUp < 0 || pLeave < 0 || pDown < 0 || pUp+pLeave > 1 || pDown > 1 {
		return nil, fmt.Errorf("transition shape out of range: p_up=%f p_leave=%f p_down=%f", pUp, pLeave, pDown)
	}

	out := make([]engine.TransitionDist, floors)
	groundTo := make([]float64, floors)
	per := pUp / float64(floors-1)
	for i := 1; i < floors; i++ {
		groundTo[i] = per
	}
	out[0] = engine.TransitionDist{Stay: 1 - pUp - pLeave, To: groundTo, Leave: pLeave}

	for i := 1; i < floors; i++ {
		to := make([]float64, floors)
		to[0] = pDown
		out[i] = engine.TransitionDist{Stay: 1 - pDown, To: to}
	}
	return out, nil
}

// EngineConfig assembles the engine's validated configuration from the loaded
// properties.
func (c SimConfig) EngineConfig() (engine.Config, error) {
	transitions, err := BuildTransitions(c.Floors, c.PUp, c.PLeave, c.PDown)
	if err != nil {
		return engine.Config{}, err
	}

	var weight engine.WeightFunc
	switch c.WeightFn {
	case "inverse":
		weight = engine.InverseDistanceWeight
	case "exponential":
		weight = engine.ExponentialDecayWeight(c.Lambda)
	default:
		return engine.Config{}, fmt.Errorf("unknown weight function %q", c.WeightFn)
	}

	cfg := engine.Config{
		FloorCount:  c.Floors,
		Transitions: transitions,
		Seed:        c.Seed,
		Weight:      weight,
	}
	for _, d := range c.Doors {
		cfg.Doors = append(cfg.Doors, engine.DoorConfig{
			Name:        d.Name,
			Position:    d.Position,
			ArrivalProb: d.ArrivalProb,
		})
	}
	for _, e := range c.Elevators {
		cfg.Elevators = append(cfg.Elevators, engine.ElevatorConfig{
			Name:               e.Name,
			Home:               e.Position,
			InitialFloor:       e.InitialFloor,
			EnergyUp:           e.EnergyUp,
			EnergyDown:         e.EnergyDown,
			EnergyPerPassenger: e.EnergyPerPassenger,
		})
	}
	return cfg, nil
}
