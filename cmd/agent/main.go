package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodsense"
	"foodsense/internal/logger"
	"foodsense/internal/pipeline"

	"github.com/spf13/viper"
	"github.com/tarm/serial"
)

const defaultSerialBaud = 115200

func main() {
	log := logger.Get(logger.InfoLevel)

	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	channels, err := loadChannels()
	if err != nil {
		log.Fatalw("invalid channel config", "err", err)
	}

	source := pipeline.NewSimSource(time.Now().UnixNano())
	sampler := pipeline.NewSampler(source, channels, viper.GetDuration("sampler.settle"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport, guard, err := buildTransport(ctx, log)
	if err != nil {
		log.Fatalw("transport setup failed", "err", err)
	}

	display := pipeline.NewLogDisplay(log)

	// liveness failsafe: a stuck loop restarts the process
	watchdog := pipeline.NewWatchdog(log, func() {
		os.Exit(1)
	})

	agent := pipeline.NewAgent(sampler, transport, guard, display, watchdog, log, pipeline.AgentConfig{
		Cycle: viper.GetDuration("cycle"),
		Probe: viper.GetBool("sampler.probe"),
	})

	go agent.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down agent...")
	cancel()
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/agent.yml
	viper.SetConfigName("agent")
	return viper.ReadInConfig()
}

// loadChannels reads the ordered channel descriptors. Channel order in the
// config is the read and wire order.
func loadChannels() ([]foodsense.Channel, error) {
	var raw []struct {
		Label string `mapstructure:"label"`
		Pin   int    `mapstructure:"pin"`
	}
	if err := viper.UnmarshalKey("channels", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no channels configured")
	}
	channels := make([]foodsense.Channel, len(raw))
	for i, c := range raw {
		channels[i] = foodsense.Channel{Index: i, Label: c.Label, Pin: c.Pin}
	}
	return channels, nil
}

// buildTransport selects the serial or HTTP transport from config. The
// connectivity guard only exists for the networked variant.
func buildTransport(ctx context.Context, log *logger.Logger) (pipeline.Transport, *pipeline.Guard, error) {
	switch mode := viper.GetString("transport.mode"); mode {
	case "serial":
		portName := viper.GetString("transport.serial.port")
		baud := viper.GetInt("transport.serial.baud")
		if baud == 0 {
			baud = defaultSerialBaud
		}
		port, err := serial.OpenPort(&serial.Config{Name: portName, Baud: baud})
		if err != nil {
			return nil, nil, fmt.Errorf("open serial port %q: %w", portName, err)
		}
		t := pipeline.NewSerialTransport(port, log)
		if viper.GetBool("transport.serial.read_predictions") {
			t.StartReader(ctx)
		}
		return t, nil, nil

	case "http":
		serverURL := viper.GetString("transport.http.url")
		u, err := url.Parse(serverURL)
		if err != nil || u.Host == "" {
			return nil, nil, fmt.Errorf("invalid transport.http.url %q", serverURL)
		}
		addr := u.Host
		if u.Port() == "" {
			addr = u.Host + ":80"
		}
		guard := pipeline.NewGuard(pipeline.DialLink{Addr: addr}, log)
		return pipeline.NewHTTPTransport(serverURL, guard), guard, nil

	default:
		return nil, nil, fmt.Errorf("unknown transport.mode %q (want serial or http)", mode)
	}
}
