package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodsense/internal/handlers"
	"foodsense/internal/logger"
	"foodsense/internal/repository"
	"foodsense/internal/repository/db"
	"foodsense/internal/server"
	"foodsense/internal/service"

	"github.com/spf13/viper"
	"github.com/tarm/serial"
)

const defaultSerialBaud = 115200

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	sqldb, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqldb.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// optional MQTT fan-out of stored predictions
	notifier := openNotifier(log)

	// wire dependencies
	repos := repository.NewRepository(sqldb)
	services := service.NewService(repos, notifier, viper.GetString("auth.signing_key"))
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// optional serial bridge for directly attached sensor nodes
	startSerialBridge(ctx, services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "foodsense.db")
		dbPath = "foodsense.db"
	}
	return db.InitDB(dbPath)
}

// openNotifier connects the MQTT notifier when a broker is configured.
func openNotifier(log *logger.Logger) service.Notifier {
	broker := viper.GetString("mqtt.broker")
	if broker == "" {
		return nil
	}
	topic := viper.GetString("mqtt.topic")
	if topic == "" {
		topic = "foodsense/predictions"
	}
	n, err := service.NewMQTTNotifier(broker, "foodsense-server", topic, log)
	if err != nil {
		log.Errorw("mqtt disabled", "broker", broker, "err", err)
		return nil
	}
	log.Infow("mqtt notifier connected", "broker", broker, "topic", topic)
	return n
}

// startSerialBridge runs the bidirectional serial loop when a port is
// configured.
func startSerialBridge(ctx context.Context, services *service.Service, log *logger.Logger) {
	portName := viper.GetString("serial.port")
	if portName == "" {
		return
	}
	baud := viper.GetInt("serial.baud")
	if baud == 0 {
		baud = defaultSerialBaud
	}
	channels := viper.GetInt("serial.channels")
	if channels == 0 {
		channels = 8
	}

	port, err := serial.OpenPort(&serial.Config{Name: portName, Baud: baud})
	if err != nil {
		log.Errorw("serial bridge disabled", "port", portName, "err", err)
		return
	}

	bridge := service.NewSerialBridge(port, services.Classifier, channels, log)
	log.Infow("serial bridge started", "port", portName, "baud", baud, "channels", channels)
	go bridge.Run(ctx)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
