package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/oshokin/emf-schedule/internal/api/grpc/announcements"
	"github.com/oshokin/emf-schedule/internal/api/httpapi"
	"github.com/oshokin/emf-schedule/internal/api/websocket"
	"github.com/oshokin/emf-schedule/internal/cmdutil"
	"github.com/oshokin/emf-schedule/internal/config"
	"github.com/oshokin/emf-schedule/internal/logger"
	"github.com/oshokin/emf-schedule/internal/metrics"
	repository "github.com/oshokin/emf-schedule/internal/repository/schedule"
	"github.com/oshokin/emf-schedule/internal/service/announcer"
)

// Options controls the announcer process. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// URL overrides the upstream schedule location.
	URL string
	// RefreshInterval overrides the schedule refresh period.
	RefreshInterval time.Duration
	// PreEventAnnouncementTime overrides the announcement lead time when non-nil.
	PreEventAnnouncementTime *time.Duration
	// ListenAddress overrides the metrics, health and WebSocket listener.
	ListenAddress string
	// GRPCAddress overrides the announcement stream listener.
	GRPCAddress string
	// MQTTBroker overrides the broker host.
	MQTTBroker string
	// MQTTTopicPrefix overrides the topic prefix.
	MQTTTopicPrefix string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// Run announces events until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "schedule-announcer")

	settings, err := resolve(opts)
	if err != nil {
		return err
	}

	if err = cmdutil.ConfigureLogger(settings.LogLevel); err != nil {
		return err
	}

	m := metrics.New()
	source := repository.NewHTTPSource(settings.APIURL, repository.WithTimeout(settings.Timeout))

	ann, err := announcer.New(ctx, announcer.Settings{
		RefreshInterval: settings.RefreshInterval,
		StartOffset:     settings.StartOffset(),
	}, source, announcer.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("start announcer: %w", err)
	}
	defer ann.Close()

	hub := websocket.NewHub()
	stream := announcements.NewServer()
	sinks := []Sink{NewHubSink(hub), NewStreamSink(stream)}

	if settings.MQTT.Broker != "" {
		client := connectMQTT(ctx, settings.MQTT)
		defer client.Disconnect(mqttDisconnectWait)

		sinks = append(sinks, NewMQTTSinks(client, settings.MQTT.TopicPrefix)...)
	} else {
		logger.Info(ctx, "MQTT broker not configured, MQTT announcements disabled")
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		hub.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		return httpapi.Serve(groupCtx, settings.Announcer.ListenAddress, routes(hub, m))
	})

	if settings.Announcer.GRPCAddress != "" {
		group.Go(func() error {
			return serveGRPC(groupCtx, settings.Announcer.GRPCAddress, stream)
		})
	}

	group.Go(func() error {
		defer stream.Close()

		return New(ann, m, sinks...).Loop(groupCtx)
	})

	return group.Wait()
}

// routes serves metrics, health and the display WebSocket.
func routes(hub *websocket.Hub, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpapi.Healthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Method(http.MethodGet, "/ws", hub)

	return r
}

// serveGRPC serves the announcement stream until ctx is canceled.
func serveGRPC(ctx context.Context, address string, stream *announcements.Server) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	announcements.Register(grpcServer, stream)

	logger.InfoKV(ctx, "Announcement stream listening", "listen_address", address)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		stream.Close()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolve loads the configuration and applies option overrides.
func resolve(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.URL != "" {
		settings.APIURL = opts.URL
	}

	if opts.RefreshInterval > 0 {
		settings.RefreshInterval = opts.RefreshInterval
	}

	if opts.PreEventAnnouncementTime != nil {
		settings.PreEventAnnouncementTime = *opts.PreEventAnnouncementTime
	}

	if opts.ListenAddress != "" {
		settings.Announcer.ListenAddress = opts.ListenAddress
	}

	if opts.GRPCAddress != "" {
		settings.Announcer.GRPCAddress = opts.GRPCAddress
	}

	if opts.MQTTBroker != "" {
		settings.MQTT.Broker = opts.MQTTBroker
	}

	if opts.MQTTTopicPrefix != "" {
		settings.MQTT.TopicPrefix = opts.MQTTTopicPrefix
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return settings, nil
}
