package observability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-news-backend/internal/config"
)

// stubClient is an otlptrace.Client that never dials.
type stubClient struct {
	started, stopped atomic.Bool
}

func (c *stubClient) Start(context.Context) error { c.started.Store(true); return nil }
func (c *stubClient) Stop(context.Context) error  { c.stopped.Store(true); return nil }
func (c *stubClient) UploadTraces(context.Context, []*tracepb.ResourceSpans) error {
	return nil
}

// withGlobals restores the otel globals and the package seams after t.
func withGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	exp, res := newOTLPExporterFn, newServiceResourceFn
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
		newOTLPExporterFn, newServiceResourceFn = exp, res
	})
}

// stubExporter routes SetupOTel through a stubClient.
func stubExporter(t *testing.T) *stubClient {
	t.Helper()
	client := &stubClient{}
	newOTLPExporterFn = func(ctx context.Context, _ otlptrace.Client) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, client)
	}
	return client
}

func enabled(name string) config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: true, Endpoint: "collector:4317", ServiceName: name, SampleRatio: 1}
}

func TestSetupOTel_DisabledTouchesNothing(t *testing.T) {
	withGlobals(t)
	tp := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Endpoint: "unused:4317"}, "dev")
	if err != nil || shutdown == nil {
		t.Fatalf("SetupOTel(disabled) = %v, %v", shutdown, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != tp {
		t.Fatalf("disabled setup replaced the tracer provider")
	}
}

func TestSetupOTel_InstallsProviderAndPropagators(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		t.Run(map[bool]string{true: "insecure", false: "tls"}[insecure], func(t *testing.T) {
			withGlobals(t)
			client := stubExporter(t)
			var gotName, gotVersion string
			newServiceResourceFn = func(ctx context.Context, name, version string) (*resource.Resource, error) {
				gotName, gotVersion = name, version
				return resource.Empty(), nil
			}

			cfg := enabled("news-api")
			cfg.Insecure = insecure
			shutdown, err := SetupOTel(context.Background(), cfg, "1.4.0")
			if err != nil {
				t.Fatalf("SetupOTel: %v", err)
			}
			if !client.started.Load() {
				t.Fatalf("exporter client was not started")
			}
			if gotName != "news-api" || gotVersion != "1.4.0" {
				t.Fatalf("resource built for %q %q", gotName, gotVersion)
			}
			if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
				t.Fatalf("global provider is %T", otel.GetTracerProvider())
			}

			ctx, span := otel.Tracer("news").Start(context.Background(), "GET /api/articles")
			carrier := propagation.MapCarrier{}
			otel.GetTextMapPropagator().Inject(ctx, carrier)
			span.End()
			if carrier.Get("traceparent") == "" {
				t.Fatalf("traceparent not injected: %v", carrier)
			}

			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
			if !client.stopped.Load() {
				t.Fatalf("shutdown did not stop the exporter client")
			}
		})
	}
}

func TestSetupOTel_FailuresLeaveGlobals(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) *stubClient
	}{
		{"exporter", func(t *testing.T) *stubClient {
			newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("collector unreachable")
			}
			return nil
		}},
		{"resource", func(t *testing.T) *stubClient {
			client := stubExporter(t)
			newServiceResourceFn = func(context.Context, string, string) (*resource.Resource, error) {
				return nil, errors.New("conflicting schema url")
			}
			return client
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withGlobals(t)
			client := tc.setup(t)
			tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()

			if _, err := SetupOTel(context.Background(), enabled("news-api"), "1.4.0"); err == nil {
				t.Fatalf("expected %s failure", tc.name)
			}
			if otel.GetTracerProvider() != tp || otel.GetTextMapPropagator() != prop {
				t.Fatalf("globals changed after %s failure", tc.name)
			}
			if client != nil && !client.stopped.Load() {
				t.Fatalf("exporter left running after %s failure", tc.name)
			}
		})
	}
}

func TestInstrumentGORM_QueriesBecomeSpans(t *testing.T) {
	withGlobals(t)
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := InstrumentGORM(db); err != nil {
		t.Fatalf("InstrumentGORM: %v", err)
	}
	if err := InstrumentGORM(db); err == nil {
		t.Fatalf("registering the plugin twice should fail")
	}

	var n int
	if err := db.Raw("SELECT 1").Scan(&n).Error; err != nil || n != 1 {
		t.Fatalf("query through instrumented db: n=%d err=%v", n, err)
	}
	if len(rec.Ended()) == 0 {
		t.Fatalf("expected a span for the query")
	}
}
