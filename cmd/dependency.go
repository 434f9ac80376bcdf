package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"ticket-market/common/constant"
	"ticket-market/common/jetstream"
	"ticket-market/common/otel"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	natsJetstream "github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func newCfg(name string) *viper.Viper {
	config := viper.New()

	config.SetConfigName(name)
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	err := config.ReadInConfig()
	if err != nil {
		log.Fatalln(err)
	}

	err = os.Setenv("TZ", config.GetString("server.timezone"))
	if err != nil {
		log.Fatalln(err)
	}

	return config
}

func newDb(cfg *viper.Viper) *pgxpool.Pool {
	username := cfg.GetString("db.user")
	password := cfg.GetString("db.password")
	host := cfg.GetString("db.host")
	port := cfg.GetInt("db.port")
	database := cfg.GetString("db.name")
	maxConn := cfg.GetInt("db.pool.max")
	minConn := cfg.GetInt("db.pool.min")
	timezone := cfg.GetString("server.timezone")

	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?timezone=%s",
		username, password, host, port, database, timezone)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		log.Fatalln(err)
	}

	config.MaxConns = int32(maxConn)
	config.MinConns = int32(minConn)
	config.ConnConfig.Tracer = &otel.PgxCustomTracer{}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalln(err)
	}

	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatalln(err)
	}

	return pool
}

func newRedis(cfg *viper.Viper) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetString("redis.addr"),
		Password: cfg.GetString("redis.password"),
		DB:       0,
	})

	err := rdb.Ping(context.Background()).Err()
	if err != nil {
		log.Fatalln(err)
	}

	return rdb
}

func newNats(cfg *viper.Viper) *nats.Conn {
	conn, err := nats.Connect(cfg.GetString("nats.addr"))
	if err != nil {
		log.Fatalln(err)
	}

	return conn
}

func newJs(conn *nats.Conn) natsJetstream.JetStream {
	js, err := natsJetstream.New(conn)
	if err != nil {
		log.Fatalln(err)
	}

	return js
}

func createStreamWorkQueue(ctx context.Context, js natsJetstream.JetStream) natsJetstream.Stream {
	st, err := jetstream.CreateQueueStream(ctx, js)
	if err != nil {
		log.Fatalln("failed to create stream", constant.QueueStreamName, err)
	}

	return st
}

// newTracerProvider returns the shutdown func of the registered provider.
func newTracerProvider(ctx context.Context, cfg *viper.Viper) func() {
	shutdown, err := otel.NewTracerProvider(ctx, cfg.GetString("otel.endpoint"), cfg.GetString("otel.service_name"))
	if err != nil {
		log.Fatalln("failed to create tracer provider", err)
	}

	return func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("failed to shutdown tracer provider", slog.Any(constant.LogFieldErr, err))
		}
	}
}

// startDevProfiling writes <name>-cpu.prof and <name>-mem.prof when env is dev.
func startDevProfiling(cfg *viper.Viper, name string) func() {
	if cfg.GetString("env") != "dev" {
		return func() {}
	}

	cpu, err := os.Create(name + "-cpu.prof")
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	// dev runs every consumer in the http process and only one CPU profile can be active.
	err = pprof.StartCPUProfile(cpu)
	if err != nil {
		log.Printf("could not start CPU profile: %v", err)
		cpu.Close()
		return func() {}
	}

	return func() {
		pprof.StopCPUProfile()
		cpu.Close()

		mem, err := os.Create(name + "-mem.prof")
		if err != nil {
			log.Printf("could not create memory profile: %v", err)
			return
		}
		defer mem.Close()

		if err = pprof.WriteHeapProfile(mem); err != nil {
			log.Printf("could not write memory profile: %v", err)
		}
	}
}
