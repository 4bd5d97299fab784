package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seedgen/config"
	"seedgen/pipeline"
	"seedgen/sink"
	"seedgen/sink/kafka"
	"seedgen/sink/mysql"
	"seedgen/sink/postgres"
	"seedgen/sink/s3"
	"seedgen/sink/sqlite"
)

func createSink(cfg *config.Config) (sink.Sink, error) {
	switch cfg.Sink {
	case "sqlite":
		return sqlite.OpenSqliteSink(sqlite.SqliteConfig{Path: cfg.Sqlite.Path})
	case "postgres":
		return postgres.OpenPostgresSink(postgres.PostgresConfig{
			DbHost:   cfg.Postgres.Host,
			Database: cfg.Postgres.Database,
			DbPort:   cfg.Postgres.Port,
			DbUser:   cfg.Postgres.User,
		})
	case "mysql":
		return mysql.OpenMysqlSink(mysql.MysqlConfig{
			DbHost:     cfg.Mysql.Host,
			Database:   cfg.Mysql.Database,
			DbPort:     cfg.Mysql.Port,
			DbUser:     cfg.Mysql.User,
			DbPassword: cfg.Mysql.Password,
		})
	case "kafka":
		return kafka.OpenKafkaSink(kafka.KafkaConfig{
			Brokers:            cfg.Kafka.Brokers,
			NoRecreateIfExists: cfg.Kafka.NoRecreateIfExists,
		})
	case "s3":
		return s3.OpenS3Sink(s3.S3Config{Bucket: cfg.S3.Bucket, Region: cfg.S3.Region})
	default:
		return nil, fmt.Errorf("invalid sink type: %s", cfg.Sink)
	}
}

func runCommand(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	terminateCh := make(chan os.Signal, 1)
	signal.Notify(terminateCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-terminateCh
		log.Println("Cancelled")
		cancel()
	}()

	sinkImpl, err := createSink(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinkImpl.Close(); err != nil {
			log.Print(err)
		}
	}()

	ctl, err := pipeline.NewController(pipeline.Options{
		Seed:          cfg.Seed,
		Window:        cfg.Window(time.Now()),
		BatchSize:     cfg.BatchSize,
		Users:         cfg.Users,
		EventsPerUser: cfg.EventsPerUser,
		OrdersPerUser: cfg.OrdersPerUser,
		Parallel:      cfg.Parallel,
		RowsPerSecond: cfg.RowsPerSecond,
	}, sinkImpl)
	if err != nil {
		return err
	}

	report, err := ctl.Run(ctx)
	logReport(report)
	return err
}

func logReport(r *pipeline.RunReport) {
	if r == nil {
		return
	}
	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)
	if r.State == pipeline.StateComplete {
		log.Printf("Run complete in %s: %d users, %d events, %d orders",
			elapsed, r.Users.Written, r.Events.Written, r.Orders.Written)
	} else {
		log.Printf("Run %s at stage %s after %s: %v", r.State, r.FailedStage, elapsed, r.Err)
		log.Printf("Partial output: %d users, %d events, %d orders written",
			r.Users.Written, r.Events.Written, r.Orders.Written)
	}
	if r.Orders.Produced < r.Orders.Requested {
		log.Printf("Order shortfall: requested %d, produced %d", r.Orders.Requested, r.Orders.Produced)
	}
}
