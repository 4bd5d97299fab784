package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"seedgen/config"
)

var (
	cfg        = config.Default()
	configPath string
	parallel   bool
)

// prepare resolves the effective configuration: a config file, when given,
// replaces the flag values, and SEEDGEN_* env vars win over both.
func prepare() error {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	} else {
		cfg.ApplyEnv()
	}
	if parallel {
		cfg.Parallel = true
	}
	return nil
}

func run(sinkType string) error {
	if err := prepare(); err != nil {
		return err
	}
	// The subcommand decides the sink even when a config file names one.
	cfg.Sink = sinkType
	return runCommand(&cfg)
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seedgen",
		Usage: "Generate a relationally-consistent synthetic dataset and load it into an analytical store",
		Commands: []cli.Command{
			{
				Name: "sqlite",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "path",
						Usage:       "The sqlite database file to write",
						Required:    false,
						Value:       "data/seedgen.db",
						Destination: &cfg.Sqlite.Path,
					},
				},
				Action: func(c *cli.Context) error {
					return run("sqlite")
				},
			},
			{
				Name: "postgres",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "host",
						Usage:       "The host address of the PostgreSQL server",
						Required:    false,
						Value:       "localhost",
						Destination: &cfg.Postgres.Host,
					},
					cli.StringFlag{
						Name:        "db",
						Usage:       "The database where the target tables are located",
						Required:    false,
						Value:       "dev",
						Destination: &cfg.Postgres.Database,
					},
					cli.IntFlag{
						Name:        "port",
						Usage:       "The port of the PostgreSQL server",
						Required:    false,
						Value:       5432,
						Destination: &cfg.Postgres.Port,
					},
					cli.StringFlag{
						Name:        "user",
						Usage:       "The user to Postgres",
						Required:    false,
						Value:       "postgres",
						Destination: &cfg.Postgres.User,
					},
				},
				Action: func(c *cli.Context) error {
					return run("postgres")
				},
			},
			{
				Name: "mysql",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "host",
						Usage:       "The host address of the MySQL server",
						Required:    false,
						Value:       "localhost",
						Destination: &cfg.Mysql.Host,
					},
					cli.StringFlag{
						Name:        "db",
						Usage:       "The database where the target tables are located",
						Required:    false,
						Value:       "dev",
						Destination: &cfg.Mysql.Database,
					},
					cli.IntFlag{
						Name:        "port",
						Usage:       "The port of the MySQL server",
						Required:    false,
						Value:       3306,
						Destination: &cfg.Mysql.Port,
					},
					cli.StringFlag{
						Name:        "user",
						Usage:       "The user to MySQL",
						Required:    false,
						Value:       "root",
						Destination: &cfg.Mysql.User,
					},
					cli.StringFlag{
						Name:        "password",
						Usage:       "The password to MySQL",
						Required:    false,
						Destination: &cfg.Mysql.Password,
					},
				},
				Action: func(c *cli.Context) error {
					return run("mysql")
				},
			},
			{
				Name: "kafka",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "brokers",
						Usage:       "Kafka bootstrap brokers to connect to, as a comma separated list",
						Required:    true,
						Destination: &cfg.Kafka.Brokers,
					},
					cli.BoolFlag{
						Name:        "no-recreate",
						Usage:       "Do not recreate a Kafka topic when it exists.",
						Required:    false,
						Destination: &cfg.Kafka.NoRecreateIfExists,
					},
				},
				Action: func(c *cli.Context) error {
					return run("kafka")
				},
				HelpName: "seedgen kafka",
			},
			{
				Name: "s3",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:        "bucket",
						Usage:       "The S3 bucket to upload the tables to",
						Required:    true,
						Destination: &cfg.S3.Bucket,
					},
					cli.StringFlag{
						Name:        "region",
						Usage:       "The region where the bucket resides",
						Required:    true,
						Destination: &cfg.S3.Region,
					},
				},
				Action: func(c *cli.Context) error {
					return run("s3")
				},
				HelpName: "seedgen s3",
			},
		},
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "config",
				Usage:       "Path to a seedgen config file (json or yaml); replaces the volume flags",
				Required:    false,
				Destination: &configPath,
			},
			cli.Int64Flag{
				Name:        "seed",
				Usage:       "Random seed; the same seed reproduces the same dataset",
				Required:    false,
				Value:       1,
				Destination: &cfg.Seed,
			},
			cli.IntFlag{
				Name:        "users",
				Usage:       "Number of users to generate",
				Required:    false,
				Value:       10000,
				Destination: &cfg.Users,
			},
			cli.Float64Flag{
				Name:        "events-per-user",
				Usage:       "Events generated per user",
				Required:    false,
				Value:       5.0,
				Destination: &cfg.EventsPerUser,
			},
			cli.Float64Flag{
				Name:        "orders-per-user",
				Usage:       "Orders generated per user",
				Required:    false,
				Value:       2.0,
				Destination: &cfg.OrdersPerUser,
			},
			cli.IntFlag{
				Name:        "batch-size",
				Usage:       "Number of records per write batch",
				Required:    false,
				Value:       1000,
				Destination: &cfg.BatchSize,
			},
			cli.IntFlag{
				Name:        "window-days",
				Usage:       "How many days back the generation window reaches",
				Required:    false,
				Value:       730,
				Destination: &cfg.WindowDays,
			},
			cli.IntFlag{
				Name:        "rps",
				Usage:       "Rows written per second, 0 for unthrottled",
				Required:    false,
				Destination: &cfg.RowsPerSecond,
			},
			cli.BoolFlag{
				Name:        "parallel",
				Usage:       "Run the event and order stages concurrently; order generation then sees no purchase signals",
				Required:    false,
				Destination: &parallel,
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}
