package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/palliativ-netz/dienstplan/backend/internal/config"
	"github.com/palliativ-netz/dienstplan/backend/internal/repository"
	"github.com/palliativ-netz/dienstplan/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var month string

	flag.IntVar(&op, "op", 0, "operation (1: seed shift definitions, 2: seed demo employees, 3: seed shift instances for a month, 4: seed demo absences for a month)")
	flag.StringVar(&month, "month", "", "month to seed instances or absences for (YYYY-MM, ops 3 and 4)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("unable to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open only builds the pool object, it does not connect yet.
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("unable to connect to the database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		seed.SeedDefinitions(repo)
	case 2:
		seed.SeedEmployees(repo)
	case 3:
		if month == "" {
			slog.Error("op 3 needs -month YYYY-MM")
			return
		}
		seed.SeedInstances(repo, month)
	case 4:
		if month == "" {
			slog.Error("op 4 needs -month YYYY-MM")
			return
		}
		seed.SeedAbsences(repo, month)
	default:
		slog.Error("unknown operation")
	}
}
