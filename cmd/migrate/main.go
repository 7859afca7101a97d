package main

import (
	"database/sql"
	"flag"
	"log"

	"qtrack/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	var dir string
	flag.StringVar(&dir, "dir", "migrations", "каталог с миграциями")
	flag.Parse()

	command := "up"
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg := config.New()
	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("не удалось открыть соединение с БД: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: %v", err)
	}

	if err := goose.Run(command, db, dir, args...); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
}
