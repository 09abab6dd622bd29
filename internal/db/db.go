package db

import (
	"fmt"
	"time"

	"github.com/Dhoini/Subscription-service/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DBClient представляет клиент для работы с базой данных.
type DBClient struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewDBClient создает новый экземпляр DBClient.
func NewDBClient(dsn string, log *logger.Logger) (*DBClient, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Errorw("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("db: failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &DBClient{db: db, log: log}, nil
}

// DB возвращает нижележащее соединение sqlx.
func (dc *DBClient) DB() *sqlx.DB {
	return dc.db
}

// Close закрывает соединение с базой данных.
func (dc *DBClient) Close() error {
	if err := dc.db.Close(); err != nil {
		dc.log.Errorw("Failed to close database connection", "error", err)
		return fmt.Errorf("db: failed to close database connection: %w", err)
	}
	return nil
}
