package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings — бизнес-настройки движка. Передаются сервисам явно
// при конструировании, а не читаются посреди алгоритма.
type Settings struct {
	// CreditUnitPriceHUF — цена одного кредита, когда у шаблона
	// нет собственной базовой цены
	CreditUnitPriceHUF int64
	// OccurrenceHorizonWeeks — на сколько недель вперёд генерировать занятия
	OccurrenceHorizonWeeks int
	// BillLateCancellations — включать ли в ведомость регистрации,
	// отменённые после начала занятия
	BillLateCancellations bool
	// Currency — валюта всех расчётов
	Currency string
}

type Config struct {
	DBDSN          string
	Environment    string
	MigrationsPath string
	Settings       Settings
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		Settings: Settings{
			CreditUnitPriceHUF:     1000,
			OccurrenceHorizonWeeks: 4,
			Currency:               "HUF",
		},
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	if v := os.Getenv("CREDIT_UNIT_PRICE_HUF"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse CREDIT_UNIT_PRICE_HUF: %w", err)
		}
		cfg.Settings.CreditUnitPriceHUF = price
	}

	if v := os.Getenv("OCCURRENCE_HORIZON_WEEKS"); v != "" {
		weeks, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse OCCURRENCE_HORIZON_WEEKS: %w", err)
		}
		cfg.Settings.OccurrenceHorizonWeeks = weeks
	}

	if v := os.Getenv("BILL_LATE_CANCELLATIONS"); v != "" {
		bill, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse BILL_LATE_CANCELLATIONS: %w", err)
		}
		cfg.Settings.BillLateCancellations = bill
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
