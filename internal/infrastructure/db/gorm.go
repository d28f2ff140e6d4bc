package db

import (
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arthalend-backend/internal/domain/agreement"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/transaction"
	"arthalend-backend/internal/domain/user"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Println("gorm: connected")
	return db, nil
}

// Migrate creates or updates the keyed collections.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.Session{},
		&kyc.Record{},
		&credit.Score{},
		&credit.Stats{},
		&loan.Loan{},
		&loan.Acceptance{},
		&transaction.Receipt{},
		&repayment.Repayment{},
		&agreement.Execution{},
	)
}
