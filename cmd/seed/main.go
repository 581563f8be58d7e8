package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

const (
	demoEmail    = "demo@fintrack.local"
	demoPassword = "Password123!@#"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.AccessToken{},
		&model.PasswordResetToken{},
		&model.Tracker{},
		&model.Transaction{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	trackers := repository.NewTrackerRepository(gormDB)
	transactions := repository.NewTransactionRepository(gormDB)

	if _, err := users.FindByEmail(ctx, demoEmail); err == nil {
		log.Printf("Demo user %s already exists, nothing to do", demoEmail)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to check for demo user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	user := &model.User{
		Name:         "Demo User",
		Email:        demoEmail,
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created demo user %s (password: %s)", demoEmail, demoPassword)

	tracker := &model.Tracker{
		UserID:      user.ID,
		Name:        "Household",
		Description: "Day to day household spending",
	}
	if err := trackers.Create(ctx, tracker); err != nil {
		log.Fatalf("Failed to create demo tracker: %v", err)
	}
	log.Printf("Created tracker %q (%s)", tracker.Name, tracker.ID)

	seedTransactions := []struct {
		name    string
		amount  string
		txType  model.TransactionType
		daysAgo int
	}{
		{"Monthly salary", "3200.00", model.TransactionTypeIncome, 28},
		{"Rent", "1150.00", model.TransactionTypeExpense, 27},
		{"Groceries", "86.40", model.TransactionTypeExpense, 25},
		{"Electricity bill", "64.20", model.TransactionTypeExpense, 21},
		{"Freelance invoice", "450.00", model.TransactionTypeIncome, 18},
		{"Internet", "39.99", model.TransactionTypeExpense, 14},
		{"Groceries", "102.75", model.TransactionTypeExpense, 10},
		{"Dining out", "58.30", model.TransactionTypeExpense, 6},
		{"Gym membership", "29.00", model.TransactionTypeExpense, 3},
		{"Sold old bike", "120.00", model.TransactionTypeIncome, 1},
	}

	created := 0
	for _, t := range seedTransactions {
		amount, err := decimal.NewFromString(t.amount)
		if err != nil {
			log.Fatalf("Invalid seed amount %q: %v", t.amount, err)
		}
		tx := &model.Transaction{
			TrackerID:       tracker.ID,
			Name:            t.name,
			Amount:          amount,
			Type:            t.txType,
			TransactionDate: time.Now().AddDate(0, 0, -t.daysAgo),
		}
		if err := transactions.Create(ctx, tx); err != nil {
			log.Fatalf("Failed to create transaction %q: %v", t.name, err)
		}
		created++
	}
	log.Printf("Created %d transactions", created)
	log.Println("Seed completed successfully")
}
