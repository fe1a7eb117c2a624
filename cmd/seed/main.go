// Command seed fills the students table with SEED_COUNT random students.
package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"studentms/internal/config"
	"studentms/internal/database"
	"studentms/internal/logging"
	"studentms/internal/seed"
	"studentms/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if _, err := logging.Setup(cfg.LogLevel, ""); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}

	provider, err := database.Open(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open the database: %v", err)
	}

	students := seed.GenerateStudentList(cfg.SeedCount)
	if err := service.NewStudentService(provider).CreateInBatches(context.Background(), students, 100); err != nil {
		logrus.Fatalf("Failed to insert students: %v", err)
	}
	logrus.Infof("inserted %d students", len(students))
}
