package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"animalsquad/internal/config"
	"animalsquad/internal/db"
	"animalsquad/internal/logger"
	"animalsquad/internal/model"
	"animalsquad/internal/repository"
)

// seoulDistricts are the administrative codes of the 25 Seoul districts.
var seoulDistricts = []model.Address{
	{Code: 11110, Name: "종로구"},
	{Code: 11140, Name: "중구"},
	{Code: 11170, Name: "용산구"},
	{Code: 11200, Name: "성동구"},
	{Code: 11215, Name: "광진구"},
	{Code: 11230, Name: "동대문구"},
	{Code: 11260, Name: "중랑구"},
	{Code: 11290, Name: "성북구"},
	{Code: 11305, Name: "강북구"},
	{Code: 11320, Name: "도봉구"},
	{Code: 11350, Name: "노원구"},
	{Code: 11380, Name: "은평구"},
	{Code: 11410, Name: "서대문구"},
	{Code: 11440, Name: "마포구"},
	{Code: 11470, Name: "양천구"},
	{Code: 11500, Name: "강서구"},
	{Code: 11530, Name: "구로구"},
	{Code: 11545, Name: "금천구"},
	{Code: 11560, Name: "영등포구"},
	{Code: 11590, Name: "동작구"},
	{Code: 11620, Name: "관악구"},
	{Code: 11650, Name: "서초구"},
	{Code: 11680, Name: "강남구"},
	{Code: 11710, Name: "송파구"},
	{Code: 11740, Name: "강동구"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(cfg.AppEnv, cfg.LogLevel, "seed")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	logg.Info("starting seed script")

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logg.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB, logg); err != nil {
		logg.Fatal("failed to run migrations", zap.Error(err))
	}

	seeded, updated, err := seedAddresses(context.Background(), repository.NewAddressRepository(gormDB), seoulDistricts)
	if err != nil {
		logg.Fatal("failed to seed addresses", zap.Error(err))
	}

	logg.Info("seed completed",
		zap.Int("created", seeded),
		zap.Int("updated", updated),
		zap.Int("total", seeded+updated),
	)
}

// seedAddresses creates missing addresses and renames existing ones, keyed by code.
func seedAddresses(ctx context.Context, repo repository.AddressRepository, addresses []model.Address) (seeded int, updated int, err error) {
	for _, address := range addresses {
		created, err := repo.Upsert(ctx, &address)
		if err != nil {
			return seeded, updated, fmt.Errorf("error seeding address %d: %w", address.Code, err)
		}
		if created {
			seeded++
		} else {
			updated++
		}
	}
	return seeded, updated, nil
}
