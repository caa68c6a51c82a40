package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"shipment-sim-service/internal/adapters/cache"
	"shipment-sim-service/internal/adapters/directions"
	"shipment-sim-service/internal/adapters/dispatch"
	"shipment-sim-service/internal/adapters/repositories"
	"shipment-sim-service/internal/adapters/statestore"
	"shipment-sim-service/internal/api"
	"shipment-sim-service/internal/config"
	"shipment-sim-service/internal/platform/db"
	"shipment-sim-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	databaseURL := config.MustGet("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	redisURL := config.Get("REDIS_URL", "redis://localhost:6379/0")

	// A missing ORS key is not fatal at startup: the provider reports itself
	// unavailable and simulation starts fail with a distinct error instead.
	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Println("ORS_API_KEY is not set; route fetching will be unavailable")
	}

	workerURL := config.Get("TICK_WORKER_URL", "http://localhost:"+port+"/simulations/tick")
	baseSpeed := config.GetFloat("SIM_BASE_SPEED_MPS", services.DefaultBaseSpeedMPS)
	sweepConcurrency := int(config.GetFloat("SWEEP_CONCURRENCY", 5))

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatal(err)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("parse REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("verify redis connection: %v", err)
	}

	store := statestore.NewRedisStateStore(redisClient)
	repo := repositories.NewPostgresShipmentRepository(sqlDB)

	// ORS uses a persistent route cache to avoid re-fetching identical legs.
	routeCache := cache.NewSQLRouteCache(sqlDB)
	routeProvider := directions.NewORSRouteProvider(orsKey, routeCache)

	dispatcher, err := dispatch.NewHTTPTickDispatcher(workerURL)
	if err != nil {
		log.Fatal(err)
	}

	assembler := services.NewAssembler(repo, routeProvider)
	initializer := services.NewInitializer(store)
	processor := services.NewTickProcessor(store, repo, baseSpeed)
	coordinator := services.NewCoordinator(store, dispatcher, sweepConcurrency)

	router := api.NewRouter(assembler, initializer, processor, coordinator, store)

	log.Printf("Server listening addr=:%s base_speed_mps=%s sweep_concurrency=%d",
		port, strconv.FormatFloat(baseSpeed, 'f', -1, 64), sweepConcurrency)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
