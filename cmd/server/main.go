package main

import (
	"log"
	"strings"

	"github.com/DukeZhu95/classroom-backend/internal/config"
	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/server"
	"github.com/DukeZhu95/classroom-backend/pkg/database"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := newRedisClient(cfg.RedisURL)
	meiliClient := newMeiliClient(cfg.MeiliSearchHost, cfg.MeiliMasterKey)

	srv := server.NewServer(cfg, db, redisClient, meiliClient)

	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.StudentProfile{},
		&entity.TeacherProfile{},
		&entity.Classroom{},
		&entity.ClassroomMember{},
		&entity.Task{},
		&entity.Submission{},
		&entity.ScheduleEntry{},
	)
}

// newRedisClient returns nil when no Redis URL is configured; rate limiting
// is disabled in that case.
func newRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opts)
}

func newMeiliClient(host, masterKey string) meilisearch.ServiceManager {
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(masterKey))
}
