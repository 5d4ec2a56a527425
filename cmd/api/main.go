// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"wms-api-server/config"
	"wms-api-server/internal/api/routes"
	"wms-api-server/internal/auth"
	"wms-api-server/internal/database"
	"wms-api-server/internal/s3"
	"wms-api-server/internal/scheduler"
	"wms-api-server/internal/socket"
	"wms-api-server/internal/stockin"
	"wms-api-server/internal/stockout"
	"wms-api-server/internal/webhook"
	"wms-api-server/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load biến môi trường từ .env (nếu có) rồi load configuration
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zlog := logger.Must(logger.New())
	defer zlog.Sync()

	// 2. Khởi tạo JWT secret và thời hạn token
	auth.Init(cfg.JWT.Secret)
	jwtExpiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		zlog.Fatal("invalid jwt expiration", zap.String("value", cfg.JWT.Expiration), zap.Error(err))
	}

	// 3. Kết nối MongoDB, tạo index và seed tài khoản superadmin
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, db, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	if err := database.EnsureIndexes(ctx, db); err != nil {
		zlog.Fatal("failed to ensure indexes", zap.Error(err))
	}
	if err := database.SeedSuperAdmin(db); err != nil {
		zlog.Fatal("failed to seed superadmin", zap.Error(err))
	}

	// 4. Khởi tạo WebSocket hub và webhook notifier
	wsHub := socket.NewHub(logger.Named(zlog, "socket"))
	notifier := webhook.NewNotifier(cfg.Webhook, logger.Named(zlog, "webhook"))

	// 5. Khởi tạo S3 uploader nếu được cấu hình
	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			zlog.Fatal("failed to initialize S3 uploader", zap.Error(err))
		}
	} else {
		zlog.Warn("S3 bucket not configured, photo upload is disabled")
	}

	// 6. Khởi tạo orchestrator nhập kho, processor xuất kho và reconciler
	orchestrator := stockin.NewOrchestrator(stockin.NewMongoStore(db), logger.Named(zlog, "stockin"))
	processor := stockout.NewProcessor(stockout.NewMongoStore(db), logger.Named(zlog, "stockout"))

	staleAfter := time.Duration(cfg.Reconciler.StaleAfterMinutes) * time.Minute
	reconciler := scheduler.NewReconciler(scheduler.NewMongoStore(db), cfg.Reconciler.Schedule, staleAfter, logger.Named(zlog, "reconciler"))
	if err := reconciler.Start(); err != nil {
		zlog.Fatal("failed to start reconciler", zap.Error(err))
	}
	defer reconciler.Stop()

	// 7. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(cfg, db, orchestrator, processor, s3Uploader, wsHub, notifier, zlog, jwtExpiration)

	// 8. Start server
	zlog.Info("starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("failed to run server", zap.Error(err))
	}
}
