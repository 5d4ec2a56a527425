// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"wms-api-server/config"
	"wms-api-server/internal/api/handlers"
	"wms-api-server/internal/api/middleware"
	"wms-api-server/internal/s3"
	"wms-api-server/internal/socket"
	"wms-api-server/internal/stockin"
	"wms-api-server/internal/stockout"
	"wms-api-server/internal/webhook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	orchestrator *stockin.Orchestrator,
	processor *stockout.Processor,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	notifier *webhook.Notifier,
	logger *zap.Logger,
	jwtExpiration time.Duration,
) *gin.Engine {
	// gin.Default() đã gắn sẵn Logger và Recovery.
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Khởi tạo các handlers
	userHandler := &handlers.UserHandler{DB: db, JWTExpiration: jwtExpiration}
	productHandler := &handlers.ProductHandler{DB: db}
	warehouseHandler := &handlers.WarehouseHandler{DB: db}
	stockInHandler := &handlers.StockInHandler{DB: db, Orchestrator: orchestrator, Hub: wsHub, Notifier: notifier, S3Uploader: s3Uploader}
	stockOutHandler := &handlers.StockOutHandler{DB: db, Processor: processor, Hub: wsHub, Notifier: notifier}
	inventoryHandler := &handlers.InventoryHandler{DB: db}
	transferHandler := &handlers.TransferHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Logger: logger}

	apiV1 := router.Group("/api/v1")
	{
		// Route cho WebSocket
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === CÁC ROUTE KHÔNG YÊU CẦU XÁC THỰC ===

		// Nhóm API authentication
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// === CÁC ROUTE YÊU CẦU XÁC THỰC (PROTECTED) ===

		// Nhóm API quản trị, yêu cầu vai trò "superadmin"
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("superadmin"))
		{
			// User management
			admin.POST("/users", userHandler.CreateUser)

			// Warehouse management (CRUD)
			warehouses := admin.Group("/warehouses")
			{
				warehouses.POST("/", warehouseHandler.CreateWarehouse)
				warehouses.PUT("/:id", warehouseHandler.UpdateWarehouse)
				warehouses.POST("/:id/locations", warehouseHandler.CreateLocation)
			}

			// Product management (chỉ superadmin được sửa danh mục)
			products := admin.Group("/products")
			{
				products.POST("/", productHandler.CreateProduct)
				products.PUT("/:sku", productHandler.UpdateProduct)
				products.DELETE("/:sku", productHandler.DeactivateProduct)
			}
		}

		// Nhóm các API nghiệp vụ chính, yêu cầu các vai trò cụ thể
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate())
		businessRoutes.Use(middleware.Authorize("admin", "worker", "superadmin"))
		{
			// Danh mục chỉ đọc
			products := businessRoutes.Group("/products")
			{
				products.GET("/", productHandler.GetAllProducts)
				products.GET("/:sku", productHandler.GetProductBySKU)
			}

			warehouses := businessRoutes.Group("/warehouses")
			{
				warehouses.GET("/", warehouseHandler.GetAllWarehouses)
				warehouses.GET("/:id", warehouseHandler.GetWarehouseByID)
				warehouses.GET("/:id/locations", warehouseHandler.GetLocationsByWarehouse)
			}

			// Stock-in management
			stockIn := businessRoutes.Group("/stock-in")
			{
				stockIn.POST("/", stockInHandler.CreateStockInRequest)
				stockIn.GET("/", stockInHandler.GetAllStockInRequests)
				stockIn.GET("/:id", stockInHandler.GetStockInRequestByID)
				stockIn.POST("/:id/photo", stockInHandler.UploadDeliveryPhoto)

				// Chỉ admin trở lên được commit nhập kho
				commitRoutes := stockIn.Group("/")
				commitRoutes.Use(middleware.Authorize("admin", "superadmin"))
				{
					commitRoutes.POST("/:id/commit", stockInHandler.CommitStockIn)
				}
			}

			// Stock-out management
			stockOut := businessRoutes.Group("/stock-out")
			{
				stockOut.POST("/", stockOutHandler.CreateStockOutRequest)
				stockOut.GET("/", stockOutHandler.GetAllStockOutRequests)
				stockOut.GET("/:id", stockOutHandler.GetStockOutRequestByID)
				stockOut.POST("/inquiries", stockOutHandler.CreateCustomerInquiry)

				// Chỉ admin trở lên được duyệt xuất kho
				approveRoutes := stockOut.Group("/")
				approveRoutes.Use(middleware.Authorize("admin", "superadmin"))
				{
					approveRoutes.POST("/:id/approve", stockOutHandler.ApproveStockOut)
				}
			}

			// Inventory (chỉ đọc)
			inventory := businessRoutes.Group("/inventory")
			{
				inventory.GET("/", inventoryHandler.GetInventory)
				inventory.GET("/:barcode", inventoryHandler.GetInventoryByBarcode)
				inventory.GET("/:barcode/history", inventoryHandler.GetBarcodeHistory)
			}

			// Transfers
			transfers := businessRoutes.Group("/transfers")
			{
				transfers.POST("/", transferHandler.TransferBox)
				transfers.GET("/", transferHandler.GetTransfers)
			}
		}
	}

	return router
}
