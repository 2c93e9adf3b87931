// Package main 은 애플리케이션의 진입점이다.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/crawler"
	"zipcheck-go/internal/handler"
	"zipcheck-go/internal/middleware"
	"zipcheck-go/internal/model"
	"zipcheck-go/internal/pipeline"
	"zipcheck-go/internal/repository"
	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/database"
	"zipcheck-go/pkg/es"
	"zipcheck-go/pkg/juso"
	"zipcheck-go/pkg/kafka"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/molit"
	"zipcheck-go/pkg/registry"
	"zipcheck-go/pkg/storage"
	"zipcheck-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. 설정 초기화
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 로거 초기화
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("로거 초기화 완료")

	// 3. 데이터베이스와 외부 스토리지 초기화
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("Elasticsearch 초기화 실패: %s", err)
		return
	}
	kafka.InitProducers(cfg.Kafka)

	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.AnalysisCase{},
		&model.RegistryFile{},
		&model.Listing{},
		&model.Payment{},
	); err != nil {
		log.Fatalf("테이블 마이그레이션 실패: %v", err)
	}

	// 4. Repository 초기화
	userRepo := repository.NewUserRepository(database.DB)
	caseRepo := repository.NewCaseRepository(database.DB)
	registryFileRepo := repository.NewRegistryFileRepository(database.DB)
	listingRepo := repository.NewListingRepository(database.DB)
	paymentRepo := repository.NewPaymentRepository(database.DB)
	chatRepo := repository.NewChatRepository(database.RDB)

	// 5. Service 초기화 (의존성 주입)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	jusoClient := juso.NewClient(cfg.Juso)
	molitClient := molit.NewClient(cfg.Molit)
	registryClient := registry.NewClient(cfg.Registry)

	userService := service.NewUserService(userRepo, jwtManager)
	addressService := service.NewAddressService(jusoClient)
	tradeService := service.NewTradeService(molitClient, database.RDB)
	uploadService := service.NewUploadService(registryFileRepo, cfg.MinIO)
	caseService := service.NewCaseService(caseRepo, registryFileRepo, chatRepo, kafka.ProduceAnalysisTask)
	reportService := service.NewReportService()
	chatService := service.NewChatService(caseRepo, chatRepo)
	adminService := service.NewAdminService(userRepo, caseRepo, paymentRepo, cfg.Elasticsearch.IndexName, kafka.ProduceCrawlTask)

	// 6. 분석 파이프라인과 수집기 초기화
	processor := pipeline.NewProcessor(caseService, uploadService, tradeService, reportService, registryClient, chatRepo)
	listingCrawler := crawler.NewCrawler(cfg.Crawler, cfg.Elasticsearch.IndexName, listingRepo)

	// 7. 백그라운드 Kafka 컨슈머 시작
	go kafka.StartAnalysisConsumer(cfg.Kafka, processor)
	go kafka.StartCrawlConsumer(cfg.Kafka, listingCrawler)

	// 8. Gin 모드 설정과 라우터 생성
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Metrics(), gin.Recovery())

	contentHandler := handler.NewContentHandler(cfg.Robots)
	r.GET("/robots.txt", contentHandler.Robots)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9. 라우트 등록
	apiV1 := r.Group("/api/v1")
	{
		// 정부 API 프록시 (공개)
		address := apiV1.Group("/address")
		{
			addressHandler := handler.NewAddressHandler(addressService)
			address.GET("/search", addressHandler.Search)
			address.GET("/legal-dong", addressHandler.LegalDong)
		}
		apiV1.GET("/trades/apartments", handler.NewTradeHandler(tradeService).GetAptTrades)

		// Auth 라우트
		auth := apiV1.Group("/auth")
		{
			authHandler := handler.NewAuthHandler(userService)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/oauth/callback", authHandler.OAuthCallback)
		}

		users := apiV1.Group("/users")
		{
			userHandler := handler.NewUserHandler(userService)
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", userHandler.Me)
				authed.POST("/logout", userHandler.Logout)
			}
		}

		// 케이스 마법사 라우트. 비로그인 사용자도 분석을 쓸 수 있고,
		// 로그인한 사용자는 선택적 인증으로 케이스에 연결된다.
		cases := apiV1.Group("/cases")
		cases.Use(middleware.OptionalAuthMiddleware(jwtManager, userService))
		{
			caseHandler := handler.NewCaseHandler(caseService)
			analysisHandler := handler.NewAnalysisHandler(caseService, chatRepo)
			cases.POST("", caseHandler.Create)
			cases.GET("/:caseId", caseHandler.Get)
			cases.POST("/:caseId/address", caseHandler.SetAddress)
			cases.POST("/:caseId/contract-type", caseHandler.SetContractType)
			cases.POST("/:caseId/price", caseHandler.SetPrice)
			cases.POST("/:caseId/registry", caseHandler.ChooseRegistry)
			cases.GET("/:caseId/analysis/stream", analysisHandler.Stream)
			cases.GET("/:caseId/report", caseHandler.GetReport)
			cases.GET("/:caseId/messages", caseHandler.GetMessages)
		}

		// 등기부 업로드
		registryGroup := apiV1.Group("/registry")
		{
			uploadHandler := handler.NewUploadHandler(uploadService)
			registryGroup.POST("/upload",
				middleware.OptionalAuthMiddleware(jwtManager, userService),
				uploadHandler.UploadRegistry)
			registryGroup.GET("/:fileId/download-url",
				middleware.AuthMiddleware(jwtManager, userService),
				middleware.AdminAuthMiddleware(cfg.Admin),
				uploadHandler.GetDownloadURL)
		}

		// 정적 문서
		apiV1.GET("/content/:slug", contentHandler.GetDocument)

		// Chat 라우트 (WebSocket)
		chatHandler := handler.NewChatHandler(chatService, userService, jwtManager)
		chatGroup := apiV1.Group("/chat")
		chatGroup.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			chatGroup.GET("/ws-token", chatHandler.GetWebsocketStopToken)
		}
		r.GET("/chat/:token", chatHandler.Handle)

		// 관리자 라우트: 인증 + 관리자 게이트 두 미들웨어를 모두 통과해야 한다
		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware(cfg.Admin))
		{
			adminHandler := handler.NewAdminHandler(adminService)
			admin.GET("/dashboard/kpis", adminHandler.GetKPIs)
			admin.GET("/dashboard/funnel", adminHandler.GetFunnel)
			admin.GET("/dashboard/channels", adminHandler.GetChannels)
			admin.GET("/users/list", adminHandler.ListUsers)
			admin.PUT("/users/:userId/role", adminHandler.UpdateUserRole)
			admin.GET("/cases", adminHandler.ListCases)
			admin.GET("/payments", adminHandler.ListPayments)
			admin.POST("/crawler/trigger", adminHandler.TriggerCrawl)
			admin.GET("/listings/search", adminHandler.SearchListings)
		}

		// 개발 모드 전용 라우트
		if cfg.Server.Mode != gin.ReleaseMode {
			dev := apiV1.Group("/dev")
			{
				devHandler := handler.NewDevHandler(caseRepo, processor)
				dev.POST("/cases/import", devHandler.ImportCase)
				dev.POST("/cases/:caseId/run-step", devHandler.RunStep)
			}
		}
	}

	// HTTP 서버 기동과 우아한 종료
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("서버 시작: %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 서버 리슨 실패: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("종료 신호 수신, 서버를 닫는 중...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 서버 종료 실패: %v", err)
	}

	// Kafka 컨슈머는 프로세스 종료와 함께 루프가 끝나므로 별도 정리가 필요 없다.
	log.Info("서버가 정상 종료되었습니다")
}
