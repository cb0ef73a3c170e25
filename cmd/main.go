package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/get_booking"
	manageAvailabilityHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/manage_availability"
	paymentWebhookHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/payment_webhook"
	providerAppointmentsHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/provider_appointments"
	rescheduleBookingHandler "github.com/m04kA/GNG-SchedulingService/internal/api/handlers/reschedule_booking"
	"github.com/m04kA/GNG-SchedulingService/internal/api/middleware"
	"github.com/m04kA/GNG-SchedulingService/internal/config"
	availabilityRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/booking"
	sessionTypeRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/sessiontype"
	notifierClient "github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
	paymentsClient "github.com/m04kA/GNG-SchedulingService/internal/integrations/payments"
	"github.com/m04kA/GNG-SchedulingService/internal/jobs"
	availabilityService "github.com/m04kA/GNG-SchedulingService/internal/service/availability"
	bookingsService "github.com/m04kA/GNG-SchedulingService/internal/service/bookings"
	createBookingUC "github.com/m04kA/GNG-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/GNG-SchedulingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/GNG-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/GNG-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/GNG-SchedulingService/pkg/logger"
	"github.com/m04kA/GNG-SchedulingService/pkg/metrics"
	"github.com/m04kA/GNG-SchedulingService/pkg/simpletxmanager"
	"github.com/m04kA/GNG-SchedulingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting GNG-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	payments := paymentsClient.NewClient(paymentsClient.Config{
		SecretKey:     cfg.Payments.SecretKey,
		WebhookSecret: cfg.Payments.WebhookSecret,
		Currency:      cfg.Payments.Currency,
		SuccessURL:    cfg.Payments.SuccessURL,
		CancelURL:     cfg.Payments.CancelURL,
	})
	notifier := notifierClient.NewClient(
		cfg.Notifier.URL,
		time.Duration(cfg.Notifier.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (payments currency=%s, notifier=%s timeout=%ds)",
		cfg.Payments.Currency, cfg.Notifier.URL, cfg.Notifier.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		availabilityRepository *availabilityRepo.Repository
		sessionTypeRepository  *sessionTypeRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		sessionTypeRepository = sessionTypeRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		sessionTypeRepository = sessionTypeRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		payments,
		notifier,
		txMgr,
		&bookingsService.RealTimeProvider{},
		log,
		cfg.Booking.CancellationNoticeHours,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		sessionTypeRepository,
		payments,
		notifier,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		sessionTypeRepository,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		notifier,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(bookingSvc, payments, log)
	providerAppointments := providerAppointmentsHandler.NewHandler(bookingSvc, log)
	manageAvailability := manageAvailabilityHandler.NewHandler(availabilitySvc, log)

	// Запускаем фоновые задачи (напоминания и очистка неоплаченных броней)
	scheduler := jobs.NewScheduler(
		bookingRepository,
		notifier,
		log,
		cfg.Booking.ReminderLeadHours,
		cfg.Booking.PendingPaymentTTLMinutes,
	)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler: %v", err)
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (гостевой доступ, без аутентификации)
	// ============================================================

	// Получение доступных слотов провайдера на дату
	api.HandleFunc("/providers/{providerId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Создание бронирования
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по confirmation token
	api.HandleFunc("/bookings/{token}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	api.HandleFunc("/bookings/{token}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Перенос бронирования на другой слот
	api.HandleFunc("/bookings/{token}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

	// Webhook платёжной системы
	api.HandleFunc("/webhooks/payments", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROVIDER ROUTES (требуют X-Provider-ID header)
	// ============================================================

	provider := api.PathPrefix("/provider").Subrouter()
	provider.Use(middleware.ProviderAuth)

	// --- Приёмы ---
	// Список бронирований провайдера
	provider.HandleFunc("/appointments", providerAppointments.HandleList).Methods(http.MethodGet)

	// Отметка посещения (completed / no_show)
	provider.HandleFunc("/appointments/{bookingId}/status",
		providerAppointments.HandleUpdateStatus).Methods(http.MethodPatch)

	// --- Расписание ---
	// Правила еженедельной доступности
	provider.HandleFunc("/availability", manageAvailability.HandleAddRule).Methods(http.MethodPost)
	provider.HandleFunc("/availability", manageAvailability.HandleListRules).Methods(http.MethodGet)
	provider.HandleFunc("/availability/{ruleId}", manageAvailability.HandleDeleteRule).Methods(http.MethodDelete)

	// Перерывы и отпуска
	provider.HandleFunc("/availability/time-off", manageAvailability.HandleAddTimeOff).Methods(http.MethodPost)
	provider.HandleFunc("/availability/time-off", manageAvailability.HandleListTimeOff).Methods(http.MethodGet)
	provider.HandleFunc("/availability/time-off/{timeOffId}", manageAvailability.HandleDeleteTimeOff).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи
	scheduler.Stop()
	log.Info("Scheduler stopped")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
