package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "arthalend-backend/internal/adapter/http"
	"arthalend-backend/internal/adapter/middleware"
	"arthalend-backend/internal/adapter/repository/mysql"
	"arthalend-backend/internal/adapter/repository/redisstore"
	"arthalend-backend/internal/config"
	"arthalend-backend/internal/docgen"
	"arthalend-backend/internal/infrastructure/cache"
	"arthalend-backend/internal/infrastructure/db"
	"arthalend-backend/internal/ledger"
	agreementuc "arthalend-backend/internal/usecase/agreement"
	audituc "arthalend-backend/internal/usecase/audit"
	authuc "arthalend-backend/internal/usecase/auth"
	credituc "arthalend-backend/internal/usecase/credit"
	defaultinguc "arthalend-backend/internal/usecase/defaulting"
	kycuc "arthalend-backend/internal/usecase/kyc"
	loanuc "arthalend-backend/internal/usecase/loan"
	publicleduc "arthalend-backend/internal/usecase/publicledger"
	repaymentuc "arthalend-backend/internal/usecase/repayment"
	transactionuc "arthalend-backend/internal/usecase/transaction"
	"arthalend-backend/internal/verify"
)

const defaultSweepInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		logger.Fatal("mysql connect failed", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	chain := ledger.NewClient(cfg.LedgerURL, cfg.LedgerUser, cfg.LedgerPass, cfg.LedgerChain, cfg.LedgerTimeout)
	recorder := ledger.NewRecorder(chain)

	// Repositories
	uow := mysql.NewGormUoW(gdb)
	loans := mysql.NewLoanRepository(gdb)
	acceptances := mysql.NewAcceptanceRepository(gdb)
	executions := mysql.NewAgreementRepository(gdb)
	receipts := mysql.NewTransactionRepository(gdb)
	repayments := mysql.NewRepaymentRepository(gdb)
	kycRecords := mysql.NewKYCRepository(gdb)
	scores := mysql.NewScoreRepository(gdb)
	stats := mysql.NewStatsRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	sessions := mysql.NewSessionRepository(gdb)
	otp := redisstore.NewOTPStore(rdb, config.OTPTTL)

	// Without a verifier endpoint, KYC finalization fails unless
	// SKIP_FACE_VERIFICATION is set.
	var verifier verify.Verifier
	if cfg.VerifierURL != "" {
		verifier = verify.NewHTTPVerifier(cfg.VerifierURL, 10*time.Second)
	}

	policy := loanuc.Policy{
		FeePercent:               config.PlatformFeePercent,
		GuarantorThreshold:       config.GuarantorThreshold,
		LendingLimit:             config.LendingLimit,
		AllowUnverifiedBorrowers: cfg.AllowUnverifiedBorrowers,
		AutoListLoans:            cfg.AutoListLoans,
	}

	// Usecases
	authUC := authuc.NewUsecase(users, sessions, otp, cfg.JWTSecret, config.SessionTTL, logger)
	kycUC := kycuc.NewUsecase(uow, kycRecords, kycuc.RefAnalyzer{}, verifier, cfg.SkipFaceVerification, recorder, logger)
	creditUC := credituc.NewUsecase(uow, scores, stats)
	loanUC := loanuc.NewUsecase(uow, loans, users, kycRecords, scores,
		recorder, &docgen.RefGenerator{}, policy, logger)
	agreementUC := agreementuc.NewUsecase(uow, loans, kycRecords, verifier, recorder, logger)
	transferUC := transactionuc.NewUsecase(uow, loans, receipts,
		transactionuc.AccepterFunc(func(ctx context.Context, loanID, lenderID string) error {
			_, err := loanUC.AcceptLoan(ctx, loanID, lenderID)
			return err
		}),
		recorder, config.PlatformFeePercent, logger)
	repayUC := repaymentuc.NewUsecase(uow, loans, repayments, recorder, logger)
	defaultingUC := defaultinguc.NewUsecase(uow, loans, recorder, logger)
	auditUC := audituc.NewUsecase(loans, acceptances, executions, receipts, repayments, kycRecords, chain)
	ledgerUC := publicleduc.NewUsecase(chain)

	// Overdue loans are swept in the background for the process lifetime.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go defaultingUC.Run(sweepCtx, defaultSweepInterval)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	handlers := httpadp.Handlers{
		Health:      httpadp.NewHandler(),
		Auth:        httpadp.NewAuthHandler(authUC),
		KYC:         httpadp.NewKYCHandler(kycUC),
		Credit:      httpadp.NewCreditHandler(creditUC),
		Loan:        httpadp.NewLoanHandler(loanUC),
		Agreement:   httpadp.NewAgreementHandler(agreementUC),
		Transaction: httpadp.NewTransactionHandler(transferUC),
		Repayment:   httpadp.NewRepaymentHandler(repayUC),
		Audit:       httpadp.NewAuditHandler(auditUC),
		Ledger:      httpadp.NewLedgerHandler(ledgerUC),
		Defaulting:  httpadp.NewDefaultingHandler(defaultingUC),
	}
	idempotent := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, logger)
	httpadp.RegisterRoutes(e, handlers, authUC, idempotent)

	// Serve until interrupted, then drain in-flight requests.
	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
