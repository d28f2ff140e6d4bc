package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Policy constants. Business rules reference these, never literals.
const (
	PlatformFeePercent = 3.0
	GuarantorThreshold = 30000.0
	LendingLimit       = 500000.0
	OTPTTL             = 5 * time.Minute
	SessionTTL         = 12 * time.Hour
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	LedgerURL     string
	LedgerUser    string
	LedgerPass    string
	LedgerChain   string
	LedgerTimeout time.Duration

	VerifierURL string

	JWTSecret string

	IdempTTLSecs int

	// Policy switches. All default to false: demo bypasses must be explicit.
	AllowUnverifiedBorrowers bool // skip the borrower KYC-approval check
	AutoListLoans            bool // skip the signature step, list immediately
	SkipFaceVerification     bool // pass KYC face match without a verifier
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvBool(k string) bool {
	v, _ := strconv.ParseBool(os.Getenv(k))
	return v
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "arthalend"),
		MySQLUser: getenv("MYSQL_USER", "arthalend"),
		MySQLPass: getenv("MYSQL_PASS", "arthalend"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		LedgerURL:     os.Getenv("LEDGER_RPC_URL"),
		LedgerUser:    getenv("LEDGER_RPC_USER", "multichainrpc"),
		LedgerPass:    os.Getenv("LEDGER_RPC_PASS"),
		LedgerChain:   getenv("LEDGER_CHAIN_NAME", "artha-chain"),
		LedgerTimeout: 5 * time.Second,

		VerifierURL: os.Getenv("VERIFIER_URL"),

		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),

		AllowUnverifiedBorrowers: getenvBool("ALLOW_UNVERIFIED_BORROWERS"),
		AutoListLoans:            getenvBool("AUTO_LIST_LOANS"),
		SkipFaceVerification:     getenvBool("SKIP_FACE_VERIFICATION"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("LEDGER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LedgerTimeout = time.Duration(n) * time.Second
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.LedgerURL == "" {
		return errors.New("missing LEDGER_RPC_URL")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
