package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RegisterRequest is the company profile the back office submits once.
type RegisterRequest struct {
	CompanyName   string `json:"CompanyName" binding:"required"`
	CompanyCode   string `json:"CompanyCode"`
	Email         string `json:"Email"`
	ContactPerson string `json:"ContactPerson"`
	ContactNumber string `json:"ContactNumber"`
	Address       string `json:"Address"`
	City          string `json:"City"`
	State         string `json:"State"`
	ZipCode       string `json:"ZipCode"`
}

type RegisterResponse struct {
	Status     string `json:"status"`
	CustomerID string `json:"CustomerId"`
	Message    string `json:"message,omitempty"`
}

type AuthenticateRequest struct {
	CustomerID string `json:"CustomerId" binding:"required"`
}

// AuthenticateResponse mirrors the license desk payload the back office
// polls for. Dates are YYYY-MM-DD.
type AuthenticateResponse struct {
	AuthenticationStatus  string `json:"Authenticationstatus"`
	ProductRegistrationID int64  `json:"ProductRegistrationId"`
	UniqueIdentifier      string `json:"UniqueIdentifier"`
	ProductFromDate       string `json:"ProductFromDate,omitempty"`
	ProductToDate         string `json:"ProductToDate,omitempty"`
	ProjectCode           string `json:"ProjectCode"`
	DeviceCount           int    `json:"DeviceCount"`
	BranchCount           int    `json:"BranchCount"`
	MobileDeviceCount     int    `json:"MobileDeviceCount"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Registrations int       `json:"registrations"`
}

// registration tracks one customer through the manual approval window.
type registration struct {
	CustomerID            string
	CompanyName           string
	ProductRegistrationID int64
	Polls                 int
	Decided               bool
	Status                string
}

// MockAuthority simulates the external license desk. A registration is
// answered with "waiting" until it has been polled approveAfter times,
// then it gets a terminal verdict.
type MockAuthority struct {
	mu            sync.Mutex
	registrations map[string]*registration
	approveAfter  int
	approveRate   float64
	licenseDays   int
	deviceCount   int
	minDelay      time.Duration
	maxDelay      time.Duration
	nextProductID int64
	rng           *rand.Rand
}

func NewMockAuthority(approveAfter int, approveRate float64, licenseDays, deviceCount int, minDelay, maxDelay time.Duration) *MockAuthority {
	return &MockAuthority{
		registrations: make(map[string]*registration),
		approveAfter:  approveAfter,
		approveRate:   approveRate,
		licenseDays:   licenseDays,
		deviceCount:   deviceCount,
		minDelay:      minDelay,
		maxDelay:      maxDelay,
		nextProductID: 1000,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockAuthority) register(req *RegisterRequest) *RegisterResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	customerID := "CUST-" + uuid.New().String()[:8]
	m.nextProductID++
	m.registrations[customerID] = &registration{
		CustomerID:            customerID,
		CompanyName:           req.CompanyName,
		ProductRegistrationID: m.nextProductID,
	}

	log.Info().
		Str("customer_id", customerID).
		Str("company", req.CompanyName).
		Msg("company registered")

	return &RegisterResponse{
		Status:     "success",
		CustomerID: customerID,
	}
}

func (m *MockAuthority) authenticate(customerID string) (*AuthenticateResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[customerID]
	if !ok {
		return nil, false
	}

	reg.Polls++
	if !reg.Decided && reg.Polls >= m.approveAfter {
		reg.Decided = true
		if m.rng.Float64() < m.approveRate {
			reg.Status = "Approve"
		} else {
			reg.Status = "Block"
		}
		log.Info().
			Str("customer_id", customerID).
			Str("verdict", reg.Status).
			Int("polls", reg.Polls).
			Msg("license decided")
	}

	resp := &AuthenticateResponse{
		ProductRegistrationID: reg.ProductRegistrationID,
		UniqueIdentifier:      reg.CustomerID,
		ProjectCode:           "BTS",
	}

	if !reg.Decided {
		resp.AuthenticationStatus = "waiting for approval"
		return resp, true
	}

	resp.AuthenticationStatus = reg.Status
	if reg.Status == "Approve" {
		from := time.Now()
		to := from.AddDate(0, 0, m.licenseDays)
		resp.ProductFromDate = from.Format("2006-01-02")
		resp.ProductToDate = to.Format("2006-01-02")
		resp.DeviceCount = m.deviceCount
		resp.BranchCount = 5
		resp.MobileDeviceCount = m.deviceCount
	}

	return resp, true
}

func (m *MockAuthority) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockAuthority) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registrations)
}

// Handler struct holds the mock authority and routes
type Handler struct {
	authority *MockAuthority
}

func NewHandler(authority *MockAuthority) *Handler {
	return &Handler{authority: authority}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	time.Sleep(h.authority.randomDelay())
	c.JSON(http.StatusOK, h.authority.register(&req))
}

func (h *Handler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	time.Sleep(h.authority.randomDelay())

	resp, ok := h.authority.authenticate(req.CustomerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown CustomerId",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now(),
		Registrations: h.authority.count(),
	})
}

// UpdateConfig allows changing authority behaviour at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		ApproveAfter *int     `json:"approve_after"`
		ApproveRate  *float64 `json:"approve_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	h.authority.mu.Lock()
	if config.ApproveAfter != nil && *config.ApproveAfter > 0 {
		h.authority.approveAfter = *config.ApproveAfter
	}
	if config.ApproveRate != nil && *config.ApproveRate >= 0 && *config.ApproveRate <= 1.0 {
		h.authority.approveRate = *config.ApproveRate
	}
	approveAfter := h.authority.approveAfter
	approveRate := h.authority.approveRate
	h.authority.mu.Unlock()

	log.Info().Int("approve_after", approveAfter).Float64("approve_rate", approveRate).Msg("Updated authority config")

	c.JSON(http.StatusOK, gin.H{
		"message":       "Configuration updated",
		"approve_after": approveAfter,
		"approve_rate":  approveRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/license/register", handler.Register)
		v1.POST("/license/authenticate", handler.Authenticate)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8082")
	approveAfter := getEnvInt("APPROVE_AFTER_POLLS", 3)
	approveRate := getEnvFloat("APPROVE_RATE", 1)
	licenseDays := getEnvInt("LICENSE_DAYS", 365)
	deviceCount := getEnvInt("DEVICE_COUNT", 10)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 1*time.Second)

	log.Info().
		Str("port", port).
		Int("approve_after", approveAfter).
		Float64("approve_rate", approveRate).
		Int("license_days", licenseDays).
		Msg("Starting Mock License Authority")

	authority := NewMockAuthority(approveAfter, approveRate, licenseDays, deviceCount, minDelay, maxDelay)
	handler := NewHandler(authority)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
