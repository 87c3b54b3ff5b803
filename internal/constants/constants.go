package constants

import "time"

var CacheTTL = struct {
	Completion time.Duration
}{
	Completion: 24 * time.Hour, // 완료 응답 재사용 기간
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	KeyPrefix    string
}{
	ReadyTimeout: 5 * time.Second,
	KeyPrefix:    "sdgpulse:completion:",
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout:    5 * time.Minute,  // 429 Rate Limit 전용 타임아웃
	HealthCheckInterval: 1 * time.Minute,  // Health Check 주기
	HealthCheckTimeout:  10 * time.Second, // Health Check 타임아웃 (10초)
}

var LLMConfig = struct {
	RequestTimeout time.Duration
	DefaultTask    string
	MaxIdleConns   int
}{
	RequestTimeout: 30 * time.Second,
	DefaultTask:    "response_generation",
	MaxIdleConns:   20,
}

var BatchConfig = struct {
	DefaultConcurrency int
	ProgressSteps      int
}{
	DefaultConcurrency: 5,
	ProgressSteps:      10, // 10% 단위 진행률 로그
}

var TextLimits = struct {
	MinCleanedPostLength    int
	MinGeneratedLineLength  int
	RawPreviewLength        int
	ApologyMessage          string
	DefaultTrendPlaceholder string
	UnknownTrend            string
}{
	MinCleanedPostLength:    15,
	MinGeneratedLineLength:  11,
	RawPreviewLength:        200,
	ApologyMessage:          "Sorry, something went wrong generating a response.",
	DefaultTrendPlaceholder: "recent trends",
	UnknownTrend:            "unknown",
}

var ScraperConfig = struct {
	UserAgent string
	Timeout   time.Duration
}{
	UserAgent: "Mozilla/5.0 (compatible; SDGPulse/1.0)",
	Timeout:   15 * time.Second,
}

var PostgresPool = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}{
	MaxOpenConns:    5, // 배치 동시성과 동일
	MaxIdleConns:    2,
	ConnMaxLifetime: 5 * time.Minute,
	ConnectTimeout:  5 * time.Second,
}
