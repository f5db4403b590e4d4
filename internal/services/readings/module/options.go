package module

import (
	"time"

	"github.com/NightBlad/Tarotbot/internal/platform/config"
)

// Options holds configuration settings for the readings module
type Options struct {
	OracleURL        string
	OracleAPIKey     string
	OracleAuthHeader string
	OracleDebug      bool
	OracleTimeout    time.Duration
	OracleInputMax   int

	Concurrency int

	CacheCapacity int
	CacheTTL      time.Duration

	GeneralWindow time.Duration
	GeneralCap    int
	OracleWindow  time.Duration
	OracleCap     int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	oc := cfg.Prefix("ORACLE_")
	cc := cfg.Prefix("CACHE_")
	lc := cfg.Prefix("LIMIT_")
	return Options{
		OracleURL:        oc.MayString("URL", ""),
		OracleAPIKey:     oc.MayString("API_KEY", ""),
		OracleAuthHeader: oc.MayString("AUTH_HEADER", "Authorization"),
		OracleDebug:      oc.MayBool("DEBUG", false),
		OracleTimeout:    oc.MayDuration("TIMEOUT", 60*time.Second),
		OracleInputMax:   oc.MayInt("INPUT_MAX", 1024),

		Concurrency: oc.MayInt("CONCURRENCY", 3),

		CacheCapacity: cc.MayInt("CAPACITY", 500),
		CacheTTL:      cc.MayDuration("TTL", time.Hour),

		GeneralWindow: lc.MayDuration("GENERAL_WINDOW", time.Minute),
		GeneralCap:    lc.MayInt("GENERAL_MAX", 30),
		OracleWindow:  lc.MayDuration("ORACLE_WINDOW", time.Minute),
		OracleCap:     lc.MayInt("ORACLE_MAX", 10),
	}
}
