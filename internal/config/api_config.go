package config

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	apiBaseURLVar   = "REGULUS_API_BASE_URL"
	deviceIDVar     = "REGULUS_DEVICE_ID"
	forwardedForVar = "REGULUS_FORWARDED_FOR"
	rateLimitVar    = "REGULUS_RATE_LIMIT"
)

type API struct {
	file *File
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, orDefault(a.file.APIBaseURL, "http://localhost:8000")), "/")
}

func (a API) GetDeviceID() string {
	return GetEnv(deviceIDVar, orDefault(a.file.DeviceID, "regulus-ui"))
}

func (a API) GetForwardedFor() string {
	return GetEnv(forwardedForVar, orDefault(a.file.ForwardedFor, "127.0.0.1"))
}

// GetRateLimit is the outbound request ceiling per second. Zero means unlimited.
func (a API) GetRateLimit() float64 {
	raw := GetEnv(rateLimitVar, "")
	if raw == "" {
		return clampRate(a.file.RateLimit)
	}
	rps, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("value", raw).Msg("Ignoring unreadable " + rateLimitVar)
		return clampRate(a.file.RateLimit)
	}
	return clampRate(rps)
}

func clampRate(rps float64) float64 {
	if rps < 0 {
		return 0
	}
	return rps
}
