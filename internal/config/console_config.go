package config

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	refreshIntervalVar = "REGULUS_REFRESH_INTERVAL"
	pageSizeVar        = "REGULUS_PAGE_SIZE"

	defaultRefreshInterval = 5 * time.Second
	defaultPageSize        = 50
)

type Console struct {
	file *File
}

var _ ConsoleConfig = Console{}

// GetRefreshInterval is the polling period for watched views.
func (c Console) GetRefreshInterval() time.Duration {
	raw := GetEnv(refreshIntervalVar, c.file.RefreshInterval)
	if raw == "" {
		return defaultRefreshInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("value", raw).Msg("Ignoring unreadable refresh interval")
		return defaultRefreshInterval
	}
	return d
}

func (c Console) GetPageSize() int {
	raw := GetEnv(pageSizeVar, "")
	if raw == "" {
		if c.file.PageSize > 0 {
			return c.file.PageSize
		}
		return defaultPageSize
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		log.Warn().Str("value", raw).Msg("Ignoring unreadable page size")
		return defaultPageSize
	}
	return size
}
