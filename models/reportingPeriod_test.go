package models

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"github.com/stretchr/testify/require"
)

func TestYearOf_CalendarYears(t *testing.T) {
	cfg := &config.IFRSConfig{YearStartMonth: 1}
	require.Equal(t, 2026, YearOf(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg))
	require.Equal(t, 2026, YearOf(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), cfg))
}

func TestYearOf_JulyFiscalYear(t *testing.T) {
	cfg := &config.IFRSConfig{YearStartMonth: 7}
	// June still belongs to the previous fiscal year.
	require.Equal(t, 2024, YearOf(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), cfg))
	require.Equal(t, 2025, YearOf(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), cfg))
}

func TestYearStart(t *testing.T) {
	cfg := &config.IFRSConfig{YearStartMonth: 7}
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), YearStart(2025, cfg))

	cfg.YearStartMonth = 1
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), YearStart(2025, cfg))
}

func TestYearOf_NilConfigDefaultsToCalendar(t *testing.T) {
	require.Equal(t, 2026, YearOf(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), nil))
}
