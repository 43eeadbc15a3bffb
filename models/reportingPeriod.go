package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

// ReportingPeriod is the fiscal year every balance and posting is attributed to.
type ReportingPeriod struct {
	ID           int          `gorm:"primary_key" json:"id"`
	EntityId     string       `gorm:"index;not null" json:"entity_id"`
	CalendarYear int          `gorm:"index;not null" json:"calendar_year"`
	Status       PeriodStatus `gorm:"size:10;not null;default:'OPEN'" json:"status"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p ReportingPeriod) GetEntityId() string {
	return p.EntityId
}

type NewReportingPeriod struct {
	CalendarYear int `json:"calendar_year" validate:"required,min=1900"`
}

func CreateReportingPeriod(ctx context.Context, input *NewReportingPeriod) (*ReportingPeriod, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[ReportingPeriod](ctx, entityId, "calendar_year", input.CalendarYear, 0); err != nil {
		return nil, err
	}

	period := ReportingPeriod{
		EntityId:     entityId,
		CalendarYear: input.CalendarYear,
		Status:       PeriodStatusOpen,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

// YearOf maps a date to its fiscal year given the configured year start
// month. With a July start, 2025-06-30 belongs to fiscal 2024.
func YearOf(date time.Time, cfg *config.IFRSConfig) int {
	startMonth := 1
	if cfg != nil && cfg.YearStartMonth >= 1 && cfg.YearStartMonth <= 12 {
		startMonth = cfg.YearStartMonth
	}
	if int(date.Month()) < startMonth {
		return date.Year() - 1
	}
	return date.Year()
}

// YearStart is the first instant of the fiscal year labelled year.
func YearStart(year int, cfg *config.IFRSConfig) time.Time {
	startMonth := 1
	if cfg != nil && cfg.YearStartMonth >= 1 && cfg.YearStartMonth <= 12 {
		startMonth = cfg.YearStartMonth
	}
	return time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodOf fetches (or lazily opens) the reporting period containing the date.
func PeriodOf(ctx context.Context, date time.Time) (*ReportingPeriod, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	year := YearOf(date, config.GetIFRS())
	db := config.GetDB()
	var period ReportingPeriod
	err := db.WithContext(ctx).
		Where("entity_id = ? AND calendar_year = ?", entityId, year).
		First(&period).Error
	if err == nil {
		return &period, nil
	}

	period = ReportingPeriod{
		EntityId:     entityId,
		CalendarYear: year,
		Status:       PeriodStatusOpen,
	}
	if err := db.WithContext(ctx).Create(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

// ClosePeriod marks a period closed; no further postings are accepted into it.
func ClosePeriod(ctx context.Context, id int) (*ReportingPeriod, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	period, err := utils.FetchModel[ReportingPeriod](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&period).Updates(map[string]interface{}{
		"Status": PeriodStatusClosed,
	}).Error
	if err != nil {
		return nil, err
	}
	return period, nil
}

// checkPeriodOpen rejects postings dated into a closed reporting period.
func checkPeriodOpen(ctx context.Context, date time.Time) error {
	period, err := PeriodOf(ctx, date)
	if err != nil {
		return err
	}
	if period.Status == PeriodStatusClosed {
		return ErrClosedReportingPeriod
	}
	return nil
}
