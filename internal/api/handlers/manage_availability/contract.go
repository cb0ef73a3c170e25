package manage_availability

import (
	"context"

	"github.com/m04kA/GNG-SchedulingService/internal/service/availability/models"
)

type AvailabilityService interface {
	AddRule(ctx context.Context, providerID int64, req *models.AddRuleRequest) (*models.RuleResponse, error)
	ListRules(ctx context.Context, providerID int64) (*models.RuleListResponse, error)
	DeleteRule(ctx context.Context, ruleID, providerID int64) error

	AddTimeOff(ctx context.Context, providerID int64, req *models.AddTimeOffRequest) (*models.TimeOffResponse, error)
	ListTimeOff(ctx context.Context, providerID int64) (*models.TimeOffListResponse, error)
	DeleteTimeOff(ctx context.Context, timeOffID, providerID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
