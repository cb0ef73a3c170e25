package models

import (
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

// Request модели

// AddRuleRequest запрос на добавление правила доступности
type AddRuleRequest struct {
	DayOfWeek      string  `json:"dayOfWeek"` // MONDAY .. SUNDAY
	StartTime      string  `json:"startTime"` // "09:00"
	EndTime        string  `json:"endTime"`   // "17:00"
	IsRecurring    bool    `json:"isRecurring"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`  // "2026-01-01"
	EffectiveUntil *string `json:"effectiveUntil,omitempty"` // "2026-03-31"
}

// AddTimeOffRequest запрос на добавление периода недоступности
type AddTimeOffRequest struct {
	StartDateTime string  `json:"startDateTime"` // ISO 8601
	EndDateTime   string  `json:"endDateTime"`   // ISO 8601
	Reason        *string `json:"reason,omitempty"`
}

// Response модели

// RuleResponse ответ с данными правила доступности
type RuleResponse struct {
	ID             int64   `json:"id"`
	ProviderID     int64   `json:"providerId"`
	DayOfWeek      string  `json:"dayOfWeek"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	IsRecurring    bool    `json:"isRecurring"`
	EffectiveFrom  *string `json:"effectiveFrom,omitempty"`
	EffectiveUntil *string `json:"effectiveUntil,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// RuleListResponse ответ со списком правил доступности
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// TimeOffResponse ответ с данными периода недоступности
type TimeOffResponse struct {
	ID            int64   `json:"id"`
	ProviderID    int64   `json:"providerId"`
	StartDateTime string  `json:"startDateTime"`
	EndDateTime   string  `json:"endDateTime"`
	Reason        *string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TimeOffListResponse ответ со списком периодов недоступности
type TimeOffListResponse struct {
	TimeOff []TimeOffResponse `json:"timeOff"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.AvailabilityRule) *RuleResponse {
	if r == nil {
		return nil
	}

	resp := &RuleResponse{
		ID:          r.ID,
		ProviderID:  r.ProviderID,
		DayOfWeek:   domain.WeekdayName(r.DayOfWeek),
		StartTime:   r.StartTime.String(),
		EndTime:     r.EndTime.String(),
		IsRecurring: r.IsRecurring,
		CreatedAt:   r.CreatedAt,
	}

	if r.EffectiveFrom != nil {
		from := r.EffectiveFrom.Format(domain.DateFormat)
		resp.EffectiveFrom = &from
	}
	if r.EffectiveUntil != nil {
		until := r.EffectiveUntil.Format(domain.DateFormat)
		resp.EffectiveUntil = &until
	}

	return resp
}

// FromDomainRuleList конвертирует список domain моделей в DTO
func FromDomainRuleList(rules []*domain.AvailabilityRule) *RuleListResponse {
	resp := &RuleListResponse{
		Rules: make([]RuleResponse, 0, len(rules)),
	}

	for _, rule := range rules {
		if ruleResp := FromDomainRule(rule); ruleResp != nil {
			resp.Rules = append(resp.Rules, *ruleResp)
		}
	}

	return resp
}

// FromDomainTimeOff конвертирует domain модель в DTO
func FromDomainTimeOff(t *domain.TimeOff) *TimeOffResponse {
	if t == nil {
		return nil
	}

	return &TimeOffResponse{
		ID:            t.ID,
		ProviderID:    t.ProviderID,
		StartDateTime: t.StartDateTime.Format(time.RFC3339),
		EndDateTime:   t.EndDateTime.Format(time.RFC3339),
		Reason:        t.Reason,
		CreatedAt:     t.CreatedAt,
	}
}

// FromDomainTimeOffList конвертирует список domain моделей в DTO
func FromDomainTimeOffList(periods []*domain.TimeOff) *TimeOffListResponse {
	resp := &TimeOffListResponse{
		TimeOff: make([]TimeOffResponse, 0, len(periods)),
	}

	for _, timeOff := range periods {
		if timeOffResp := FromDomainTimeOff(timeOff); timeOffResp != nil {
			resp.TimeOff = append(resp.TimeOff, *timeOffResp)
		}
	}

	return resp
}
