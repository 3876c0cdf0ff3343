// Package models содержит доменные структуры, описывающие пробный период (trial),
// а также вспомогательные типы для приёма данных из внешних источников (JSON-запросы).
package models

import "time"

// Статусы пробного периода.
const (
	TrialStatusActive    = "active"
	TrialStatusCancelled = "cancelled"
	TrialStatusExpired   = "expired"
)

// Trial представляет собой основную модель пробного периода,
// используемую в бизнес-логике и хранилище.
// EndDate вычисляется при создании как StartDate + TrialDays,
// после создания именно EndDate является источником истины для всех
// вычислений по истечению.
type Trial struct {
	ID          string     // Уникальный идентификатор (UUID)
	UserUID     string     // Идентификатор владельца
	Name        string     // Название сервиса, на который оформлен пробный период
	ServiceURL  *string    // Ссылка на сервис (страница отмены), может отсутствовать
	MonthlyCost *float64   // Стоимость в месяц после окончания пробного периода, может отсутствовать
	TrialDays   int        // Длительность пробного периода в днях
	StartDate   time.Time  // Дата начала
	EndDate     time.Time  // Дата окончания
	Status      string     // active, cancelled или expired
	CreatedAt   time.Time  // Дата создания записи
}

// DummyTrial используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Trial.
// Дата приходит в виде строки, чтобы её можно было валидировать и парсить вручную.
type DummyTrial struct {
	Name        string   `json:"name" validate:"required"`                      // Название сервиса
	ServiceURL  *string  `json:"service_url,omitempty" validate:"omitempty,uri"` // Ссылка на сервис (опционально)
	MonthlyCost *float64 `json:"monthly_cost,omitempty" validate:"omitempty,gte=0"` // Стоимость в месяц (опционально, >= 0)
	TrialDays   int      `json:"trial_days" validate:"gte=0"`                   // Длительность в днях, 0 допустим
	StartDate   string   `json:"start_date" validate:"required"`                // Дата начала в формате 2006-01-02
}

// TrialInfo содержит срез данных пробного периода, необходимый планировщику
// напоминаний: идентификаторы, дата окончания и поля для текста письма.
type TrialInfo struct {
	ID          string
	Name        string
	EndDate     time.Time
	MonthlyCost *float64
	ServiceURL  *string
	UserUID     string
}
