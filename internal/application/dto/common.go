package dto

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PeriodRequest rango de fechas YYYY-MM-DD de los reportes.
type PeriodRequest struct {
	StartDate string `query:"start_date"` // por defecto primer día del mes actual
	EndDate   string `query:"end_date"`   // por defecto hoy
}

// Parse convierte el período en instantes; end es inclusivo hasta el final del día.
func (p PeriodRequest) Parse(now time.Time) (start, end time.Time, err error) {
	if p.EndDate == "" {
		end = now
	} else {
		end, err = time.ParseInLocation(dateLayout, p.EndDate, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date inválido: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if p.StartDate == "" {
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	} else {
		start, err = time.ParseInLocation(dateLayout, p.StartDate, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date inválido: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date posterior a end_date")
	}
	return start, end, nil
}

// ParseDate interpreta una fecha opcional YYYY-MM-DD; vacío devuelve el instante cero.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: %w", s, err)
	}
	return t, nil
}
