package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput текст рутины пустой или состоит из пробелов
	ErrEmptyInput = errors.New("el texto de la rutina está vacío")
	// ErrEmptyRoutine в тексте не найдено ни одного упражнения
	ErrEmptyRoutine = errors.New("no se detectaron ejercicios en la rutina")
)

// ValidationError represents a validation error
type ValidationError struct {
	Index   int // номер записи в ответе модели, 0 если неизвестен
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("registro %d: %s", e.Index, e.Message)
	}
	return e.Message
}

// MalformedResponseError ответ модели не удалось прочитать как JSON
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("la respuesta de la IA no es un JSON válido: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// StructuringError ошибка структурирования одного блока.
// Оборачивает MalformedResponseError, ValidationError или ошибку бэкенда.
type StructuringError struct {
	Block int // номер блока (дня), начиная с 1
	Err   error
}

func (e *StructuringError) Error() string {
	if e.Block > 0 {
		return fmt.Sprintf("error al procesar el día %d: %v", e.Block, e.Err)
	}
	return fmt.Sprintf("error al procesar con IA: %v", e.Err)
}

func (e *StructuringError) Unwrap() error { return e.Err }

// PresentationError ошибка создания презентации на любом шаге
type PresentationError struct {
	Step string
	Err  error
}

func (e *PresentationError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("error al crear la presentación: %v", e.Err)
	}
	return fmt.Sprintf("error al crear la presentación (%s): %v", e.Step, e.Err)
}

func (e *PresentationError) Unwrap() error { return e.Err }

// IsDomainError проверяет, относится ли ошибка к доменным
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrEmptyRoutine) {
		return true
	}
	var se *StructuringError
	var pe *PresentationError
	var ve *ValidationError
	var me *MalformedResponseError
	return errors.As(err, &se) || errors.As(err, &pe) || errors.As(err, &ve) || errors.As(err, &me)
}
