package models

import (
	"fmt"
	"strings"
)

// Значения по умолчанию для неполных упражнений
const (
	DefaultSets = "1"
	DefaultReps = "N/A"
)

// Exercise упражнение дня: название, подходы и повторы по подходам
type Exercise struct {
	Name string   `json:"name"`
	Sets string   `json:"sets"`
	Reps []string `json:"reps"`
}

// NewExercise создаёт упражнение и нормализует пустые поля.
// Пустое название - ошибка, пустые подходы становятся "1", пустые повторы - ["N/A"].
func NewExercise(name, sets string, reps []string) (Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Exercise{}, &ValidationError{Field: "name", Message: "el nombre del ejercicio no puede estar vacío"}
	}

	sets = strings.TrimSpace(sets)
	if sets == "" {
		sets = DefaultSets
	}

	cleaned := make([]string, 0, len(reps))
	for _, r := range reps {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{DefaultReps}
	}

	return Exercise{Name: name, Sets: sets, Reps: cleaned}, nil
}

// RepsText возвращает повторы одной строкой для ячейки таблицы
func (e Exercise) RepsText() string {
	return strings.Join(e.Reps, ", ")
}

// Day один тренировочный день (блок текста), номер присваивается по позиции
type Day struct {
	Number    int        `json:"day_number"`
	Exercises []Exercise `json:"exercises"`
}

// TotalExercises количество упражнений дня
func (d Day) TotalExercises() int {
	return len(d.Exercises)
}

// IsEmpty проверяет, что в дне нет упражнений
func (d Day) IsEmpty() bool {
	return len(d.Exercises) == 0
}

// RoutineSet результат одного разбора: дни в порядке ввода.
// После создания не изменяется, при передаче другому владельцу копируется через Clone.
type RoutineSet []Day

// TotalExercises суммарное количество упражнений
func (s RoutineSet) TotalExercises() int {
	total := 0
	for _, d := range s {
		total += d.TotalExercises()
	}
	return total
}

// NewRoutineSet собирает набор из внешних данных (например, тела HTTP-запроса).
// Каждое упражнение проходит через NewExercise, дни нумеруются по позиции с 1.
// Набор без упражнений - ErrEmptyRoutine.
func NewRoutineSet(days []Day) (RoutineSet, error) {
	out := make(RoutineSet, 0, len(days))
	for i, d := range days {
		exercises := make([]Exercise, 0, len(d.Exercises))
		for j, ex := range d.Exercises {
			clean, err := NewExercise(ex.Name, ex.Sets, ex.Reps)
			if err != nil {
				return nil, &ValidationError{
					Index:   j + 1,
					Field:   fmt.Sprintf("days[%d].exercises[%d].name", i, j),
					Message: fmt.Sprintf("día %d: %v", i+1, err),
				}
			}
			exercises = append(exercises, clean)
		}
		out = append(out, Day{Number: i + 1, Exercises: exercises})
	}
	if out.TotalExercises() == 0 {
		return nil, ErrEmptyRoutine
	}
	return out, nil
}

// Clone глубокая копия набора
func (s RoutineSet) Clone() RoutineSet {
	if s == nil {
		return nil
	}
	out := make(RoutineSet, len(s))
	for i, d := range s {
		exercises := make([]Exercise, len(d.Exercises))
		for j, ex := range d.Exercises {
			exercises[j] = Exercise{
				Name: ex.Name,
				Sets: ex.Sets,
				Reps: append([]string(nil), ex.Reps...),
			}
		}
		out[i] = Day{Number: d.Number, Exercises: exercises}
	}
	return out
}
