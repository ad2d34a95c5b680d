package routine

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"routinebot/internal/models"
)

// Регулярные выражения для строк упражнений.
// Повторы: число с необязательным суффиксом (30s, 45seg) или список через запятую/дефис.
const repsToken = `\d+(?:s|seg|")?(?:\s*[,/-]\s*\d+(?:s|seg|")?)*`

var (
	// "Press 4x10", "Press 4 x 10-8-6 reps"
	patternX = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*[xх×]\s*(` + repsToken + `)\s*(?:reps?|repeticiones)?$`)
	// "Remo 4/12"
	patternSlash = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)/(\d+)$`)
	// "Pull ups 4 series de 10 reps", "Dominadas 3 sets of 8"
	patternSeriesOf = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*(?:series|sets|serie|set)\s+(?:de|of|x)?\s*(` + repsToken + `)\s*(?:reps?|repeticiones)?$`)
	// "Muscle ups 5,6,7,8 reps"
	patternRepsList = regexp.MustCompile(`(?i)^(.+?)\s+(\d+(?:\s*,\s*\d+)+)\s*(?:reps?|repeticiones)$`)
	// "Front lever 3 series"
	patternSetsOnly = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*(?:series|sets)$`)
	// "Fondos 12 reps"
	patternRepsOnly = regexp.MustCompile(`(?i)^(.+?)\s+(` + repsToken + `)\s*(?:reps?|repeticiones)$`)

	dayHeader = regexp.MustCompile(`(?i)^(?:d[ií]a|day|rutina)\s*\d*\s*[:.-]?$`)
	bullet    = regexp.MustCompile(`^(?:[-•*·]+|\d+[.)])\s*`)
	repsSplit = regexp.MustCompile(`\s*[,/-]\s*`)
)

// RuleStructurer разбирает блок регулярными выражениями, без модели.
// Строка, которую не удалось разобрать, становится упражнением с именем-строкой.
type RuleStructurer struct{}

// NewRuleStructurer создаёт структуратор на правилах
func NewRuleStructurer() *RuleStructurer {
	return &RuleStructurer{}
}

func (RuleStructurer) Structure(ctx context.Context, block string) ([]models.Exercise, error) {
	var exercises []models.Exercise
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(bullet.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || dayHeader.MatchString(line) {
			continue
		}
		ex, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

// ParseLine разбирает одну строку упражнения
func ParseLine(line string) (models.Exercise, error) {
	line = strings.TrimSpace(line)

	if m := patternSeriesOf.FindStringSubmatch(line); m != nil {
		return models.NewExercise(m[1], m[2], splitReps(m[3]))
	}
	if m := patternX.FindStringSubmatch(line); m != nil {
		return models.NewExercise(m[1], m[2], splitReps(m[3]))
	}
	if m := patternSlash.FindStringSubmatch(line); m != nil {
		return models.NewExercise(m[1], m[2], []string{m[3]})
	}
	if m := patternRepsList.FindStringSubmatch(line); m != nil {
		reps := splitReps(m[2])
		return models.NewExercise(m[1], strconv.Itoa(len(reps)), reps)
	}
	if m := patternSetsOnly.FindStringSubmatch(line); m != nil {
		return models.NewExercise(m[1], m[2], nil)
	}
	if m := patternRepsOnly.FindStringSubmatch(line); m != nil {
		return models.NewExercise(m[1], "", splitReps(m[2]))
	}
	return models.NewExercise(line, "", nil)
}

func splitReps(s string) []string {
	return repsSplit.Split(strings.TrimSpace(s), -1)
}
