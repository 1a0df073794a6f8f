package profile

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

var courseIDs = []string{"PHYS234", "SYSD300", "HLTH204"}

func current() models.UserConstraints {
	return models.UserConstraints{StartDate: "2026-10-21", WeekdayHours: 3, WeekendHours: 6, ChunkHours: 1, ReviewIntervalDays: 3}
}

func TestIntakeQuestions(t *testing.T) {
	qs := IntakeQuestions(courseIDs)
	if len(qs) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(qs))
	}
	if !strings.Contains(qs[0].Prompt, "HLTH204, PHYS234, SYSD300") {
		t.Errorf("ranking prompt should list sorted course ids, got %q", qs[0].Prompt)
	}
	keys := []string{"ranked_courses", "familiarity_by_course", "coverage_by_course", "weakness_by_course", "hours"}
	for i, q := range qs {
		if q.Key != keys[i] {
			t.Errorf("question %d key = %q, want %q", i, q.Key, keys[i])
		}
		if q.Example == "" {
			t.Errorf("question %d has no example", i)
		}
	}
}

func TestParseAndBuild(t *testing.T) {
	data := []byte(`{
		"ranked_courses": ["phys234", "nope", "SYSD300", "PHYS234"],
		"familiarity_by_course": {"PHYS234": 2, "SYSD300": 9},
		"coverage_by_course": {"HLTH204": 140, "SYSD300": 50},
		"weakness_by_course": {"PHYS234": 4.6, "MATH100": 2},
		"hours": {"hours_weekend": 8}
	}`)

	answers, err := ParseAnswers(data)
	if err != nil {
		t.Fatalf("ParseAnswers failed: %v", err)
	}
	p, notes, err := Build(answers, courseIDs, current())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if want := []string{"PHYS234", "SYSD300"}; !reflect.DeepEqual(p.RankedCourses, want) {
		t.Errorf("ranked = %v, want %v", p.RankedCourses, want)
	}
	if p.FamiliarityByCourse["SYSD300"] != 5 {
		t.Errorf("familiarity should clamp to 5, got %d", p.FamiliarityByCourse["SYSD300"])
	}
	if p.WeaknessByCourse["PHYS234"] != 5 {
		t.Errorf("weakness 4.6 should round to 5, got %d", p.WeaknessByCourse["PHYS234"])
	}
	if _, ok := p.WeaknessByCourse["MATH100"]; ok {
		t.Error("unknown course should be dropped")
	}
	if p.CoverageByCourse["HLTH204"] != 100 {
		t.Errorf("coverage should clamp to 100, got %v", p.CoverageByCourse["HLTH204"])
	}
	if p.Capacity == nil || p.Capacity.WeekdayHours != 3 || p.Capacity.WeekendHours != 8 {
		t.Errorf("capacity = %+v, want weekday 3 weekend 8", p.Capacity)
	}

	joined := strings.Join(notes, "\n")
	for _, want := range []string{`unknown course "nope"`, `duplicate course "PHYS234"`, `unknown course "MATH100"`, "Updated study time"} {
		if !strings.Contains(joined, want) {
			t.Errorf("notes missing %q:\n%s", want, joined)
		}
	}
}

func TestBuildRejectsNonPositiveHours(t *testing.T) {
	zero := 0.0
	_, _, err := Build(Answers{Hours: &Hours{Weekday: &zero}}, courseIDs, current())
	if !errors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestParseAnswersInvalidJSON(t *testing.T) {
	if _, err := ParseAnswers([]byte(`{"ranked_courses": 3}`)); err == nil {
		t.Error("expected error for malformed answers")
	}
}

func TestFormModelAnswers(t *testing.T) {
	fm := NewFormModel([]string{"a", "b"}, 3, 6)
	fm.Ranking = "b, a"
	fm.Courses[0].Familiarity = 1
	fm.Courses[1].Coverage = "40"
	fm.WeekdayHours = "2.5"

	a, err := fm.Answers()
	if err != nil {
		t.Fatalf("Answers failed: %v", err)
	}
	p, _, err := Build(a, []string{"a", "b"}, current())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(p.RankedCourses, []string{"b", "a"}) {
		t.Errorf("ranked = %v", p.RankedCourses)
	}
	if p.FamiliarityByCourse["a"] != 1 || p.CoverageByCourse["b"] != 40 {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.Capacity.WeekdayHours != 2.5 || p.Capacity.WeekendHours != 6 {
		t.Errorf("capacity = %+v", p.Capacity)
	}

	if form := NewForm(fm); form == nil {
		t.Error("NewForm returned nil")
	}
}

func TestReviewCourses(t *testing.T) {
	n := 12
	prompts := ReviewCourses([]models.CourseSpec{
		{CourseID: "b", ExamDate: "2026-11-02", Topics: []models.TopicSpec{{TopicID: "t", PageCount: &n}, {TopicID: "u"}}},
		{CourseID: "a"},
	})

	if len(prompts) != 3 {
		t.Fatalf("expected 3 prompts, got %v", prompts)
	}
	if !strings.HasPrefix(prompts[0], "a: exam date missing") || !strings.HasPrefix(prompts[1], "a: topics missing") {
		t.Errorf("unexpected prompts %v", prompts)
	}
	if !strings.Contains(prompts[2], "1 of 2 topics") {
		t.Errorf("unexpected page count prompt %q", prompts[2])
	}
}
