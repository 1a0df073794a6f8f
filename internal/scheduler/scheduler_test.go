package scheduler

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"testing"

	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/estimator"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/validation"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func constraints(start string, buffer int) models.UserConstraints {
	return models.UserConstraints{
		StartDate:          start,
		WeekdayHours:       3,
		WeekendHours:       6,
		BufferDays:         buffer,
		ChunkHours:         1,
		ReviewIntervalDays: 3,
	}
}

func course(id, exam string, topics ...string) models.CourseSpec {
	c := models.CourseSpec{CourseID: id, ExamDate: exam}
	for _, t := range topics {
		c.Topics = append(c.Topics, models.TopicSpec{CourseID: id, TopicID: t})
	}
	return c
}

func est(courseID, topicID string, hours float64) models.TopicEstimate {
	return models.TopicEstimate{CourseID: courseID, TopicID: topicID, EstimatedHours: hours}
}

func TestPlan_InfeasibleSingleCourse(t *testing.T) {
	// Wednesday start, Monday exam: Wed, Thu, Fri at 3h and Sat, Sun at 6h.
	req := Request{
		Courses:     []models.CourseSpec{course("phys", "2026-10-26", "mechanics")},
		Estimates:   []models.TopicEstimate{est("phys", "mechanics", 40)},
		Constraints: constraints("2026-10-21", 0),
	}

	res, err := New().Plan(req)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	sum := res.Summary
	if sum.Feasible {
		t.Fatal("expected infeasible plan")
	}
	if !approx(sum.TotalAvailableHours, 21) {
		t.Errorf("available = %v, want 21", sum.TotalAvailableHours)
	}
	if !approx(sum.ShortfallHours, 19) {
		t.Errorf("shortfall = %v, want 19", sum.ShortfallHours)
	}
	if len(sum.Mitigations) != 3 {
		t.Fatalf("expected 3 mitigations, got %d", len(sum.Mitigations))
	}

	wantKinds := []models.MitigationKind{
		models.MitigationDropTopics,      // 19h / 1 topic
		models.MitigationStartEarlier,    // 19h / 5 days
		models.MitigationIncreaseWeekday, // 19h / 7h
	}
	for i, m := range sum.Mitigations {
		if m.Kind != wantKinds[i] {
			t.Errorf("mitigation %d kind = %s, want %s", i, m.Kind, wantKinds[i])
		}
		if !m.Resolves {
			t.Errorf("mitigation %s should resolve the shortfall", m.Kind)
		}
		if !approx(m.HoursRecovered, 19) {
			t.Errorf("mitigation %s recovered %v, want 19", m.Kind, m.HoursRecovered)
		}
		if m.Description == "" {
			t.Errorf("mitigation %s has empty description", m.Kind)
		}
	}
	if sum.Mitigations[1].Change != 5 {
		t.Errorf("start shift = %v days, want 5", sum.Mitigations[1].Change)
	}
	if sum.Mitigations[2].Change != 7 {
		t.Errorf("weekday increase = %vh, want 7", sum.Mitigations[2].Change)
	}

	var total float64
	for _, r := range res.Rows {
		total += r.Hours
		if r.TaskType != models.TaskInitialStudy {
			t.Errorf("unexpected %s row on %s", r.TaskType, r.Date)
		}
	}
	if !approx(total, 21) {
		t.Errorf("allocated %v hours, want 21", total)
	}
	if last := res.Rows[len(res.Rows)-1]; !approx(last.Progress, 0.525) {
		t.Errorf("final progress = %v, want 0.525", last.Progress)
	}
}

func TestPlan_NearerDeadlineFirst(t *testing.T) {
	// "zoo" sorts after "abc" but its exam is two days sooner.
	req := Request{
		Courses: []models.CourseSpec{
			course("abc", "2026-11-04", "a1"),
			course("zoo", "2026-11-02", "z1"),
		},
		Estimates:   []models.TopicEstimate{est("abc", "a1", 20), est("zoo", "z1", 20)},
		Constraints: constraints("2026-10-21", 0),
	}

	res, err := New().Plan(req)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	var firstDay []models.PlanRow
	for _, r := range res.Rows {
		if r.Date == "2026-10-21" {
			firstDay = append(firstDay, r)
		}
	}
	if len(firstDay) != 1 || firstDay[0].CourseID != "zoo" || !approx(firstDay[0].Hours, 3) {
		t.Errorf("expected the whole first day to go to zoo, got %+v", firstDay)
	}
}

func TestPlan_FullCoverageProducesNoRows(t *testing.T) {
	pages := func(n int) *int { return &n }
	courses := []models.CourseSpec{
		{CourseID: "done", ExamDate: "2026-11-16", Topics: []models.TopicSpec{
			{CourseID: "done", TopicID: "t1", PageCount: pages(80), Difficulty: "hard", TaskMix: "read-only"},
		}},
		{CourseID: "todo", ExamDate: "2026-11-16", Topics: []models.TopicSpec{
			{CourseID: "todo", TopicID: "t1", PageCount: pages(30), Difficulty: "medium", TaskMix: "read-only"},
		}},
	}
	profile := &models.Profile{CoverageByCourse: map[string]float64{"done": 100}}

	estimates := estimator.Estimate(courses, profile)
	res, err := New().Plan(Request{
		Courses:     courses,
		Estimates:   estimates.Estimates,
		Constraints: constraints("2026-10-21", 1),
		Profile:     profile,
		Warnings:    estimates.Warnings,
	})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	for _, r := range res.Rows {
		if r.CourseID == "done" {
			t.Errorf("unexpected row for fully covered course: %+v", r)
		}
	}
	if !res.Summary.Feasible {
		t.Error("expected feasible plan")
	}
	for _, c := range res.Summary.Courses {
		if c.CourseID == "done" && c.RequiredHours != 0 {
			t.Errorf("covered course requires %v hours, want 0", c.RequiredHours)
		}
	}
}

func richRequest() Request {
	courses := []models.CourseSpec{
		course("bio", "2026-11-20", "cells", "genetics", "ecology"),
		course("chem", "2026-11-16", "atoms", "bonds"),
		course("math", "2026-11-25", "limits", "derivatives", "integrals", "series"),
	}
	estimates := []models.TopicEstimate{
		est("bio", "cells", 2.5), est("bio", "genetics", 4.05), est("bio", "ecology", 1.8),
		est("chem", "atoms", 3.35), est("chem", "bonds", 6),
		est("math", "limits", 2), est("math", "derivatives", 5.4), est("math", "integrals", 7.29), est("math", "series", 0.6),
	}
	return Request{
		Courses:     courses,
		Estimates:   estimates,
		Constraints: constraints("2026-10-21", 2),
		Overrides:   map[string]float64{"chem": 1.5},
	}
}

func TestPlan_Laws(t *testing.T) {
	req := richRequest()
	res, err := New().Plan(req)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if !res.Summary.Feasible {
		t.Fatalf("expected feasible plan, shortfall %v", res.Summary.ShortfallHours)
	}
	if len(res.Summary.Mitigations) != 0 {
		t.Errorf("feasible plan has %d mitigations", len(res.Summary.Mitigations))
	}

	// ordering
	sorted := append([]models.PlanRow(nil), res.Rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return validation.RowLess(sorted[i], sorted[j]) })
	if !reflect.DeepEqual(sorted, res.Rows) {
		t.Error("rows are not in (date, course, topic) order")
	}

	// conservation
	studied := map[string]float64{}
	for _, r := range res.Rows {
		if r.TaskType == models.TaskInitialStudy {
			studied[r.CourseID+"/"+r.TopicID] += r.Hours
		}
		if r.Hours <= 0 {
			t.Errorf("non-positive row %+v", r)
		}
	}
	for _, e := range req.Estimates {
		if got := studied[e.CourseID+"/"+e.TopicID]; math.Abs(got-e.EstimatedHours) > 1e-6 {
			t.Errorf("%s/%s allocated %v, want %v", e.CourseID, e.TopicID, got, e.EstimatedHours)
		}
	}

	// capacity and exam-date rules
	result := validation.New().ValidatePlan(res.Rows, res.Summary, req.Constraints, nil)
	if result.HasConflicts() {
		t.Errorf("plan has conflicts:\n%s", result.FormatReport())
	}

	var spaced, final int
	for _, r := range res.Rows {
		switch r.TaskType {
		case models.TaskSpacedReview:
			spaced++
		case models.TaskFinalReview:
			final++
			if r.Progress != 1 {
				t.Errorf("final review on incomplete topic: %+v", r)
			}
		}
	}
	if spaced == 0 {
		t.Error("expected spaced-review rows")
	}
	if final == 0 {
		t.Error("expected final-review rows")
	}
}

func TestPlan_Deterministic(t *testing.T) {
	s := New()
	first, err := s.Plan(richRequest())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.Plan(richRequest())
		if err != nil {
			t.Fatalf("Plan failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different result", i)
		}
	}
}

func TestPlan_MitigationCountLaw(t *testing.T) {
	for _, hours := range []float64{5, 15, 21, 22, 40, 90, 400} {
		req := Request{
			Courses: []models.CourseSpec{
				course("a", "2026-10-26", "t1", "t2"),
				course("b", "2026-10-28", "t1"),
			},
			Estimates:   []models.TopicEstimate{est("a", "t1", hours/2), est("a", "t2", hours/2), est("b", "t1", hours/4)},
			Constraints: constraints("2026-10-21", 0),
		}
		res, err := New().Plan(req)
		if err != nil {
			t.Fatalf("Plan(%v) failed: %v", hours, err)
		}
		n := len(res.Summary.Mitigations)
		if res.Summary.Feasible && n != 0 {
			t.Errorf("hours=%v feasible with %d mitigations", hours, n)
		}
		if !res.Summary.Feasible && n != 3 {
			t.Errorf("hours=%v infeasible with %d mitigations", hours, n)
		}
	}
}

func TestPlan_ConfigErrors(t *testing.T) {
	valid := func() Request {
		return Request{
			Courses:     []models.CourseSpec{course("a", "2026-11-02", "t1")},
			Estimates:   []models.TopicEstimate{est("a", "t1", 2)},
			Constraints: constraints("2026-10-21", 1),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero weekday capacity", func(r *Request) { r.Constraints.WeekdayHours = 0 }},
		{"negative weekend capacity", func(r *Request) { r.Constraints.WeekendHours = -2 }},
		{"zero chunk", func(r *Request) { r.Constraints.ChunkHours = 0 }},
		{"zero review interval", func(r *Request) { r.Constraints.ReviewIntervalDays = 0 }},
		{"negative buffer", func(r *Request) { r.Constraints.BufferDays = -1 }},
		{"malformed start", func(r *Request) { r.Constraints.StartDate = "21/10/2026" }},
		{"start after every exam", func(r *Request) { r.Constraints.StartDate = "2026-12-01" }},
		{"malformed exam date", func(r *Request) { r.Courses[0].ExamDate = "soon" }},
		{"duplicate course", func(r *Request) { r.Courses = append(r.Courses, course("a", "2026-11-03", "x")) }},
		{"duplicate topic", func(r *Request) { r.Courses[0].Topics = append(r.Courses[0].Topics, r.Courses[0].Topics[0]) }},
		{"non-positive override", func(r *Request) { r.Overrides = map[string]float64{"a": 0} }},
		{"zero profile capacity", func(r *Request) {
			r.Profile = &models.Profile{Capacity: &models.CapacityOverride{WeekdayHours: 0, WeekendHours: 4}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			res, err := New().Plan(req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apperrors.ErrConfig) {
				t.Errorf("expected config error, got %v", err)
			}
			if len(res.Rows) != 0 {
				t.Error("no partial plan should be returned on config error")
			}
		})
	}
}

func TestPlan_MissingExamDateDefaults(t *testing.T) {
	req := Request{
		Courses:     []models.CourseSpec{course("hist", "", "t1")},
		Estimates:   []models.TopicEstimate{est("hist", "t1", 2)},
		Constraints: constraints("2026-10-21", 1),
		Warnings:    []string{"from estimator"},
	}

	res, err := New().Plan(req)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if got := res.Summary.Courses[0].ExamDate; got != "2026-11-04" {
		t.Errorf("default exam date = %s, want 2026-11-04", got)
	}
	if len(res.Summary.Warnings) != 2 || res.Summary.Warnings[0] != "from estimator" {
		t.Errorf("expected carried warning first, got %v", res.Summary.Warnings)
	}
}

func TestPlan_ProfileCapacityOverride(t *testing.T) {
	req := Request{
		Courses:     []models.CourseSpec{course("a", "2026-10-26", "t1")},
		Estimates:   []models.TopicEstimate{est("a", "t1", 1)},
		Constraints: constraints("2026-10-21", 0),
		Profile:     &models.Profile{Capacity: &models.CapacityOverride{WeekdayHours: 1, WeekendHours: 2}},
	}

	res, err := New().Plan(req)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	// Wed, Thu, Fri at 1h and Sat, Sun at 2h.
	if !approx(res.Summary.TotalAvailableHours, 7) {
		t.Errorf("available = %v, want 7", res.Summary.TotalAvailableHours)
	}
}

func TestPriorityWeight(t *testing.T) {
	s := New()
	profile := &models.Profile{
		RankedCourses:       []string{"a", "b"},
		FamiliarityByCourse: map[string]int{"c": 1},
		WeaknessByCourse:    map[string]int{"c": 5},
		CoverageByCourse:    map[string]float64{"d": 100},
	}

	tests := []struct {
		name      string
		course    models.CourseSpec
		profile   *models.Profile
		overrides map[string]float64
		want      float64
	}{
		{"course default", models.CourseSpec{CourseID: "a"}, nil, nil, 1.0},
		{"course weight", models.CourseSpec{CourseID: "a", PriorityWeight: 1.3}, nil, nil, 1.3},
		{"override wins", models.CourseSpec{CourseID: "a"}, profile, map[string]float64{"a": 2.0}, 2.0},
		{"first ranked", models.CourseSpec{CourseID: "a"}, profile, nil, 1.21},
		{"second ranked", models.CourseSpec{CourseID: "b"}, profile, nil, 1.15},
		{"unfamiliar and weak", models.CourseSpec{CourseID: "c"}, profile, nil, 1.24},
		{"fully covered", models.CourseSpec{CourseID: "d"}, profile, nil, 0.76},
		{"neutral", models.CourseSpec{CourseID: "e"}, profile, nil, 1.0},
		{"clamped", models.CourseSpec{CourseID: "a", PriorityWeight: 5}, profile, nil, 1.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.PriorityWeight(tt.course, tt.profile, tt.overrides); !approx(got, tt.want) {
				t.Errorf("PriorityWeight = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUrgency(t *testing.T) {
	if got := Urgency(1.5, 10, 5); !approx(got, 3) {
		t.Errorf("Urgency = %v, want 3", got)
	}
	if got := Urgency(1, 4, 0); !approx(got, 4) {
		t.Errorf("Urgency with zero days = %v, want 4", got)
	}
}

func TestSearchMin(t *testing.T) {
	atLeast := func(n int) func(int) bool { return func(k int) bool { return k >= n } }

	tests := []struct {
		name   string
		max    int
		closes func(int) bool
		want   int
		wantOK bool
	}{
		{"found by bisection", 100, atLeast(7), 7, true},
		{"first probe", 100, atLeast(1), 1, true},
		{"exactly max", 8, atLeast(8), 8, true},
		{"never closes", 5, atLeast(9), 5, false},
		{"no room", 0, atLeast(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := searchMin(tt.max, tt.closes)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("searchMin = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewWithConfig(t *testing.T) {
	s, err := NewWithConfig(Config{ReviewHours: 0.75})
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	if cfg := s.Config(); cfg.ReviewHours != 0.75 || cfg.MaxPriorityWeight != 1.9 {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := NewWithConfig(Config{MinPriorityWeight: 3, MaxPriorityWeight: 2}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewWithConfig(Config{ReviewHours: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPlan_ReviewTiming(t *testing.T) {
	// Wednesday start, Tuesday exam; the buffer covers Sunday 11-08 and Monday 11-09.
	finals := []string{
		"2026-11-08 t1 2.00", "2026-11-08 t2 2.00", "2026-11-08 t3 1.00",
		"2026-11-09 t1 1.00", "2026-11-09 t3 1.00",
	}
	tests := []struct {
		name     string
		cfg      Config
		interval int
		spaced   []string
	}{
		{
			name:     "half hour review three days after completion",
			interval: 3,
			// t1 finishes Wed 10-21, t2 and t3 finish Fri 10-23.
			spaced: []string{"2026-10-24 t1 0.50", "2026-10-26 t2 0.50", "2026-10-26 t3 0.50"},
		},
		{
			name:     "review cost capped at the chunk size",
			cfg:      Config{ReviewHours: 2},
			interval: 4,
			spaced:   []string{"2026-10-25 t1 1.00", "2026-10-27 t2 1.00", "2026-10-27 t3 1.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewWithConfig(tt.cfg)
			if err != nil {
				t.Fatalf("NewWithConfig failed: %v", err)
			}
			c := constraints("2026-10-21", 2)
			c.WeekdayHours = 2
			c.WeekendHours = 5
			c.ReviewIntervalDays = tt.interval

			res, err := s.Plan(Request{
				Courses:     []models.CourseSpec{course("bio", "2026-11-10", "t1", "t2", "t3")},
				Estimates:   []models.TopicEstimate{est("bio", "t1", 2), est("bio", "t2", 3), est("bio", "t3", 1)},
				Constraints: c,
			})
			if err != nil {
				t.Fatalf("Plan failed: %v", err)
			}
			if !res.Summary.Feasible {
				t.Fatalf("expected feasible plan, short by %v", res.Summary.ShortfallHours)
			}

			var spaced, final []string
			for _, r := range res.Rows {
				line := fmt.Sprintf("%s %s %.2f", r.Date, r.TopicID, r.Hours)
				switch r.TaskType {
				case models.TaskSpacedReview:
					spaced = append(spaced, line)
				case models.TaskFinalReview:
					final = append(final, line)
				}
			}
			if !reflect.DeepEqual(spaced, tt.spaced) {
				t.Errorf("spaced reviews = %v, want %v", spaced, tt.spaced)
			}
			// Final review cycles t1, t2, t3 and carries the position into the next day.
			if !reflect.DeepEqual(final, finals) {
				t.Errorf("final reviews = %v, want %v", final, finals)
			}
		})
	}
}
