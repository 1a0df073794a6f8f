package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/validation"
)

// Request carries everything one planning call needs.
type Request struct {
	Estimates   []models.TopicEstimate
	Courses     []models.CourseSpec
	Constraints models.UserConstraints
	Profile     *models.Profile
	Overrides   map[string]float64
	// Warnings from earlier stages, copied verbatim to the summary.
	Warnings []string
}

// Result is the plan and its summary.
type Result struct {
	Rows    []models.PlanRow
	Summary models.PlanSummary
}

type Scheduler struct {
	cfg Config
}

// New returns a Scheduler with the default configuration.
func New() *Scheduler {
	return &Scheduler{cfg: DefaultConfig()}
}

// NewWithConfig fills zero fields of cfg with defaults and validates it.
func NewWithConfig(cfg Config) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// All hour arithmetic inside the scheduler is done in hundredths of an hour.
type cents = int64

func toCents(h float64) cents {
	return cents(math.Round(h * 100))
}

func toHours(c cents) float64 {
	return float64(c) / 100
}

type topicInput struct {
	id    string
	total cents
}

type courseInput struct {
	id     string
	exam   time.Time
	weight float64
	topics []topicInput
}

// prepared is the validated, normalized form of a Request. Mitigation
// searches rerun the allocation from it with modified params.
type prepared struct {
	courses  []courseInput
	warnings []string
}

type params struct {
	start    time.Time
	weekday  cents
	weekend  cents
	chunk    cents
	review   cents
	interval int
	buffer   int
	dropped  map[string]int // trailing topics removed per course
}

// Plan allocates study hours day by day and summarizes feasibility. A
// *errors.ConfigError is the only failure; infeasible plans come back with
// partial rows and exactly three mitigations.
func (s *Scheduler) Plan(req Request) (Result, error) {
	base, prep, err := s.prepare(req)
	if err != nil {
		return Result{}, err
	}

	out := s.simulate(prep, base, true)

	summary := models.PlanSummary{
		TotalAvailableHours: toHours(out.available),
		Feasible:            out.shortfall == 0,
		ShortfallHours:      toHours(out.shortfall),
		Warnings:            make([]string, 0, len(req.Warnings)+len(prep.warnings)),
		Mitigations:         []models.Mitigation{},
	}
	summary.Warnings = append(summary.Warnings, req.Warnings...)
	summary.Warnings = append(summary.Warnings, prep.warnings...)

	var required, allocated cents
	for _, c := range out.courses {
		required += c.required
		allocated += c.study + c.reviewed + c.final
		summary.Courses = append(summary.Courses, models.CourseTotals{
			CourseID:         c.id,
			ExamDate:         c.exam.Format(constants.DateFormat),
			PriorityWeight:   c.weight,
			RequiredHours:    toHours(c.required),
			StudyHours:       toHours(c.study),
			ReviewHours:      toHours(c.reviewed),
			FinalReviewHours: toHours(c.final),
			ShortfallHours:   toHours(c.remaining),
			Feasible:         c.remaining == 0,
		})
	}
	summary.TotalRequiredHours = toHours(required)
	summary.TotalAllocatedHours = toHours(allocated)

	if out.shortfall > 0 {
		summary.Mitigations = s.mitigations(prep, base, out.shortfall)
	}

	return Result{Rows: out.rows, Summary: summary}, nil
}

func (s *Scheduler) prepare(req Request) (params, *prepared, error) {
	if err := validation.ValidateConstraints(req.Constraints, req.Profile); err != nil {
		return params{}, nil, err
	}
	start, _ := validation.ParseDate("start_date", req.Constraints.StartDate)
	if err := validation.ValidateCourses(req.Courses, start); err != nil {
		return params{}, nil, err
	}
	if err := validation.ValidateOverrides(req.Overrides); err != nil {
		return params{}, nil, err
	}

	c := req.Constraints
	p := params{
		start:    start,
		weekday:  toCents(c.WeekdayHours),
		weekend:  toCents(c.WeekendHours),
		chunk:    toCents(c.ChunkHours),
		interval: c.ReviewIntervalDays,
		buffer:   c.BufferDays,
	}
	if req.Profile != nil && req.Profile.Capacity != nil {
		p.weekday = toCents(req.Profile.Capacity.WeekdayHours)
		p.weekend = toCents(req.Profile.Capacity.WeekendHours)
	}
	p.review = toCents(s.cfg.ReviewHours)
	if p.review > p.chunk {
		p.review = p.chunk
	}
	if p.review < 1 {
		p.review = 1
	}

	courses := append([]models.CourseSpec(nil), req.Courses...)
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].CourseID < courses[j].CourseID
	})

	byTopic := make(map[string]map[string]float64)
	for _, e := range req.Estimates {
		if byTopic[e.CourseID] == nil {
			byTopic[e.CourseID] = make(map[string]float64)
		}
		byTopic[e.CourseID][e.TopicID] = e.EstimatedHours
	}

	prep := &prepared{}
	used := make(map[string]map[string]bool)
	for _, course := range courses {
		ci := courseInput{
			id:     course.CourseID,
			weight: s.PriorityWeight(course, req.Profile, req.Overrides),
		}
		if course.ExamDate == "" {
			ci.exam = start.AddDate(0, 0, s.cfg.ExamHorizonDays)
			prep.warnings = append(prep.warnings, fmt.Sprintf("course %q has no exam date, assuming %s",
				course.CourseID, ci.exam.Format(constants.DateFormat)))
		} else {
			ci.exam, _ = validation.ParseDate("exam_date", course.ExamDate)
			if ci.exam.Before(start) {
				prep.warnings = append(prep.warnings, fmt.Sprintf("course %q exam date %s is before the start date",
					course.CourseID, course.ExamDate))
			}
		}

		used[course.CourseID] = make(map[string]bool)
		for _, t := range course.Topics {
			hours, ok := byTopic[course.CourseID][t.TopicID]
			if !ok {
				prep.warnings = append(prep.warnings, fmt.Sprintf("course %q topic %q has no estimate and was not scheduled",
					course.CourseID, t.TopicID))
			}
			if hours < 0 {
				hours = 0
			}
			used[course.CourseID][t.TopicID] = true
			ci.topics = append(ci.topics, topicInput{id: t.TopicID, total: toCents(hours)})
		}
		prep.courses = append(prep.courses, ci)
	}

	for _, e := range req.Estimates {
		if !used[e.CourseID][e.TopicID] {
			prep.warnings = append(prep.warnings, fmt.Sprintf("estimate for unknown topic %s/%s ignored", e.CourseID, e.TopicID))
		}
	}
	overrideIDs := make([]string, 0, len(req.Overrides))
	for id := range req.Overrides {
		if _, ok := used[id]; !ok {
			overrideIDs = append(overrideIDs, id)
		}
	}
	sort.Strings(overrideIDs)
	for _, id := range overrideIDs {
		prep.warnings = append(prep.warnings, fmt.Sprintf("override weight for unknown course %q ignored", id))
	}

	return p, prep, nil
}

type topicState struct {
	id        string
	order     int
	total     cents
	remaining cents
}

type courseState struct {
	id        string
	exam      time.Time
	examDay   int // day index of the exam relative to the start
	weight    float64
	topics    []*topicState
	covered   []*topicState // completed topics with hours, in syllabus order
	cursor    int           // final-review round-robin position
	required  cents
	remaining cents
	study     cents
	reviewed  cents
	final     cents
}

type reviewItem struct {
	course *courseState
	topic  *topicState
	due    int
	done   bool
}

type outcome struct {
	rows      []models.PlanRow
	courses   []*courseState
	available cents
	shortfall cents
}

type rowKey struct {
	day    int
	course string
	topic  string
	task   models.TaskType
}

type rowBuilder struct {
	start time.Time
	index map[rowKey]int
	rows  []models.PlanRow
	keys  []rowKey
	hours []cents
}

func (b *rowBuilder) add(day int, course, topic string, task models.TaskType, amount cents, progress float64) {
	k := rowKey{day: day, course: course, topic: topic, task: task}
	if i, ok := b.index[k]; ok {
		b.hours[i] += amount
		b.rows[i].Progress = progress
		return
	}
	b.index[k] = len(b.rows)
	b.keys = append(b.keys, k)
	b.hours = append(b.hours, amount)
	b.rows = append(b.rows, models.PlanRow{
		Date:     b.start.AddDate(0, 0, day).Format(constants.DateFormat),
		CourseID: course,
		TopicID:  topic,
		TaskType: task,
		Progress: progress,
	})
}

func (b *rowBuilder) build() []models.PlanRow {
	order := make([]int, len(b.rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, c := b.keys[order[i]], b.keys[order[j]]
		if a.day != c.day {
			return a.day < c.day
		}
		if a.course != c.course {
			return a.course < c.course
		}
		if a.topic != c.topic {
			return a.topic < c.topic
		}
		return a.task.Order() < c.task.Order()
	})

	rows := make([]models.PlanRow, 0, len(order))
	for _, i := range order {
		row := b.rows[i]
		row.Hours = toHours(b.hours[i])
		rows = append(rows, row)
	}
	return rows
}

type candidate struct {
	course  *courseState
	review  *reviewItem
	urgency float64
}

func dayIndex(start, t time.Time) int {
	return int(math.Round(t.Sub(start).Hours() / 24))
}

func (p params) capacity(day time.Time) cents {
	if models.IsWeekend(day) {
		return p.weekend
	}
	return p.weekday
}

func progress(t *topicState) float64 {
	if t.total == 0 {
		return 1
	}
	return math.Round(float64(t.total-t.remaining)/float64(t.total)*10000) / 10000
}

// simulate runs the day-by-day allocation. Rows are only materialized when
// record is set; mitigation searches need the shortfall alone.
func (s *Scheduler) simulate(prep *prepared, p params, record bool) outcome {
	var out outcome
	var reviews []*reviewItem
	builder := &rowBuilder{start: p.start, index: make(map[rowKey]int)}

	horizon := 0
	for _, ci := range prep.courses {
		cs := &courseState{
			id:      ci.id,
			exam:    ci.exam,
			examDay: dayIndex(p.start, ci.exam),
			weight:  ci.weight,
		}
		topics := ci.topics
		if n := p.dropped[ci.id]; n > 0 {
			if n > len(topics) {
				n = len(topics)
			}
			topics = topics[:len(topics)-n]
		}
		for i, ti := range topics {
			ts := &topicState{id: ti.id, order: i, total: ti.total, remaining: ti.total}
			cs.topics = append(cs.topics, ts)
			cs.required += ti.total
			cs.remaining += ti.total
		}
		if cs.examDay > horizon {
			horizon = cs.examDay
		}
		out.courses = append(out.courses, cs)
	}

	for day := 0; day < horizon; day++ {
		date := p.start.AddDate(0, 0, day)
		capLeft := p.capacity(date)
		out.available += capLeft

		var buffered []*courseState
		live := 0
		for _, cs := range out.courses {
			if day >= cs.examDay {
				continue
			}
			inBuffer := p.buffer > 0 && day >= cs.examDay-p.buffer
			if inBuffer && len(cs.covered) > 0 {
				buffered = append(buffered, cs)
				live++
			} else if cs.remaining > 0 || hasPendingReview(reviews, cs) {
				live++
			}
		}

		if len(buffered) > 0 {
			share := capLeft / cents(live)
			for _, cs := range buffered {
				left := share
				for left > 0 {
					amount := min(p.chunk, left)
					t := cs.covered[cs.cursor%len(cs.covered)]
					cs.cursor++
					builder.add(day, cs.id, t.id, models.TaskFinalReview, amount, 1)
					cs.final += amount
					left -= amount
					capLeft -= amount
				}
			}
		}

		var cands []candidate
		for _, cs := range out.courses {
			if cs.remaining > 0 && day < cs.examDay-p.buffer {
				cands = append(cands, candidate{
					course:  cs,
					urgency: Urgency(cs.weight, toHours(cs.remaining), cs.examDay-day),
				})
			}
		}
		for _, r := range reviews {
			cs := r.course
			if r.done || r.due > day || day >= cs.examDay-p.buffer {
				continue
			}
			cands = append(cands, candidate{
				course:  cs,
				review:  r,
				urgency: s.cfg.ReviewUrgencyWeight * Urgency(cs.weight, toHours(p.review), cs.examDay-day),
			})
		}
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := cands[i], cands[j]
			if a.urgency != b.urgency {
				return a.urgency > b.urgency
			}
			if a.course.id != b.course.id {
				return a.course.id < b.course.id
			}
			if (a.review == nil) != (b.review == nil) {
				return a.review == nil
			}
			if a.review != nil {
				return a.review.topic.order < b.review.topic.order
			}
			return false
		})

		for _, c := range cands {
			if capLeft <= 0 {
				break
			}
			cs := c.course
			if c.review != nil {
				if p.review <= capLeft {
					builder.add(day, cs.id, c.review.topic.id, models.TaskSpacedReview, p.review, progress(c.review.topic))
					c.review.done = true
					cs.reviewed += p.review
					capLeft -= p.review
				}
				continue
			}

		topics:
			for _, t := range cs.topics {
				for t.remaining > 0 {
					amount := min(p.chunk, t.remaining)
					if amount > capLeft {
						break topics
					}
					t.remaining -= amount
					cs.remaining -= amount
					cs.study += amount
					capLeft -= amount
					builder.add(day, cs.id, t.id, models.TaskInitialStudy, amount, progress(t))
					if t.remaining == 0 {
						cs.covered = append(cs.covered, t)
						reviews = append(reviews, &reviewItem{course: cs, topic: t, due: day + p.interval})
					}
				}
			}
		}
	}

	for _, cs := range out.courses {
		out.shortfall += cs.remaining
	}
	if record {
		out.rows = builder.build()
	}
	return out
}

func hasPendingReview(reviews []*reviewItem, cs *courseState) bool {
	for _, r := range reviews {
		if r.course == cs && !r.done {
			return true
		}
	}
	return false
}
