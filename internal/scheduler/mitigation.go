package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// mitigationCount is how many suggestions an infeasible plan carries.
const mitigationCount = 3

// generator proposes one kind of change to an infeasible plan.
type generator func(s *Scheduler, prep *prepared, base params, shortfall cents) models.Mitigation

// generators are evaluated in this order every time; the order also breaks
// ratio ties.
var generators = []generator{
	increaseWeekday,
	increaseWeekend,
	startEarlier,
	dropLowPriorityTopics,
}

type scored struct {
	m     models.Mitigation
	ratio float64
	order int
}

func (s *Scheduler) mitigations(prep *prepared, base params, shortfall cents) []models.Mitigation {
	all := make([]scored, 0, len(generators))
	for i, gen := range generators {
		m := gen(s, prep, base, shortfall)
		ratio := 0.0
		if m.Change > 0 {
			ratio = m.HoursRecovered / m.Change
		}
		all = append(all, scored{m: m, ratio: ratio, order: i})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ratio != all[j].ratio {
			return all[i].ratio > all[j].ratio
		}
		return all[i].order < all[j].order
	})

	out := make([]models.Mitigation, 0, mitigationCount)
	for _, sc := range all[:mitigationCount] {
		out = append(out, sc.m)
	}
	return out
}

// searchMin finds the smallest step count in [1, maxSteps] for which closes
// holds, growing exponentially and then bisecting. Each probe reruns the
// allocation, so results are memoized. ok is false when even maxSteps does
// not close the gap.
func searchMin(maxSteps int, closes func(int) bool) (steps int, ok bool) {
	if maxSteps < 1 {
		return 0, false
	}
	memo := make(map[int]bool)
	probe := func(k int) bool {
		if v, seen := memo[k]; seen {
			return v
		}
		v := closes(k)
		memo[k] = v
		return v
	}

	lo, hi := 0, 1
	for {
		if hi >= maxSteps {
			hi = maxSteps
			if !probe(hi) {
				return maxSteps, false
			}
			break
		}
		if probe(hi) {
			break
		}
		lo = hi
		hi *= 2
	}

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if probe(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, true
}

func recovered(shortfall, remaining cents) float64 {
	if remaining > shortfall {
		return 0
	}
	return toHours(shortfall - remaining)
}

func increaseWeekday(s *Scheduler, prep *prepared, base params, shortfall cents) models.Mitigation {
	return increaseCapacity(s, prep, base, shortfall, false)
}

func increaseWeekend(s *Scheduler, prep *prepared, base params, shortfall cents) models.Mitigation {
	return increaseCapacity(s, prep, base, shortfall, true)
}

func increaseCapacity(s *Scheduler, prep *prepared, base params, shortfall cents, weekend bool) models.Mitigation {
	kind, label, unit := models.MitigationIncreaseWeekday, "weekday", "hours per weekday"
	current := base.weekday
	if weekend {
		kind, label, unit = models.MitigationIncreaseWeekend, "weekend", "hours per weekend day"
		current = base.weekend
	}

	with := func(steps int) params {
		p := base
		if weekend {
			p.weekend = current + cents(steps)*base.chunk
		} else {
			p.weekday = current + cents(steps)*base.chunk
		}
		return p
	}

	maxSteps := int((toCents(s.cfg.MaxDailyHours) - current) / base.chunk)
	steps, ok := searchMin(maxSteps, func(k int) bool {
		return s.simulate(prep, with(k), false).shortfall == 0
	})
	if steps == 0 {
		return models.Mitigation{
			Kind:        kind,
			Description: fmt.Sprintf("%s study time is already at the %.0fh daily limit", capitalize(label), s.cfg.MaxDailyHours),
			Unit:        unit,
		}
	}

	remaining := cents(0)
	if !ok {
		remaining = s.simulate(prep, with(steps), false).shortfall
	}
	change := cents(steps) * base.chunk
	desc := fmt.Sprintf("Increase %s study time from %.2fh to %.2fh per day (+%.2fh)",
		label, toHours(current), toHours(current+change), toHours(change))
	if !ok {
		desc += fmt.Sprintf(", recovering %.2fh of the %.2fh shortfall", recovered(shortfall, remaining), toHours(shortfall))
	}
	return models.Mitigation{
		Kind:           kind,
		Description:    desc,
		HoursRecovered: recovered(shortfall, remaining),
		Change:         toHours(change),
		Unit:           unit,
		Resolves:       ok,
	}
}

func startEarlier(s *Scheduler, prep *prepared, base params, shortfall cents) models.Mitigation {
	with := func(days int) params {
		p := base
		p.start = base.start.AddDate(0, 0, -days)
		return p
	}

	days, ok := searchMin(s.cfg.MaxStartShiftDays, func(k int) bool {
		return s.simulate(prep, with(k), false).shortfall == 0
	})
	if days == 0 {
		return models.Mitigation{
			Kind:        models.MitigationStartEarlier,
			Description: "Moving the start date earlier is disabled",
			Unit:        "days",
		}
	}

	remaining := cents(0)
	if !ok {
		remaining = s.simulate(prep, with(days), false).shortfall
	}
	desc := fmt.Sprintf("Start %d day(s) earlier, on %s", days, with(days).start.Format(constants.DateFormat))
	if !ok {
		desc += fmt.Sprintf(", recovering %.2fh of the %.2fh shortfall", recovered(shortfall, remaining), toHours(shortfall))
	}
	return models.Mitigation{
		Kind:           models.MitigationStartEarlier,
		Description:    desc,
		HoursRecovered: recovered(shortfall, remaining),
		Change:         float64(days),
		Unit:           "days",
		Resolves:       ok,
	}
}

// lowestPriorityCourse picks the course with the smallest weight that has
// topics; ties go to the course that sorts last by id.
func lowestPriorityCourse(prep *prepared) (courseInput, bool) {
	var pick courseInput
	found := false
	for _, c := range prep.courses {
		if len(c.topics) == 0 {
			continue
		}
		if !found || c.weight < pick.weight || (c.weight == pick.weight && c.id > pick.id) {
			pick = c
			found = true
		}
	}
	return pick, found
}

func dropLowPriorityTopics(s *Scheduler, prep *prepared, base params, shortfall cents) models.Mitigation {
	course, found := lowestPriorityCourse(prep)
	if !found {
		return models.Mitigation{
			Kind:        models.MitigationDropTopics,
			Description: "No topics available to drop",
			Unit:        "topics",
		}
	}

	with := func(n int) params {
		p := base
		p.dropped = map[string]int{course.id: n}
		return p
	}

	n, ok := searchMin(len(course.topics), func(k int) bool {
		return s.simulate(prep, with(k), false).shortfall == 0
	})

	remaining := cents(0)
	if !ok {
		remaining = s.simulate(prep, with(n), false).shortfall
	}

	ids := make([]string, 0, n)
	for _, t := range course.topics[len(course.topics)-n:] {
		ids = append(ids, t.id)
	}
	desc := fmt.Sprintf("Drop the last %d topic(s) of %s: %s", n, course.id, strings.Join(ids, ", "))
	if !ok {
		desc += fmt.Sprintf(", recovering %.2fh of the %.2fh shortfall", recovered(shortfall, remaining), toHours(shortfall))
	}
	return models.Mitigation{
		Kind:           models.MitigationDropTopics,
		Description:    desc,
		HoursRecovered: recovered(shortfall, remaining),
		Change:         float64(n),
		Unit:           "topics",
		Resolves:       ok,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
