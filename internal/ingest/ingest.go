package ingest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/studyplan/internal/models"
)

type courseFile struct {
	Courses []models.CourseSpec `yaml:"courses"`
}

// LoadCourses reads a course file. YAML and JSON are both accepted, either
// as {courses: [...]}, a bare list, or a single course.
func LoadCourses(path string) ([]models.CourseSpec, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read course file: %w", err)
	}
	courses, warnings, err := ParseCourses(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return courses, warnings, nil
}

// ParseCourses decodes course specs and normalizes their tags. Each topic's
// course id is taken from the enclosing course.
func ParseCourses(data []byte) ([]models.CourseSpec, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil, fmt.Errorf("empty course file")
	}
	doc := root.Content[0]

	var courses []models.CourseSpec
	var warnings []string
	switch doc.Kind {
	case yaml.SequenceNode:
		warnings = dropBadPageCounts(doc.Content)
		if err := doc.Decode(&courses); err != nil {
			return nil, nil, err
		}
	case yaml.MappingNode:
		if courseList := value(doc, "courses"); courseList != nil {
			if courseList.Kind == yaml.SequenceNode {
				warnings = dropBadPageCounts(courseList.Content)
			}
			var f courseFile
			if err := doc.Decode(&f); err != nil {
				return nil, nil, err
			}
			courses = f.Courses
		} else {
			warnings = dropBadPageCounts([]*yaml.Node{doc})
			var c models.CourseSpec
			if err := doc.Decode(&c); err != nil {
				return nil, nil, err
			}
			courses = []models.CourseSpec{c}
		}
	default:
		return nil, nil, fmt.Errorf("expected a list or mapping of courses")
	}

	for i := range courses {
		c := &courses[i]
		c.CourseID = strings.TrimSpace(c.CourseID)
		if c.CourseID == "" {
			return nil, nil, fmt.Errorf("course %d has no course_id", i+1)
		}
		if c.ExamDate == "" {
			warnings = append(warnings, fmt.Sprintf("%s: no exam date in course file", c.CourseID))
		}
		for j := range c.Topics {
			t := &c.Topics[j]
			t.CourseID = c.CourseID
			t.TopicID = strings.TrimSpace(t.TopicID)
			if t.TopicID == "" {
				t.TopicID = fmt.Sprintf("topic-%02d", j+1)
				warnings = append(warnings, fmt.Sprintf("%s: topic %d has no topic_id, using %s", c.CourseID, j+1, t.TopicID))
			}
			if t.Difficulty != "" {
				t.Difficulty = models.NormalizeDifficulty(string(t.Difficulty))
			}
			if t.TaskMix != "" {
				t.TaskMix = models.NormalizeTaskMix(string(t.TaskMix))
			}
		}
	}
	return courses, warnings, nil
}

func value(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// dropBadPageCounts removes page_count values that are not integers so the
// topic decodes with an unknown page count instead of failing the file.
func dropBadPageCounts(courses []*yaml.Node) []string {
	var warnings []string
	for _, c := range courses {
		topics := value(c, "topics")
		if topics == nil || topics.Kind != yaml.SequenceNode {
			continue
		}
		courseID := "course"
		if id := value(c, "course_id"); id != nil && id.Value != "" {
			courseID = strings.TrimSpace(id.Value)
		}
		for j, t := range topics.Content {
			if t.Kind != yaml.MappingNode {
				continue
			}
			for k := 0; k+1 < len(t.Content); k += 2 {
				if t.Content[k].Value != "page_count" {
					continue
				}
				v := t.Content[k+1]
				if v.Kind == yaml.ScalarNode && (v.ShortTag() == "!!int" || v.ShortTag() == "!!null") {
					break
				}
				warnings = append(warnings, fmt.Sprintf("%s: topic %d has malformed page_count %q, treating it as unknown", courseID, j+1, v.Value))
				t.Content = append(t.Content[:k:k], t.Content[k+2:]...)
				break
			}
		}
	}
	return warnings
}
