package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/tolist/pkg/model"
)

var (
	headlineRegex = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(\w+(:\w+)*):))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})[^>]*>`)
	drawerRegex   = regexp.MustCompile(`^:[A-Za-z_-]+:`)
)

// parseFile parses an Org-mode file and returns a slice of tasks.
func parseFile(filePath string) ([]model.Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// ParseFiles parses multiple Org-mode files and returns their tasks in file order.
func ParseFiles(filePaths []string) ([]model.Task, error) {
	var allTasks []model.Task
	for _, filePath := range filePaths {
		tasks, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		allTasks = append(allTasks, tasks...)
	}
	return allTasks, nil
}

// Parse turns TODO and DONE headlines into tasks. Priority cookies map
// [#A] to 1, [#B] to 2 and so on; a DEADLINE timestamp becomes the due
// date, and plain body lines become the description.
func Parse(r io.Reader) ([]model.Task, error) {
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var current *model.Task
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.Join(body, " ")
		tasks = append(tasks, *current)
		current = nil
		body = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			flush()
			matches := headlineRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &model.Task{
				Title:     strings.TrimSpace(matches[3]),
				Priority:  priorityFromCookie(matches[2]),
				Completed: matches[1] == "DONE",
			}
			continue
		}
		if current == nil || line == "" {
			continue
		}

		if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
			due, err := model.ParseDate(matches[1])
			if err != nil {
				return nil, err
			}
			current.DueDate = &due
			continue
		}
		if strings.HasPrefix(line, "SCHEDULED:") || strings.HasPrefix(line, "CLOSED:") || drawerRegex.MatchString(line) {
			continue
		}
		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return tasks, nil
}

func priorityFromCookie(cookie string) int {
	if cookie == "" {
		return model.DefaultPriority
	}
	return int(cookie[0]-'A') + 1
}
