package distribution

import (
	"context"
	"time"

	"github.com/teamai/teamai-api/internal/domain"
)

// templateTitles are the phases of the fallback task set, in order.
var templateTitles = []string{
	"Анализ требований проекта",
	"Проектирование архитектуры",
	"Разработка основного функционала",
	"Тестирование и отладка",
	"Документация и деплой",
}

const templateDescriptionPrefix = "Задача для проекта: "

// TemplateTitles returns the fallback task titles in order.
func TemplateTitles() []string {
	titles := make([]string, len(templateTitles))
	copy(titles, templateTitles)
	return titles
}

// FallbackGenerator produces the fixed template task set used whenever the
// model cannot be used.
type FallbackGenerator struct {
	materializer *TaskMaterializer
}

// NewFallbackGenerator creates a generator persisting through materializer.
func NewFallbackGenerator(materializer *TaskMaterializer) *FallbackGenerator {
	return &FallbackGenerator{materializer: materializer}
}

// Generate builds the template tasks for project and saves them. It returns
// the tasks that were saved.
func (g *FallbackGenerator) Generate(
	ctx context.Context,
	project *domain.Project,
	resolver *AssignmentResolver,
) []*domain.Task {
	return g.materializer.Persist(ctx, BuildTemplateTasks(project, resolver, g.materializer.location))
}

// BuildTemplateTasks returns one MEDIUM task per template. The project span is
// divided evenly: task i is due StartDate + daysPerTask*(i+1) at 23:59 in loc,
// where daysPerTask is at least 1, and is assigned to roster[i mod size]. A nil
// loc keeps the zone of the start date.
func BuildTemplateTasks(project *domain.Project, resolver *AssignmentResolver, loc *time.Location) []*domain.Task {
	daysPerTask := project.DurationDays() / len(templateTitles)
	if daysPerTask < 1 {
		daysPerTask = 1
	}

	tasks := make([]*domain.Task, 0, len(templateTitles))
	for i, title := range templateTitles {
		task, err := domain.NewTask(
			project.ID,
			title,
			templateDescriptionPrefix+project.Description,
			domain.DeadlineAt(project.StartDate, daysPerTask*(i+1), loc),
			domain.TaskPriorityMedium,
		)
		if err != nil {
			// Only reachable with a nil project ID.
			continue
		}
		task.AssignTo(resolver.RoundRobin(i))
		task.AIReasoning = TemplateProvenance
		tasks = append(tasks, task)
	}
	return tasks
}
