package distribution

import (
	"fmt"
	"strings"

	"github.com/teamai/teamai-api/internal/domain"
)

const dateLayout = "2006-01-02"

// distributionSystemPrompt frames the model as the task planner.
const distributionSystemPrompt = "Ты - AI система для создания и распределения задач в проектах. " +
	"Анализируй описание проекта, навыки участников и создавай конкретные задачи с дедлайнами."

// responseContract describes the only response shape the parser accepts.
const responseContract = `Создай 5-7 конкретных задач для этого проекта.
Распредели их между участниками команды учитывая их навыки.

Ответь ТОЛЬКО JSON массивом, без пояснений и без другого текста:
[{"title": "Название задачи", "description": "Описание задачи", "assignTo": "Имя участника", "priority": "HIGH", "daysFromStart": 7}]

priority - одно из значений HIGH, MEDIUM, LOW.
assignTo - имя участника точно как в списке команды.
daysFromStart - неотрицательное целое число дней от даты начала проекта до дедлайна задачи. Распредели дедлайны равномерно в пределах срока проекта.`

// Prompt is a system/user instruction pair for one completion call.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt restates the project facts, lists the roster and specifies the
// JSON array the model must answer with. The output depends only on its
// inputs.
func BuildPrompt(project *domain.Project, roster []domain.TeamMember) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Проект: %s\n", project.Title)
	fmt.Fprintf(&b, "Описание: %s\n", project.Description)
	fmt.Fprintf(&b, "Категория: %s\n", project.Category)
	fmt.Fprintf(&b, "Срок: с %s до %s\n\n",
		project.StartDate.Format(dateLayout), project.Deadline.Format(dateLayout))

	b.WriteString("Команда:\n")
	for _, m := range roster {
		b.WriteString(FormatMember(m))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(responseContract)

	return Prompt{System: distributionSystemPrompt, User: b.String()}
}

// FormatMember renders one roster line:
// "- Name (Role, Опыт: N лет, Навыки: s1, s2)".
func FormatMember(m domain.TeamMember) string {
	return fmt.Sprintf("- %s (%s, Опыт: %d лет, Навыки: %s)",
		m.Name, m.Role, m.ExperienceYears, strings.Join(m.Skills, ", "))
}
