package bot

import (
	"fmt"
	"strings"

	"github.com/kultdan/grief_team_bot/internal/db"
	"github.com/kultdan/grief_team_bot/internal/session"
)

var applicationQuestions = []string{
	"1. Ваш часовой пояс?",
	"2. Есть ли опыт модерации? Если да, то укажите проект и длительность поста.",
	"3. Состоите ли Вы на данный момент в администрации/модерации/команде на ином проекте?",
	"4. Знаете ли Вы, как проводить проверку на читы?",
	"5. Общий Опыт/Длительность игры на серверах типу Анка/Гриф?",
	"6. Ваш возраст?",
	"7. Время, которое вы готовы выделять на сервер в день (можно указать промежуток времени и дни).",
}

func taskStatusLabel(status string) string {
	switch status {
	case db.StatusPending:
		return "⏳ ожидает"
	case db.StatusCompleted:
		return "✅ выполнено"
	case db.StatusRejected:
		return "❌ отклонено"
	}

	return status
}

func bugStatusLabel(status string) string {
	switch status {
	case db.StatusPending:
		return "⏳ Ожидает обработки"
	case db.StatusInProgress:
		return "🟡 Выполняется"
	case db.StatusCompleted:
		return "🟢 Выполнено"
	case db.StatusRejected:
		return "🔴 Отклонено"
	}

	return status
}

func appStatusLabel(status string) string {
	switch status {
	case db.StatusPending:
		return "⏳ На рассмотрении"
	case db.StatusApproved:
		return "✅ ОДОБРЕНО"
	case db.StatusRejected:
		return "❌ ОТКЛОНЕНО"
	}

	return status
}

// Уведомления всегда собираются заново из записи: никакой хирургии над
// ранее отправленным текстом.

func renderTaskNotification(task *db.Task) string {
	text := fmt.Sprintf("📄 ТЗ #%d от %s:\n\n%s\n\nСтатус: %s",
		task.ID, task.AuthorUsername, task.Description, taskStatusLabel(task.Status))

	if task.AssignedAdminUsername != nil {
		text += "\nИсполнитель: " + *task.AssignedAdminUsername
	}

	return text
}

func renderBugNotification(bug *db.Bug) string {
	text := fmt.Sprintf("🐞 Баг #%d от %s:\n\n%s\n\nСтатус: %s",
		bug.ID, bug.AuthorUsername, bug.Description, bugStatusLabel(bug.Status))

	if bug.AssignedAdminUsername != nil {
		text += "\nИсполнитель: " + *bug.AssignedAdminUsername
	}

	return text
}

func renderApplicationNotification(app *db.Application) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📄 Заявка #%d на должность: %s\nОт: %s\n\n", app.ID, app.Position, app.Username)

	answers := app.Answers()
	for i, question := range applicationQuestions {
		fmt.Fprintf(&sb, "%s\nОтвет: %s\n\n", question, answers[i])
	}

	fmt.Fprintf(&sb, "Статус: %s", appStatusLabel(app.Status))

	return sb.String()
}

func renderPreview(s *session.Session, spec flowSpec) string {
	switch spec.flow {
	case session.FlowTask:
		return "🔍 Предпросмотр ТЗ:\n\n" + s.Answers[0]
	case session.FlowBug:
		return "🔍 Предпросмотр бага:\n\n" + s.Answers[0]
	case session.FlowApplication:
		var sb strings.Builder
		fmt.Fprintf(&sb, "📄 Заявка на должность: %s\n\n", s.Position)
		for i, question := range applicationQuestions {
			fmt.Fprintf(&sb, "%s\nОтвет: %s\n\n", question, s.Answers[i])
		}
		return strings.TrimRight(sb.String(), "\n")
	}

	return ""
}
