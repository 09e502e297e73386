package tutorbot

import (
	"fmt"
	"strings"

	"github.com/dmitrievaaxx/ml-tutor-bot/dialog"
	"github.com/dmitrievaaxx/ml-tutor-bot/progress"
)

const welcomeMessage = "Привет! Я бот-репетитор по машинному обучению. 🤖\n\n" +
	"Задавайте вопросы по ML, математике и Python — я подстрою объяснения " +
	"под ваш уровень знаний.\n\n" +
	"Сначала выберите уровень:"

const levelMenuMessage = "📊 Выберите ваш уровень знаний:\n\n" +
	"🟢 Новичок — изучаю основы, объясняйте просто\n" +
	"🟡 Базовый — знаком с основами, хочу углубить знания\n" +
	"🔴 Продвинутый — нужны детали и математика"

const helpMessage = "🤖 ML Tutor Bot — справка\n\n" +
	"Команды:\n" +
	"/start — начать работу с ботом\n" +
	"/level — изменить уровень знаний\n" +
	"/learn — план курсов и ваш прогресс\n" +
	"/status — текущий уровень и статистика\n" +
	"/clear — очистить историю диалога\n" +
	"/help — показать эту справку\n\n" +
	"Просто задайте вопрос по машинному обучению, " +
	"и я отвечу с учётом вашего уровня. 🚀"

const clearedMessage = "История диалога очищена. Можно начинать с чистого листа!"

// llmUnavailableMessage is the fixed apology for an exhausted fallback chain.
const llmUnavailableMessage = "Извините, сейчас не получается получить ответ. " +
	"Попробуйте повторить вопрос через пару минут."

// genericErrorMessage covers any unexpected failure in the message path.
const genericErrorMessage = "Извините, произошла ошибка при обработке вашего сообщения. " +
	"Попробуйте еще раз."

const unknownLevelMessage = "Не узнаю такой уровень. Выберите один из предложенных: " +
	"Новичок, Базовый или Продвинутый."

const suggestionsHeader = "🔍 Похожие темы:"

func levelChangedMessage(level dialog.Level) string {
	return fmt.Sprintf("✅ Уровень знаний изменен на: %s\n\n"+
		"Теперь я буду адаптировать ответы под ваш уровень.", level.Label())
}

func learnMessage(completed map[string]bool) string {
	var b strings.Builder
	b.WriteString("📚 Доступные курсы:\n")
	for _, course := range progress.Courses() {
		done := 0
		for _, id := range course.Topics {
			if completed[id] {
				done++
			}
		}
		fmt.Fprintf(&b, "\n📚 %s (изучено %d из %d тем)\n", course.Name, done, len(course.Topics))
		for _, id := range course.Topics {
			mark := "⬜"
			if completed[id] {
				mark = "✅"
			}
			fmt.Fprintf(&b, "%s %s\n", mark, progress.TopicTitle(id))
		}
	}
	b.WriteString("\nЗадавайте вопросы по темам, и они будут отмечаться как изученные.")
	return b.String()
}

func statusMessage(level dialog.Level, st dialog.Stats, topicsStudied int) string {
	return fmt.Sprintf("📊 Ваш текущий статус:\n\n"+
		"🎯 Уровень знаний: %s\n"+
		"💬 Сообщений в диалоге: %d\n"+
		"📈 Изученных тем: %d\n\n"+
		"Используйте /level для смены уровня знаний.",
		level.Label(), st.Total, topicsStudied)
}
