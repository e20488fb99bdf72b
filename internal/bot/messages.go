package bot

// User-facing strings. These are fixed: provider failures are always
// mapped to one of them, never shown raw.
const (
	msgWelcome = `👋 Добро пожаловать в кабинет психологической помощи!

Я - ваш виртуальный психолог, готовый выслушать и помочь. Вы можете:
• Отправлять голосовые сообщения
• Писать текстовые сообщения
• Получать профессиональную психологическую поддержку

Я соблюдаю полную конфиденциальность и этику психологической практики.

Расскажите, что вас беспокоит...`

	msgStopped = "Бот остановлен.\nЧтобы возобновить работу, отправьте /start"

	msgProcessing = "🎤 Обрабатываю ваше сообщение..."

	msgConversionFailed = "❌ Ошибка конвертации аудио."

	msgNotRecognized = "❌ Не удалось распознать речь. Напишите текстом."

	msgUnexpectedError = "❌ Произошла непредвиденная ошибка. Пожалуйста, попробуйте позже."

	echoTemplate = "🎤 Я услышал: _%s_"
)
