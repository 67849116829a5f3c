package llm

import "fmt"

// FallbackDescription возвращает детерминированное описание по шаблону.
// Чистая функция: одни и те же аргументы дают один и тот же текст,
// поэтому результат безопасно кэшировать на любом уровне.
func FallbackDescription(artist, title, period string) string {
	return fmt.Sprintf(
		"'%s' is a notable work by %s, created during the %s period. "+
			"%s is recognized as a significant artist of the %s era, and this piece "+
			"reflects the characteristic style and techniques of that time. "+
			"The work demonstrates the artistic conventions and cultural context of the %s period, "+
			"making it an important example of the movement's visual language.",
		title, artist, period, artist, period, period,
	)
}
