package ai

import "context"

// Client интерфейс генерации структурированного ответа. Все реализации должны быть взаимозаменяемыми.
// systemText — системные инструкции (персона + правила), userText — пользовательский запрос.
// Ответ — JSON-объект в виде строки.
type Client interface {
	Complete(ctx context.Context, systemText string, userText string) (string, error)
}
