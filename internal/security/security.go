package security

import (
	"fmt"
	"os"

	"wipesim_enterprise/internal/config"
)

// ConfirmOwnership проверяет типизированный токен подтверждения владения
// устройством перед запуском деструктивно-выглядящей операции.
func ConfirmOwnership(cfg *config.Config, token string) error {
	if cfg == nil {
		cfg = config.Default()
	}

	if !cfg.Security.RequireConfirmation {
		return nil
	}

	if token != cfg.Security.ConfirmationToken {
		return fmt.Errorf("владение устройством не подтверждено: требуется токен %q", cfg.Security.ConfirmationToken)
	}

	return nil
}

// Operator возвращает идентификатор оператора из конфигурации либо
// окружения. Пустой результат допустим: движок подставит sentinel.
func Operator(cfg *config.Config) string {
	if cfg != nil && cfg.Simulation.Operator != "" {
		return cfg.Simulation.Operator
	}

	if user := os.Getenv("USERNAME"); user != "" {
		return user + "@local"
	}
	if user := os.Getenv("USER"); user != "" {
		return user + "@local"
	}

	return ""
}
