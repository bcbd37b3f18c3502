package repo

// TokenStore хранит значение cookie auth_token между запусками gscli.
// Load возвращает ошибку, если пользователь не выполнил login.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	// Clear удаляет токен; повторный вызов не ошибка.
	Clear() error
}
