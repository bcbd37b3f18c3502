package repo

import (
	"GophShare/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает БД по DSN и прогоняет миграции.
// postgres:// и postgresql:// идут в PostgreSQL, всё остальное считается путём к файлу SQLite.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы всех моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Folder{}, &model.File{}, &model.ShareLink{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: sqliteDSN(dsn)}
}

// sqliteDSN добавляет параметры modernc.org/sqlite, с которыми конкурентные записи ждут
// освобождения блокировки (busy_timeout), а транзакции берут её сразу при BEGIN
// (_txlock=immediate) и не падают с SQLITE_BUSY при проверке-перед-вставкой.
// Заданные в DSN явно параметры не трогаются.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "journal_mode") && !strings.Contains(dsn, "mode=memory") && dsn != ":memory:" {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
