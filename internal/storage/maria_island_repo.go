package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/annel0/cauldron-witchery/internal/island"
	_ "github.com/go-sql-driver/mysql"
)

// MariaIslandRepo реализует IslandRepo для базы данных MariaDB/MySQL.
// Использует таблицу islands, снимок острова хранится в колонке data.
type MariaIslandRepo struct {
	db *sql.DB
}

// NewMariaIslandRepo создает новый репозиторий островов для MariaDB.
// Автоматически создает таблицу, если она не существует.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaIslandRepo(dsn string) (*MariaIslandRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaIslandRepo{db: db}
	if err := repo.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return repo, nil
}

func (r *MariaIslandRepo) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS islands (
			id         CHAR(36)    PRIMARY KEY,
			world      VARCHAR(64) NOT NULL,
			data       TEXT        NOT NULL,
			updated_at TIMESTAMP   DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE   CURRENT_TIMESTAMP,
			INDEX idx_world (world)
		) ENGINE=InnoDB
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы islands: %w", err)
	}
	return nil
}

// Save сохраняет остров.
// Использует INSERT ... ON DUPLICATE KEY UPDATE для обновления существующих записей.
func (r *MariaIslandRepo) Save(ctx context.Context, v island.View) error {
	if v.ID == "" {
		return ErrEmptyID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ошибка сериализации острова %s: %w", v.ID, err)
	}

	query := `
		INSERT INTO islands (id, world, data)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			world = VALUES(world),
			data = VALUES(data),
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, v.ID, v.World, string(data)); err != nil {
		return fmt.Errorf("ошибка сохранения острова %s: %w", v.ID, err)
	}
	return nil
}

// LoadAll загружает все острова
func (r *MariaIslandRepo) LoadAll(ctx context.Context) ([]island.View, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM islands ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки островов: %w", err)
	}
	defer rows.Close()

	var out []island.View
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		var v island.View
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("ошибка разбора острова %s: %w", id, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Delete удаляет остров
func (r *MariaIslandRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM islands WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ошибка удаления острова %s: %w", id, err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func (r *MariaIslandRepo) Close() error {
	return r.db.Close()
}
