// Package session реализует локальное хранилище сессии работника прачечной.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/washerman-panel/internal/model"
)

// Session объединяет запись пользователя и маркер сессии. Бэкенд не выдаёт
// настоящий токен, поэтому маркер генерируется на стороне панели; запись и
// маркер всегда сохраняются и очищаются вместе.
type Session struct {
	ID    string     `json:"id"`
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Store хранит единственную сессию процесса и дублирует её в локальный
// JSON-файл, переживающий перезапуск панели.
type Store struct {
	mu      sync.RWMutex
	path    string
	current *Session
}

// NewStore создаёт хранилище с указанным путём к файлу сессии.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load восстанавливает сессию из файла. Отсутствие файла означает
// неаутентифицированное состояние и ошибкой не является.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.current = nil
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Повреждённый файл равносилен отсутствию сессии.
		s.current = nil
		return nil
	}

	if sess.Token == "" || sess.User.Username == "" {
		s.current = nil
		return nil
	}

	s.current = &sess
	return nil
}

// Save сохраняет пользователя, генерируя новый маркер сессии.
func (s *Store) Save(user model.User) (*Session, error) {
	sess := &Session{
		ID:    uuid.NewString(),
		Token: fmt.Sprintf("washerman-session-%d-%s", time.Now().UnixMilli(), uuid.NewString()),
		User:  user,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(sess); err != nil {
		return nil, err
	}
	s.current = sess
	return sess, nil
}

// Clear синхронно удаляет сессию. Повторный вызов безопасен, поэтому
// несколько одновременных 401 приводят к одной фактической очистке.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		// Файл удалить не получилось, но в памяти сессии уже нет:
		// следующий Load затрёт остатки при первой же записи.
		_ = err
	}
}

// Current возвращает активную сессию либо nil.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token возвращает маркер активной сессии для заголовка Authorization.
// Пустая строка означает неаутентифицированное состояние.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *Store) persist(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	// Запись через временный файл, чтобы не оставить усечённую сессию.
	tmp, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
